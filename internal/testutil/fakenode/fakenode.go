// Package fakenode serves a scripted Ethereum JSON-RPC node (and remote
// wallet) over go-ethereum's in-process transport, for tests.
package fakenode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// Node is a scripted chain node. The zero value is not usable; call New.
type Node struct {
	mu         sync.Mutex
	chainID    uint64
	networkID  uint64
	block      uint64
	accounts   []common.Address
	callResult []byte
	gasPrice   *big.Int
	nonce      uint64
	sendErr    error
	receipts   map[common.Hash]uint64
	raw        []*types.Transaction
	sent       []map[string]interface{}
}

// New returns a node reporting chainID for both eth_chainId and net_version.
func New(chainID uint64) *Node {
	return &Node{
		chainID:   chainID,
		networkID: chainID,
		block:     100,
		gasPrice:  big.NewInt(60_000_000),
		receipts:  make(map[common.Hash]uint64),
	}
}

// SetChainID changes the chain this node reports.
func (n *Node) SetChainID(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chainID = id
	n.networkID = id
}

// SetBlock sets the eth_blockNumber answer.
func (n *Node) SetBlock(b uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.block = b
}

// SetAccounts sets the eth_accounts answer.
func (n *Node) SetAccounts(accounts ...common.Address) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts = accounts
}

// SetCallResult sets the raw bytes every eth_call returns.
func (n *Node) SetCallResult(b []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callResult = b
}

// SetSendError makes every transaction submission fail with err.
func (n *Node) SetSendError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sendErr = err
}

// Mine records a receipt for hash with the given status.
func (n *Node) Mine(hash common.Hash, status uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts[hash] = status
}

// RawTransactions returns every transaction received via eth_sendRawTransaction.
func (n *Node) RawTransactions() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.raw...)
}

// SentTransactions returns the argument objects of every eth_sendTransaction.
func (n *Node) SentTransactions() []map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]map[string]interface{}(nil), n.sent...)
}

// Server builds an rpc.Server exposing the eth and net namespaces.
func (n *Node) Server() *rpc.Server {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethAPI{n: n}); err != nil {
		panic(err)
	}
	if err := srv.RegisterName("net", &netAPI{n: n}); err != nil {
		panic(err)
	}
	return srv
}

// Dial returns an in-process client connected to the node.
func (n *Node) Dial() *rpc.Client {
	return rpc.DialInProc(n.Server())
}

type ethAPI struct{ n *Node }

func (api *ethAPI) ChainId() (*hexutil.Big, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return (*hexutil.Big)(new(big.Int).SetUint64(api.n.chainID)), nil
}

func (api *ethAPI) BlockNumber() (hexutil.Uint64, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.block), nil
}

func (api *ethAPI) Accounts() ([]common.Address, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return append([]common.Address{}, api.n.accounts...), nil
}

func (api *ethAPI) Call(args map[string]interface{}, block *json.RawMessage, overrides *json.RawMessage) (hexutil.Bytes, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Bytes(api.n.callResult), nil
}

func (api *ethAPI) GasPrice() (*hexutil.Big, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return (*hexutil.Big)(api.n.gasPrice), nil
}

func (api *ethAPI) GetTransactionCount(addr common.Address, block *json.RawMessage) (hexutil.Uint64, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.nonce), nil
}

func (api *ethAPI) EstimateGas(args map[string]interface{}, block *json.RawMessage, overrides *json.RawMessage) (hexutil.Uint64, error) {
	return hexutil.Uint64(50_000), nil
}

func (api *ethAPI) SendRawTransaction(data hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return common.Hash{}, err
	}
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	if api.n.sendErr != nil {
		return common.Hash{}, api.n.sendErr
	}
	api.n.raw = append(api.n.raw, tx)
	api.n.nonce++
	return tx.Hash(), nil
}

func (api *ethAPI) SendTransaction(args map[string]interface{}) (common.Hash, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	if api.n.sendErr != nil {
		return common.Hash{}, api.n.sendErr
	}
	if len(api.n.accounts) == 0 {
		return common.Hash{}, errors.New("wallet locked")
	}
	api.n.sent = append(api.n.sent, args)
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d-%v", len(api.n.sent), args))), nil
}

type receiptJSON struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (*receiptJSON, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	status, ok := api.n.receipts[hash]
	if !ok {
		return nil, nil
	}
	return &receiptJSON{Status: hexutil.Uint64(status), BlockNumber: hexutil.Uint64(api.n.block), GasUsed: 21_000}, nil
}

type netAPI struct{ n *Node }

func (api *netAPI) Version() (string, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return fmt.Sprintf("%d", api.n.networkID), nil
}

// Switchboard routes dial URLs to nodes and records every dial.
type Switchboard struct {
	mu    sync.Mutex
	nodes map[string]*Node
	dials []string
}

// NewSwitchboard creates an empty switchboard.
func NewSwitchboard() *Switchboard {
	return &Switchboard{nodes: make(map[string]*Node)}
}

// Add routes url to n.
func (s *Switchboard) Add(url string, n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[url] = n
}

// Dial satisfies chain.Dialer.
func (s *Switchboard) Dial(ctx context.Context, url string) (*rpc.Client, error) {
	s.mu.Lock()
	n, ok := s.nodes[url]
	s.dials = append(s.dials, url)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no route to %s", url)
	}
	return n.Dial(), nil
}

// Dials returns every URL dialed so far, in order.
func (s *Switchboard) Dials() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dials...)
}
