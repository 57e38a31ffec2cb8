package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Dialer opens a JSON-RPC connection to url. rpc.DialContext satisfies it;
// tests substitute in-process servers.
type Dialer func(ctx context.Context, url string) (*rpc.Client, error)

// ReadClient is a query-only connection pinned to one chain. It is never
// retargeted: when the active chain changes a new ReadClient is dialed and the
// old one closed.
type ReadClient struct {
	chainID int64
	url     string
	rpc     *rpc.Client
	eth     *ethclient.Client
}

// Receipt holds the parts of a transaction receipt the manager reconciles on.
type Receipt struct {
	Hash        common.Hash
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// DialRead connects to the streaming endpoint of c.
func DialRead(ctx context.Context, c *Chain, dial Dialer) (*ReadClient, error) {
	url := c.WS()
	if url == "" {
		return nil, fmt.Errorf("chain %d has no streaming endpoint", c.ChainID)
	}
	if dial == nil {
		dial = rpc.DialContext
	}
	rc, err := dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewReadClient(c.ChainID, url, rc), nil
}

// NewReadClient wraps an established RPC connection.
func NewReadClient(chainID int64, url string, rc *rpc.Client) *ReadClient {
	return &ReadClient{
		chainID: chainID,
		url:     url,
		rpc:     rc,
		eth:     ethclient.NewClient(rc),
	}
}

// ChainID returns the chain this client was dialed for.
func (c *ReadClient) ChainID() int64 { return c.chainID }

// URL returns the endpoint this client is connected to.
func (c *ReadClient) URL() string { return c.url }

// RemoteChainID asks the node which chain it serves.
func (c *ReadClient) RemoteChainID(ctx context.Context) (int64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

// BlockNumber returns the latest block number.
func (c *ReadClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// CallContract executes a read-only call against the latest block.
func (c *ReadClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	return out, nil
}

// Receipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *ReadClient) Receipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r *struct {
		Status      hexutil.Uint64 `json:"status"`
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
		GasUsed     hexutil.Uint64 `json:"gasUsed"`
	}
	if err := c.rpc.CallContext(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	return &Receipt{
		Hash:        hash,
		Status:      uint64(r.Status),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}, nil
}

// Close releases the connection.
func (c *ReadClient) Close() {
	c.rpc.Close()
}
