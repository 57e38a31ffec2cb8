package provider

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/chain"
	"github.com/Mohsinsiddi/w3link/internal/config"
	"github.com/Mohsinsiddi/w3link/internal/wallet"
)

// InjectedConfig configures an in-process wallet provider.
type InjectedConfig struct {
	Signer    *wallet.Signer
	ChainID   int64
	Endpoints map[int64]string // chain id -> HTTP RPC the wallet forwards to
	Dial      chain.Dialer     // defaults to rpc.DialContext
	Logger    *zap.Logger
}

// Injected is a wallet living in this process. It signs locally with a
// keystore-backed key and forwards everything else to the chain's RPC.
type Injected struct {
	endpoints map[int64]string
	dial      chain.Dialer
	log       *zap.Logger
	ev        *emitter

	mu       sync.Mutex
	signer   *wallet.Signer // nil while locked
	chainID  int64
	upstream *rpc.Client
}

var _ ChainIDer = (*Injected)(nil)

// NewInjected dials the upstream RPC for cfg.ChainID.
func NewInjected(ctx context.Context, cfg InjectedConfig) (*Injected, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("injected provider needs a signing wallet")
	}
	p := &Injected{
		endpoints: cfg.Endpoints,
		dial:      cfg.Dial,
		log:       cfg.Logger,
		signer:    cfg.Signer,
	}
	if p.dial == nil {
		p.dial = rpc.DialContext
	}
	if p.log == nil {
		p.log = zap.L()
	}
	p.ev = newEmitter(p.log)

	up, err := p.dialChain(ctx, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	p.chainID = cfg.ChainID
	p.upstream = up
	return p, nil
}

func (p *Injected) Kind() Kind { return KindInjected }

func (p *Injected) Events() <-chan Event { return p.ev.ch }

// ChainID returns the chain the wallet is on.
func (p *Injected) ChainID(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

// SwitchChain moves the wallet to chainID and emits ChainChanged.
func (p *Injected) SwitchChain(ctx context.Context, chainID int64) error {
	up, err := p.dialChain(ctx, chainID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.ev.isClosed() {
		p.mu.Unlock()
		up.Close()
		return ErrClosed
	}
	old := p.upstream
	p.upstream = up
	p.chainID = chainID
	p.mu.Unlock()

	old.Close()
	p.log.Debug("injected wallet switched chain", zap.Int64("chain_id", chainID))
	p.ev.emit(Event{Type: ChainChanged, ChainID: chainID})
	return nil
}

// SwitchAccount makes s the active account and emits AccountsChanged.
func (p *Injected) SwitchAccount(s *wallet.Signer) {
	p.mu.Lock()
	p.signer = s
	p.mu.Unlock()
	p.ev.emit(Event{Type: AccountsChanged, Accounts: []common.Address{s.Address()}})
}

// Lock forgets the active account. The wallet then reports no accounts.
func (p *Injected) Lock() {
	p.mu.Lock()
	p.signer = nil
	p.mu.Unlock()
	p.ev.emit(Event{Type: AccountsChanged})
}

// CallContext answers wallet methods locally and forwards the rest.
func (p *Injected) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if p.ev.isClosed() {
		return ErrClosed
	}
	p.mu.Lock()
	signer, chainID, up := p.signer, p.chainID, p.upstream
	p.mu.Unlock()

	switch method {
	case "eth_accounts", "eth_requestAccounts":
		accounts := []common.Address{}
		if signer != nil {
			accounts = append(accounts, signer.Address())
		}
		return assign(result, accounts)

	case "eth_chainId":
		return assign(result, (*hexutil.Big)(big.NewInt(chainID)))

	case "wallet_switchEthereumChain":
		req, err := decodeArg[struct {
			ChainID hexutil.Big `json:"chainId"`
		}](args, 0)
		if err != nil {
			return fmt.Errorf("wallet_switchEthereumChain: %w", err)
		}
		return p.SwitchChain(ctx, req.ChainID.ToInt().Int64())

	case "personal_sign":
		if signer == nil {
			return fmt.Errorf("wallet is locked")
		}
		msg, err := decodeArg[hexutil.Bytes](args, 0)
		if err != nil {
			return fmt.Errorf("personal_sign: %w", err)
		}
		sig, err := signer.SignMessage(msg)
		if err != nil {
			return err
		}
		return assign(result, hexutil.Bytes(sig))

	case "eth_sendTransaction":
		if signer == nil {
			return fmt.Errorf("wallet is locked")
		}
		txArgs, err := decodeArg[TransactionArgs](args, 0)
		if err != nil {
			return fmt.Errorf("eth_sendTransaction: %w", err)
		}
		hash, err := p.sendTransaction(ctx, signer, chainID, up, txArgs)
		if err != nil {
			return err
		}
		return assign(result, hash)
	}

	return up.CallContext(ctx, result, method, args...)
}

// sendTransaction fills in nonce, gas price and gas, signs a legacy
// transaction and broadcasts it. RSK has no EIP-1559 fee market.
func (p *Injected) sendTransaction(ctx context.Context, s *wallet.Signer, chainID int64, up *rpc.Client, args TransactionArgs) (common.Hash, error) {
	from := s.Address()
	if args.From != nil && *args.From != from {
		return common.Hash{}, fmt.Errorf("from %s is not the connected account %s", args.From.Hex(), from.Hex())
	}
	client := ethclient.NewClient(up)

	var nonce uint64
	if args.Nonce != nil {
		nonce = uint64(*args.Nonce)
	} else {
		n, err := client.PendingNonceAt(ctx, from)
		if err != nil {
			return common.Hash{}, fmt.Errorf("fetching nonce: %w", err)
		}
		nonce = n
	}

	gasPrice := big.NewInt(config.MinGasPrice)
	if args.GasPrice != nil {
		gasPrice = args.GasPrice.ToInt()
	} else if suggested, err := client.SuggestGasPrice(ctx); err == nil && suggested.Cmp(gasPrice) > 0 {
		gasPrice = suggested
	}

	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}

	gas := uint64(0)
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	} else {
		gas = p.estimateGas(ctx, client, ethereum.CallMsg{
			From: from, To: args.To, Value: value, Data: args.Data, GasPrice: gasPrice,
		})
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       args.To,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     args.Data,
	})
	signed, err := s.SignTx(tx, big.NewInt(chainID))
	if err != nil {
		return common.Hash{}, err
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	p.log.Debug("transaction broadcast",
		zap.String("hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed.Hash(), nil
}

// estimateGas asks the node and adds 10%. If the node cannot simulate the
// call a fixed limit is used.
func (p *Injected) estimateGas(ctx context.Context, client *ethclient.Client, msg ethereum.CallMsg) uint64 {
	est, err := client.EstimateGas(ctx, msg)
	if err != nil {
		p.log.Debug("gas estimate failed, using fallback", zap.Error(err))
		if len(msg.Data) == 0 {
			return config.GasLimitTransfer
		}
		return config.GasLimitContractCall
	}
	est += est / 10
	if est < config.GasLimitTransfer {
		est = config.GasLimitTransfer
	}
	return est
}

// Close releases the upstream connection and closes the event stream.
func (p *Injected) Close() error {
	p.ev.close()
	p.mu.Lock()
	up := p.upstream
	p.mu.Unlock()
	if up != nil {
		up.Close()
	}
	return nil
}

func (p *Injected) dialChain(ctx context.Context, chainID int64) (*rpc.Client, error) {
	url, ok := p.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("wallet has no RPC endpoint for chain %d", chainID)
	}
	c, err := p.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return c, nil
}
