package network

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/provider"
)

// ErrNoAccounts is returned when the wallet exposes no account.
var ErrNoAccounts = errors.New("wallet exposes no accounts")

// WriteClient is the user-authorized client: every request goes through the
// wallet provider, which signs or prompts as it sees fit.
type WriteClient struct {
	p provider.Provider
}

var _ contract.Transactor = (*WriteClient)(nil)

// NewWriteClient wraps p.
func NewWriteClient(p provider.Provider) *WriteClient {
	return &WriteClient{p: p}
}

// Provider returns the wrapped provider.
func (w *WriteClient) Provider() provider.Provider { return w.p }

// Accounts lists the wallet's accounts.
func (w *WriteClient) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := w.p.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

// Account returns the active (first) account.
func (w *WriteClient) Account(ctx context.Context) (common.Address, error) {
	accounts, err := w.Accounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	return accounts[0], nil
}

// NetworkID returns the wallet's net_version.
func (w *WriteClient) NetworkID(ctx context.Context) (int64, error) {
	var v string
	if err := w.p.CallContext(ctx, &v, "net_version"); err != nil {
		return 0, fmt.Errorf("net_version: %w", err)
	}
	id, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("net_version %q: %w", v, err)
	}
	return id, nil
}

// ChainID asks the provider natively when it can, otherwise via eth_chainId.
func (w *WriteClient) ChainID(ctx context.Context) (int64, error) {
	if native, ok := w.p.(provider.ChainIDer); ok {
		return native.ChainID(ctx)
	}
	var id hexutil.Big
	if err := w.p.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.ToInt().Int64(), nil
}

// SendTransaction hands msg to the wallet and returns the hash it assigns.
func (w *WriteClient) SendTransaction(ctx context.Context, msg contract.Message) (common.Hash, error) {
	from := msg.From
	args := provider.TransactionArgs{
		From:     &from,
		To:       msg.To,
		Value:    (*hexutil.Big)(msg.Value),
		GasPrice: (*hexutil.Big)(msg.GasPrice),
		Data:     msg.Data,
	}
	if msg.Gas != 0 {
		gas := hexutil.Uint64(msg.Gas)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := w.p.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}
