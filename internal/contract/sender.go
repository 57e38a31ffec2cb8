package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Message is a state-changing call handed to the write side.
type Message struct {
	From     common.Address
	To       *common.Address
	Data     []byte
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
}

// Transactor submits messages and returns the hash the node assigned.
type Transactor interface {
	SendTransaction(ctx context.Context, msg Message) (common.Hash, error)
}

// CallOptions overrides the defaults of a contract transaction. Passed as the
// trailing argument of Instance.Transact.
type CallOptions struct {
	From     *common.Address
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
}

// SplitOptions separates a trailing CallOptions (or *CallOptions) from the
// method arguments.
func SplitOptions(args []interface{}) ([]interface{}, CallOptions) {
	if len(args) == 0 {
		return args, CallOptions{}
	}
	switch opts := args[len(args)-1].(type) {
	case CallOptions:
		return args[:len(args)-1], opts
	case *CallOptions:
		if opts == nil {
			return args[:len(args)-1], CallOptions{}
		}
		return args[:len(args)-1], *opts
	}
	return args, CallOptions{}
}

// Instance is a descriptor bound to a write client, sending from one account.
// Instances are discarded whenever the account, chain or provider changes.
type Instance struct {
	*Descriptor
	from common.Address
	tx   Transactor
}

// Bind creates a live instance of d.
func Bind(d *Descriptor, tx Transactor, from common.Address) *Instance {
	return &Instance{Descriptor: d, from: from, tx: tx}
}

// BindAll creates an instance for every descriptor of r.
func BindAll(r *Registry, tx Transactor, from common.Address) map[string]*Instance {
	out := make(map[string]*Instance, r.Len())
	for _, d := range r.All() {
		out[d.Name] = Bind(d, tx, from)
	}
	return out
}

// From returns the account the instance sends from.
func (i *Instance) From() common.Address { return i.from }

// Transact encodes method with args and submits it. A trailing CallOptions
// argument is applied to the message instead of being encoded.
func (i *Instance) Transact(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	params, opts := SplitOptions(args)

	data, err := i.Pack(method, params...)
	if err != nil {
		return common.Hash{}, err
	}

	to := i.Address
	msg := Message{
		From:     i.from,
		To:       &to,
		Data:     data,
		Value:    opts.Value,
		Gas:      opts.Gas,
		GasPrice: opts.GasPrice,
	}
	if opts.From != nil {
		msg.From = *opts.From
	}

	hash, err := i.tx.SendTransaction(ctx, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", i.Name, method, err)
	}
	return hash, nil
}
