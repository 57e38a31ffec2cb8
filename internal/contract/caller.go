package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Reader executes read-only calls. chain.ReadClient satisfies it.
type Reader interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Caller calls view/pure contract functions through a read-only client.
type Caller struct {
	client Reader
}

// NewCaller creates a Caller.
func NewCaller(client Reader) *Caller {
	return &Caller{client: client}
}

// Call calls a read function on d and returns the decoded results.
func (c *Caller) Call(ctx context.Context, d *Descriptor, method string, args ...interface{}) ([]interface{}, error) {
	m, err := d.Method(method)
	if err != nil {
		return nil, err
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", method, m.StateMutability)
	}

	calldata, err := d.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	result, err := c.client.CallContract(ctx, d.Address, calldata)
	if err != nil {
		return nil, err
	}

	return d.Unpack(method, result)
}
