// Package provider holds the wallet providers the connection manager talks
// to. A provider answers EIP-1193 style requests and pushes account, chain,
// network and close events.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Kind names a provider implementation.
type Kind string

const (
	KindInjected Kind = "injected" // local wallet, keys from the keystore
	KindPairing  Kind = "pairing"  // remote wallet reached by a pairing code
)

// ParseKind validates s as a provider kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindInjected, KindPairing:
		return k, nil
	}
	return "", fmt.Errorf("unknown provider %q (want %s or %s)", s, KindInjected, KindPairing)
}

// Errors.
var (
	ErrCancelled = errors.New("provider selection cancelled")
	ErrClosed    = errors.New("provider closed")
)

// EventType discriminates provider events.
type EventType int

const (
	AccountsChanged EventType = iota
	ChainChanged
	NetworkChanged
	Closed
)

func (t EventType) String() string {
	switch t {
	case AccountsChanged:
		return "accountsChanged"
	case ChainChanged:
		return "chainChanged"
	case NetworkChanged:
		return "networkChanged"
	case Closed:
		return "close"
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is pushed by a provider when the wallet's view of the world changes.
type Event struct {
	Type      EventType
	Accounts  []common.Address // AccountsChanged
	ChainID   int64            // ChainChanged
	NetworkID int64            // NetworkChanged
	Err       error            // Closed, when the transport failed
}

// Provider is the wallet boundary.
type Provider interface {
	Kind() Kind
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	// Events is closed when the provider is closed.
	Events() <-chan Event
	Close() error
}

// ChainIDer is implemented by providers that know their chain without a
// round trip.
type ChainIDer interface {
	ChainID(ctx context.Context) (int64, error)
}

// TransactionArgs is the eth_sendTransaction parameter object.
type TransactionArgs struct {
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Nonce    *hexutil.Uint64 `json:"nonce,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

const eventBuffer = 32

// emitter fans provider events into a buffered channel. Sends never block;
// an event that does not fit is dropped and logged.
type emitter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
	log    *zap.Logger
}

func newEmitter(log *zap.Logger) *emitter {
	return &emitter{ch: make(chan Event, eventBuffer), log: log}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.ch <- ev:
	default:
		e.log.Warn("provider event dropped", zap.Stringer("event", ev.Type))
	}
}

func (e *emitter) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}

func (e *emitter) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// assign copies v into result the way an RPC response would be decoded.
func assign(result, v interface{}) error {
	if result == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

// decodeArg converts a request argument into T, accepting either T itself
// or anything with the same JSON shape.
func decodeArg[T any](args []interface{}, i int) (T, error) {
	var out T
	if i >= len(args) {
		return out, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	err := assign(&out, args[i])
	return out, err
}
