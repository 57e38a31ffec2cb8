// Package store holds the process-wide connection state. Only the connection
// manager dispatches; anyone may subscribe.
package store

import (
	"slices"
	"sync"
)

// State is a snapshot of the wallet connection.
type State struct {
	Connected           bool     `json:"connected"`
	Address             string   `json:"address,omitempty"`
	ChainID             int64    `json:"chain_id,omitempty"`
	NetworkID           int64    `json:"network_id,omitempty"`
	PendingTransactions []string `json:"pending_transactions"`
}

func (s State) clone() State {
	s.PendingTransactions = slices.Clone(s.PendingTransactions)
	if s.PendingTransactions == nil {
		s.PendingTransactions = []string{}
	}
	return s
}

// Action is a state transition.
type Action interface {
	apply(State) State
	Name() string
}

// Connected records a fresh connection.
type Connected struct {
	Address   string
	ChainID   int64
	NetworkID int64
}

// Disconnected resets to the initial state. Pending hashes survive.
type Disconnected struct{}

// ChainChanged records a chain or network switch on a live connection.
type ChainChanged struct {
	ChainID   int64
	NetworkID int64
}

// AccountChanged records a new active account.
type AccountChanged struct {
	Address string
}

// AddTransaction appends a pending hash unless already present.
type AddTransaction struct {
	Hash string
}

// RemoveTransaction drops a pending hash.
type RemoveTransaction struct {
	Hash string
}

func (a Connected) Name() string         { return "connected" }
func (a Disconnected) Name() string      { return "disconnected" }
func (a ChainChanged) Name() string      { return "chainChanged" }
func (a AccountChanged) Name() string    { return "accountChanged" }
func (a AddTransaction) Name() string    { return "addTransaction" }
func (a RemoveTransaction) Name() string { return "removeTransaction" }

func (a Connected) apply(s State) State {
	s.Connected = true
	s.Address = a.Address
	s.ChainID = a.ChainID
	s.NetworkID = a.NetworkID
	return s
}

func (a Disconnected) apply(s State) State {
	return State{PendingTransactions: s.PendingTransactions}
}

func (a ChainChanged) apply(s State) State {
	s.ChainID = a.ChainID
	s.NetworkID = a.NetworkID
	return s
}

func (a AccountChanged) apply(s State) State {
	s.Address = a.Address
	return s
}

func (a AddTransaction) apply(s State) State {
	if !slices.Contains(s.PendingTransactions, a.Hash) {
		s.PendingTransactions = append(s.PendingTransactions, a.Hash)
	}
	return s
}

func (a RemoveTransaction) apply(s State) State {
	s.PendingTransactions = slices.DeleteFunc(s.PendingTransactions, func(h string) bool { return h == a.Hash })
	return s
}

// Listener is called after every dispatch with the action and the new state.
type Listener func(Action, State)

// Store serializes dispatches and notifies listeners in subscription order.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int

	notify sync.Mutex // keeps notifications in dispatch order
}

// New returns a store in the disconnected state.
func New() *Store {
	return &Store{state: State{}.clone(), listeners: make(map[int]Listener)}
}

var (
	global     *Store
	globalOnce sync.Once
)

// Global returns the process-wide store.
func Global() *Store {
	globalOnce.Do(func() { global = New() })
	return global
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and notifies listeners. Listeners run outside the state
// lock and may call State, but must not Dispatch.
func (s *Store) Dispatch(a Action) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.state = a.apply(s.state.clone())
	snap := s.state.clone()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(a, snap)
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
