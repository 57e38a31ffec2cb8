package endpoint

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoHealthyEndpoint is returned when every candidate failed its probe.
var ErrNoHealthyEndpoint = errors.New("no healthy endpoint available")

// Algorithm defines how an endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Nodes more than this many blocks behind the best are stale.
	staleBlockThreshold = 3
	// A fastest-pick winner is reused for this long.
	cacheTTL = 5 * time.Minute
)

// Endpoint is a graded probe result.
type Endpoint struct {
	Result
	Healthy bool
	Reason  string // why the endpoint is unhealthy
}

// Grade marks each result healthy or not. A node must answer, serve
// wantChainID and be within staleBlockThreshold of the best block seen.
func Grade(results []Result, wantChainID int64) []Endpoint {
	var best uint64
	for _, r := range results {
		if r.Err == nil && r.ChainID == wantChainID && r.BlockNumber > best {
			best = r.BlockNumber
		}
	}

	out := make([]Endpoint, len(results))
	for i, r := range results {
		e := Endpoint{Result: r, Healthy: true}
		switch {
		case r.Err != nil:
			e.Healthy, e.Reason = false, r.Err.Error()
		case r.ChainID != wantChainID:
			e.Healthy, e.Reason = false, fmt.Sprintf("serves chain %d", r.ChainID)
		case best-r.BlockNumber > staleBlockThreshold:
			e.Healthy, e.Reason = false, fmt.Sprintf("%d blocks behind", best-r.BlockNumber)
		}
		out[i] = e
	}
	return out
}

// Picker selects an endpoint according to its algorithm.
type Picker struct {
	algo        Algorithm
	mu          sync.Mutex
	cachedURL   string
	cacheExpiry time.Time
	now         func() time.Time
}

// NewPicker creates a Picker. An unknown algorithm behaves as fastest.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick returns the chosen endpoint from graded.
func (p *Picker) Pick(graded []Endpoint) (*Endpoint, error) {
	if p.algo == AlgorithmFailover {
		for i := range graded {
			if graded[i].Healthy {
				return &graded[i], nil
			}
		}
		return nil, ErrNoHealthyEndpoint
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for i := range graded {
			if graded[i].URL == p.cachedURL && graded[i].Healthy {
				return &graded[i], nil
			}
		}
	}

	var winner *Endpoint
	for i := range graded {
		e := &graded[i]
		if !e.Healthy {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyEndpoint
	}
	p.cachedURL = winner.URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return winner, nil
}
