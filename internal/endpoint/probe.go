// Package endpoint probes a network's nodes and ranks them.
package endpoint

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/w3link/internal/chain"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Result holds what one probe measured.
type Result struct {
	URL         string
	Latency     time.Duration
	ChainID     int64
	BlockNumber uint64
	Err         error
}

// Probe dials url and asks it for its chain id and latest block.
func Probe(ctx context.Context, dial chain.Dialer, url string) Result {
	if dial == nil {
		dial = rpc.DialContext
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res := Result{URL: url}
	start := time.Now()
	rc, err := dial(ctx, url)
	if err != nil {
		res.Err = err
		return res
	}
	c := chain.NewReadClient(0, url, rc)
	defer c.Close()

	if res.ChainID, err = c.RemoteChainID(ctx); err != nil {
		res.Err = err
		return res
	}
	if res.BlockNumber, err = c.BlockNumber(ctx); err != nil {
		res.Err = err
		return res
	}
	res.Latency = time.Since(start)
	return res
}

// ProbeAll probes every url in parallel. Results keep the order of urls.
func ProbeAll(ctx context.Context, dial chain.Dialer, urls []string) []Result {
	results := make([]Result, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			results[idx] = Probe(ctx, dial, u)
		}(i, url)
	}
	wg.Wait()
	return results
}

// ProbeChain probes the wallet and streaming endpoints of c and grades them
// against c's chain id.
func ProbeChain(ctx context.Context, dial chain.Dialer, c *chain.Chain) []Endpoint {
	urls := append(append([]string(nil), c.RPCs...), c.WSNodes...)
	return Grade(ProbeAll(ctx, dial, urls), c.ChainID)
}
