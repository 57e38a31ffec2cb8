package provider

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/config"
)

// PairingHeader carries the session code on every request to a remote wallet.
const PairingHeader = "X-Pairing-Code"

// maxPollFailures is how many consecutive failed polls end the session.
const maxPollFailures = 3

// GeneratePairCode returns an 8 character code without look-alike symbols.
func GeneratePairCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0 O I 1
	const length = 8

	b := make([]byte, length)
	if _, err := crand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b), nil
}

// PairingConfig configures a remote wallet provider.
type PairingConfig struct {
	URL          string
	Code         string        // generated when empty
	PollInterval time.Duration // defaults to config.DefaultPairingPollInterval
	// Dial overrides the transport. The default sends Code in PairingHeader.
	Dial   func(ctx context.Context, url, code string) (*rpc.Client, error)
	Logger *zap.Logger
}

// Pairing is a remote wallet. It has no push channel, so account and chain
// changes are found by polling.
type Pairing struct {
	code   string
	client *rpc.Client
	log    *zap.Logger
	ev     *emitter

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type walletSnapshot struct {
	accounts  []common.Address
	chainID   int64
	networkID int64
}

// NewPairing connects to the remote wallet, takes a first snapshot and
// starts the change poller.
func NewPairing(ctx context.Context, cfg PairingConfig) (*Pairing, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("pairing provider needs a wallet URL")
	}
	code := cfg.Code
	if code == "" {
		var err error
		if code, err = GeneratePairCode(); err != nil {
			return nil, fmt.Errorf("generating pairing code: %w", err)
		}
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = config.DefaultPairingPollInterval
	}
	dial := cfg.Dial
	if dial == nil {
		dial = dialWithCode
	}
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}

	client, err := dial(ctx, cfg.URL, code)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.URL, err)
	}
	p := &Pairing{
		code:   code,
		client: client,
		log:    log.With(zap.String("provider", string(KindPairing))),
		ev:     newEmitter(log),
		done:   make(chan struct{}),
	}

	first, err := p.snapshot(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("pairing with %s: %w", cfg.URL, err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.poll(pollCtx, interval, first)
	return p, nil
}

func dialWithCode(ctx context.Context, url, code string) (*rpc.Client, error) {
	return rpc.DialOptions(ctx, url, rpc.WithHeader(PairingHeader, code))
}

// Code returns the session code the user confirms in their wallet.
func (p *Pairing) Code() string { return p.code }

func (p *Pairing) Kind() Kind { return KindPairing }

func (p *Pairing) Events() <-chan Event { return p.ev.ch }

// CallContext forwards the request to the remote wallet.
func (p *Pairing) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if p.ev.isClosed() {
		return ErrClosed
	}
	return p.client.CallContext(ctx, result, method, args...)
}

// Close stops the poller and drops the connection.
func (p *Pairing) Close() error {
	p.once.Do(func() {
		p.cancel()
		<-p.done
		p.ev.close()
		p.client.Close()
	})
	return nil
}

func (p *Pairing) poll(ctx context.Context, interval time.Duration, last walletSnapshot) {
	defer close(p.done)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	failures := 0
	for {
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		cur, err := p.snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.log.Debug("wallet poll failed", zap.Int("failures", failures), zap.Error(err))
			if failures >= maxPollFailures {
				p.log.Warn("remote wallet unreachable, closing session", zap.Error(err))
				p.ev.emit(Event{Type: Closed, Err: err})
				return
			}
			continue
		}
		failures = 0

		if !slices.Equal(cur.accounts, last.accounts) {
			p.ev.emit(Event{Type: AccountsChanged, Accounts: cur.accounts})
		}
		switch {
		case cur.chainID != last.chainID:
			p.ev.emit(Event{Type: ChainChanged, ChainID: cur.chainID})
		case cur.networkID != last.networkID:
			p.ev.emit(Event{Type: NetworkChanged, NetworkID: cur.networkID})
		}
		last = cur
	}
}

func (p *Pairing) snapshot(ctx context.Context) (walletSnapshot, error) {
	var (
		s       walletSnapshot
		chainID hexutil.Big
		netID   string
	)
	if err := p.client.CallContext(ctx, &s.accounts, "eth_accounts"); err != nil {
		return s, err
	}
	if err := p.client.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		return s, err
	}
	if err := p.client.CallContext(ctx, &netID, "net_version"); err != nil {
		return s, err
	}
	n, err := strconv.ParseInt(netID, 10, 64)
	if err != nil {
		return s, fmt.Errorf("bad net_version %q: %w", netID, err)
	}
	s.chainID = chainID.ToInt().Int64()
	s.networkID = n
	return s, nil
}
