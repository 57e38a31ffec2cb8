// Package network is the connection manager: it owns the wallet provider,
// the write client built on it, the read client and the contract instances,
// and publishes connection state to the store.
package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/w3link/internal/asset"
	"github.com/Mohsinsiddi/w3link/internal/chain"
	"github.com/Mohsinsiddi/w3link/internal/config"
	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/metrics"
	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/store"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

// Errors.
var (
	ErrProviderAcquisition = errors.New("could not obtain a wallet provider")
	ErrUnsupportedChain    = errors.New("unsupported network")
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrNotConnected        = errors.New("wallet not connected")
)

// Phase is the manager's connection state.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseReconnecting
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	}
	return "disconnected"
}

// Notifier shows a message to the user. ui.Toaster implements it.
type Notifier interface {
	Show(intent ui.Intent, message, key string)
}

type nopNotifier struct{}

func (nopNotifier) Show(ui.Intent, string, string) {}

// TxRequest is a plain transaction sent from the connected account.
type TxRequest struct {
	To       *common.Address
	Value    *big.Int
	Data     []byte
	Gas      uint64 // 0 lets the wallet estimate
	GasPrice *big.Int
}

// session is everything tied to one provider connection. It is replaced
// wholesale, never patched, when the provider, chain or account changes.
type session struct {
	gen       uint64
	provider  provider.Provider
	write     *WriteClient
	registry  *contract.Registry
	instances map[string]*contract.Instance
	account   common.Address
	chainID   int64
	networkID int64
	stop      chan struct{}
}

// Manager orchestrates wallet connections. All transitions run under one
// sequence lock; a Connect arriving mid-sequence waits for it.
type Manager struct {
	chains       *chain.Registry
	build        contract.Builder
	selector     *provider.Selector
	store        *store.Store
	notify       Notifier
	dial         chain.Dialer
	log          *zap.Logger
	metrics      *metrics.Metrics
	defaultChain int64
	timeouts     config.Timeouts

	mu sync.Mutex // sequence guard

	resMu    sync.RWMutex // guards the fields below
	sess     *session
	read     *chain.ReadClient
	readReg  *contract.Registry
	phase    Phase
	nextGen  uint64
	pumps    sync.WaitGroup
	closed   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithChains sets the supported-network registry.
func WithChains(r *chain.Registry) Option { return func(m *Manager) { m.chains = r } }

// WithContracts sets how contract registries are built per chain.
func WithContracts(b contract.Builder) Option { return func(m *Manager) { m.build = b } }

// WithSelector sets the provider selector.
func WithSelector(s *provider.Selector) Option { return func(m *Manager) { m.selector = s } }

// WithStore sets the store state is published to.
func WithStore(s *store.Store) Option { return func(m *Manager) { m.store = s } }

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notify = n } }

// WithReadDialer sets how read clients are dialed.
func WithReadDialer(d chain.Dialer) Option { return func(m *Manager) { m.dial = d } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.log = l } }

// WithMetrics enables Prometheus counters.
func WithMetrics(mt *metrics.Metrics) Option { return func(m *Manager) { m.metrics = mt } }

// WithDefaultChain sets the chain the read client targets while disconnected.
func WithDefaultChain(id int64) Option { return func(m *Manager) { m.defaultChain = id } }

// WithTimeouts sets operation deadlines.
func WithTimeouts(t config.Timeouts) Option { return func(m *Manager) { m.timeouts = t } }

// New creates a disconnected manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		notify:       nopNotifier{},
		dial:         rpc.DialContext,
		defaultChain: config.DefaultChainID,
	}
	for _, o := range opts {
		o(m)
	}
	if m.chains == nil {
		m.chains = chain.NewRegistry()
	}
	if m.build == nil {
		m.build = contract.NewBuilder(asset.NewCatalog(), contract.DefaultAppContracts())
	}
	if m.store == nil {
		m.store = store.Global()
	}
	if m.log == nil {
		m.log = zap.L()
	}
	m.timeouts = m.timeouts.WithDefaults()
	return m
}

// Connect obtains a provider, the cached kind or the user's choice, and runs
// the connection sequence on it.
func (m *Manager) Connect(ctx context.Context) error {
	return m.connect(ctx, "", func(ctx context.Context) (provider.Provider, error) {
		return m.selector.Connect(ctx)
	})
}

// ConnectTo is Connect with an explicit provider kind.
func (m *Manager) ConnectTo(ctx context.Context, kind provider.Kind) error {
	return m.connect(ctx, kind, func(ctx context.Context) (provider.Provider, error) {
		return m.selector.ConnectTo(ctx, kind)
	})
}

func (m *Manager) connect(ctx context.Context, kind provider.Kind, acquire func(context.Context) (provider.Provider, error)) error {
	if m.selector == nil {
		return fmt.Errorf("%w: no provider selector configured", ErrProviderAcquisition)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed() {
		return errors.New("connection manager closed")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeouts.Connect.Std())
	defer cancel()

	prev := m.Status()
	m.setPhase(PhaseConnecting)

	p, err := acquire(ctx)
	if err != nil {
		m.setPhase(prev)
		m.metrics.ConnectAttempt(string(kind), metrics.ResultError)
		return fmt.Errorf("%w: %w", ErrProviderAcquisition, err)
	}
	kind = p.Kind()
	log := m.log.With(zap.String("provider", string(kind)))

	sess, read, readReg, err := m.establish(ctx, p)
	if err != nil {
		_ = p.Close()
		if errors.Is(err, ErrUnsupportedChain) {
			m.metrics.ConnectAttempt(string(kind), metrics.ResultUnsupported)
			return err
		}
		m.setPhase(prev)
		m.metrics.ConnectAttempt(string(kind), metrics.ResultError)
		log.Warn("connection sequence failed", zap.Error(err))
		return err
	}

	old := m.commit(sess, read, readReg)
	if old != nil {
		m.teardown(old)
	}
	m.selector.Remember(kind)
	m.metrics.ConnectAttempt(string(kind), metrics.ResultSuccess)
	m.metrics.SetConnected(true)
	m.store.Dispatch(store.Connected{
		Address:   sess.account.Hex(),
		ChainID:   sess.chainID,
		NetworkID: sess.networkID,
	})
	log.Info("wallet connected",
		zap.String("address", sess.account.Hex()),
		zap.Int64("chain_id", sess.chainID),
		zap.Int("contracts", len(sess.instances)))
	return nil
}

// establish runs the connection sequence against p without touching the
// committed state. On success the caller commits the returned session and
// read client.
func (m *Manager) establish(ctx context.Context, p provider.Provider) (*session, *chain.ReadClient, *contract.Registry, error) {
	write := NewWriteClient(p)

	sess := &session{provider: p, write: write, stop: make(chan struct{})}
	if err := m.readIdentity(ctx, sess); err != nil {
		return nil, nil, nil, err
	}
	if err := m.testChain(sess.chainID); err != nil {
		return nil, nil, nil, err
	}
	if err := m.bind(sess); err != nil {
		return nil, nil, nil, err
	}
	read, readReg, err := m.ensureRead(ctx, sess.chainID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sess, read, readReg, nil
}

// readIdentity reads account, network id and chain id in parallel.
func (m *Manager) readIdentity(ctx context.Context, sess *session) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := sess.write.Account(gctx)
		sess.account = acc
		return err
	})
	g.Go(func() error {
		id, err := sess.write.NetworkID(gctx)
		sess.networkID = id
		return err
	})
	g.Go(func() error {
		id, err := sess.write.ChainID(gctx)
		sess.chainID = id
		return err
	})
	return g.Wait()
}

// bind builds the registry for the session's chain and an instance of every
// entry, sending from the session's account.
func (m *Manager) bind(sess *session) error {
	reg, err := m.build(sess.chainID)
	if err != nil {
		return fmt.Errorf("building contract registry: %w", err)
	}
	sess.registry = reg
	sess.instances = contract.BindAll(reg, sess.write, sess.account)
	return nil
}

// testChain accepts chainID if it is in the registry. Otherwise the user is
// told, the cached provider is forgotten and the manager disconnects.
func (m *Manager) testChain(chainID int64) error {
	if m.chains.IsSupported(chainID) {
		return nil
	}
	m.log.Warn("unsupported network", zap.Int64("chain_id", chainID))
	m.metrics.UnsupportedChain(strconv.FormatInt(chainID, 10))
	m.notify.Show(ui.IntentDanger, "Unsupported network", "network")
	if err := m.selector.ClearCachedProvider(); err != nil {
		m.log.Warn("could not clear cached provider", zap.Error(err))
	}
	m.disconnectLocked(false)
	return fmt.Errorf("%w: chain %d", ErrUnsupportedChain, chainID)
}

// ensureRead returns a read client for chainID: the current one if it
// already targets that chain, otherwise a freshly dialed one.
func (m *Manager) ensureRead(ctx context.Context, chainID int64) (*chain.ReadClient, *contract.Registry, error) {
	m.resMu.RLock()
	cur, curReg := m.read, m.readReg
	m.resMu.RUnlock()
	if cur != nil && cur.ChainID() == chainID {
		return cur, curReg, nil
	}

	c, err := m.chains.GetByChainID(chainID)
	if err != nil {
		return nil, nil, err
	}
	reg, err := m.build(chainID)
	if err != nil {
		return nil, nil, fmt.Errorf("building contract registry: %w", err)
	}
	dctx, cancel := context.WithTimeout(ctx, m.timeouts.Dial.Std())
	defer cancel()
	rc, err := chain.DialRead(dctx, c, m.dial)
	if err != nil {
		return nil, nil, fmt.Errorf("read client: %w", err)
	}
	m.log.Debug("read client dialed", zap.Int64("chain_id", chainID), zap.String("url", rc.URL()))
	return rc, reg, nil
}

// commitRead installs rc as the read client, closing the one it replaces.
func (m *Manager) commitRead(rc *chain.ReadClient, reg *contract.Registry) {
	m.resMu.Lock()
	old := m.read
	m.read, m.readReg = rc, reg
	m.resMu.Unlock()
	if old != nil && old != rc {
		old.Close()
	}
}

// commit installs sess and starts its event pump. It returns the session it
// replaced, if any.
func (m *Manager) commit(sess *session, rc *chain.ReadClient, reg *contract.Registry) *session {
	m.commitRead(rc, reg)

	m.resMu.Lock()
	m.nextGen++
	sess.gen = m.nextGen
	old := m.sess
	m.sess = sess
	m.phase = PhaseConnected
	m.pumps.Add(1)
	m.resMu.Unlock()

	go m.pump(sess.gen, sess.provider.Events(), sess.stop)
	return old
}

// teardown stops sess's event pump and closes its provider.
func (m *Manager) teardown(sess *session) {
	close(sess.stop)
	if err := sess.provider.Close(); err != nil {
		m.log.Debug("closing provider", zap.Error(err))
	}
}

// Disconnect closes the active provider, forgets the cached provider and
// publishes the disconnected state. It is a no-op when already disconnected.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked(true)
	return nil
}

// disconnectLocked tears the session down. The caller holds m.mu.
func (m *Manager) disconnectLocked(clearCache bool) {
	m.resMu.Lock()
	sess := m.sess
	m.sess = nil
	m.phase = PhaseDisconnected
	m.resMu.Unlock()

	if sess == nil {
		return
	}
	m.teardown(sess)
	if clearCache && m.selector != nil {
		if err := m.selector.ClearCachedProvider(); err != nil {
			m.log.Warn("could not clear cached provider", zap.Error(err))
		}
	}
	m.metrics.SetConnected(false)
	m.store.Dispatch(store.Disconnected{})
	m.log.Info("wallet disconnected", zap.String("address", sess.account.Hex()))
}

// Send submits a plain transaction from the connected account. It returns as
// soon as the node assigns a hash; the hash is tracked as pending.
func (m *Manager) Send(ctx context.Context, req TxRequest) (common.Hash, error) {
	sess := m.current()
	if sess == nil {
		return common.Hash{}, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeouts.Submit.Std())
	defer cancel()

	hash, err := sess.write.SendTransaction(ctx, contract.Message{
		From:     sess.account,
		To:       req.To,
		Data:     req.Data,
		Value:    req.Value,
		Gas:      req.Gas,
		GasPrice: req.GasPrice,
	})
	m.metrics.TransactionSubmitted("send", err)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrTransactionRejected, err)
	}
	m.track(hash)
	return hash, nil
}

// CallContract invokes a state-changing method on a registered contract. A
// trailing contract.CallOptions argument sets value, gas or sender.
func (m *Manager) CallContract(ctx context.Context, name, method string, args ...interface{}) (common.Hash, error) {
	sess := m.current()
	if sess == nil {
		return common.Hash{}, fmt.Errorf("%w: %s (%w)", contract.ErrMissingContractInstance, name, ErrNotConnected)
	}
	inst, ok := sess.instances[name]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", contract.ErrMissingContractInstance, name)
	}
	params, _ := contract.SplitOptions(args)
	if _, err := inst.Pack(method, params...); err != nil {
		return common.Hash{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeouts.Submit.Std())
	defer cancel()

	hash, err := inst.Transact(ctx, method, args...)
	m.metrics.TransactionSubmitted("call", err)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrTransactionRejected, err)
	}
	m.track(hash)
	return hash, nil
}

func (m *Manager) track(hash common.Hash) {
	m.store.Dispatch(store.AddTransaction{Hash: hash.Hex()})
	m.metrics.SetPending(len(m.store.State().PendingTransactions))
}

// Read calls a view method through the read client, using the descriptor
// registered for the read client's chain.
func (m *Manager) Read(ctx context.Context, name, method string, args ...interface{}) ([]interface{}, error) {
	m.resMu.RLock()
	rc, reg := m.read, m.readReg
	m.resMu.RUnlock()
	if rc == nil {
		return nil, fmt.Errorf("no read client: %w", ErrNotConnected)
	}
	d, err := reg.Get(name)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeouts.Read.Std())
	defer cancel()
	return contract.NewCaller(rc).Call(ctx, d, method, args...)
}

// ReadDescriptor returns the descriptor registered under name on the read
// client's chain.
func (m *Manager) ReadDescriptor(name string) (*contract.Descriptor, error) {
	m.resMu.RLock()
	reg := m.readReg
	m.resMu.RUnlock()
	if reg == nil {
		return nil, fmt.Errorf("no read client: %w", ErrNotConnected)
	}
	return reg.Get(name)
}

// Reconcile drops pending hashes that have a receipt on the read client's
// chain. It returns how many were dropped.
func (m *Manager) Reconcile(ctx context.Context) (int, error) {
	m.resMu.RLock()
	rc := m.read
	m.resMu.RUnlock()
	if rc == nil {
		return 0, fmt.Errorf("no read client: %w", ErrNotConnected)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeouts.Read.Std())
	defer cancel()

	var errs []error
	done := 0
	for _, h := range m.store.State().PendingTransactions {
		r, err := rc.Receipt(ctx, common.HexToHash(h))
		if err != nil {
			errs = append(errs, fmt.Errorf("receipt %s: %w", h, err))
			continue
		}
		if r == nil {
			continue
		}
		m.store.Dispatch(store.RemoveTransaction{Hash: h})
		m.log.Info("transaction mined",
			zap.String("hash", h),
			zap.Uint64("block", r.BlockNumber),
			zap.Bool("success", r.Status == 1))
		done++
	}
	m.metrics.SetPending(len(m.store.State().PendingTransactions))
	return done, errors.Join(errs...)
}

// Resume prepares the read client for the default chain and, when a provider
// was used before, reconnects to it. Reconnection is best effort: failures
// are logged, not returned.
func (m *Manager) Resume(ctx context.Context) error {
	m.mu.Lock()
	rc, reg, err := m.ensureRead(ctx, m.defaultChain)
	if err == nil {
		m.commitRead(rc, reg)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if m.selector == nil {
		return nil
	}
	kind, ok := m.selector.CachedProvider()
	if !ok {
		return nil
	}
	if err := m.ConnectTo(ctx, kind); err != nil {
		m.log.Warn("could not resume wallet session", zap.String("provider", string(kind)), zap.Error(err))
	}
	return nil
}

// State returns a snapshot of the published connection state.
func (m *Manager) State() store.State { return m.store.State() }

// Status returns the current phase.
func (m *Manager) Status() Phase {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	return m.phase
}

// ReadClient returns the current read client, or nil.
func (m *Manager) ReadClient() *chain.ReadClient {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	return m.read
}

// Contract returns the live instance registered under name.
func (m *Manager) Contract(name string) (*contract.Instance, error) {
	sess := m.current()
	if sess == nil {
		return nil, fmt.Errorf("%w: %s (%w)", contract.ErrMissingContractInstance, name, ErrNotConnected)
	}
	inst, ok := sess.instances[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contract.ErrMissingContractInstance, name)
	}
	return inst, nil
}

// Contracts returns the names of the live instances in registration order.
func (m *Manager) Contracts() []string {
	sess := m.current()
	if sess == nil {
		return nil
	}
	return sess.registry.Names()
}

// Close tears the session down without forgetting the cached provider, so a
// later Resume can reconnect, and releases the read client.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.disconnectLocked(false)
	m.resMu.Lock()
	m.closed = true
	rc := m.read
	m.read, m.readReg = nil, nil
	m.resMu.Unlock()
	m.mu.Unlock()

	if rc != nil {
		rc.Close()
	}
	m.pumps.Wait()
	return nil
}

func (m *Manager) current() *session {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	return m.sess
}

func (m *Manager) setPhase(p Phase) {
	m.resMu.Lock()
	m.phase = p
	m.resMu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	return m.closed
}
