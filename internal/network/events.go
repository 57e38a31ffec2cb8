package network

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/chain"
	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/store"
)

// pump forwards provider events of one session to handleEvent until the
// session is torn down or the provider closes its channel.
func (m *Manager) pump(gen uint64, events <-chan provider.Event, stop <-chan struct{}) {
	defer m.pumps.Done()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(gen, ev)
			if ev.Type == provider.Closed {
				return
			}
		}
	}
}

// handleEvent applies a provider event to the session it was emitted for.
// Events from replaced sessions are dropped.
func (m *Manager) handleEvent(gen uint64, ev provider.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.current()
	if sess == nil || sess.gen != gen {
		m.log.Debug("dropping stale provider event", zap.Stringer("event", ev.Type))
		return
	}
	log := m.log.With(zap.Stringer("event", ev.Type))

	switch ev.Type {
	case provider.ChainChanged, provider.NetworkChanged:
		log.Info("network changed", zap.Int64("chain_id", ev.ChainID), zap.Int64("network_id", ev.NetworkID))
		m.reconnect(sess)

	case provider.AccountsChanged:
		if len(ev.Accounts) == 0 {
			log.Info("wallet locked or all accounts revoked")
			m.disconnectLocked(true)
			return
		}
		m.switchAccount(sess, ev.Accounts[0])

	case provider.Closed:
		if ev.Err != nil {
			log.Warn("provider closed", zap.Error(ev.Err))
		}
		m.disconnectLocked(true)
	}
}

// reconnect rebuilds the session for the provider's current chain. Instances
// and the read client are replaced; the provider is kept.
func (m *Manager) reconnect(sess *session) {
	m.setPhase(PhaseReconnecting)

	ctx, cancel := context.WithTimeout(context.Background(), m.timeouts.Connect.Std())
	defer cancel()

	next := &session{
		gen:      sess.gen,
		provider: sess.provider,
		write:    sess.write,
		stop:     sess.stop,
	}
	err := m.readIdentity(ctx, next)
	if err == nil {
		err = m.testChain(next.chainID)
	}
	if errors.Is(err, ErrUnsupportedChain) {
		return
	}
	if err == nil {
		err = m.bind(next)
	}
	var (
		rc  *chain.ReadClient
		reg *contract.Registry
	)
	if err == nil {
		rc, reg, err = m.ensureRead(ctx, next.chainID)
	}
	if err != nil {
		m.log.Warn("reconnect failed", zap.Error(err))
		m.disconnectLocked(true)
		return
	}

	m.commitRead(rc, reg)
	m.resMu.Lock()
	m.sess = next
	m.phase = PhaseConnected
	m.resMu.Unlock()

	m.metrics.ChainChanged()
	m.store.Dispatch(store.ChainChanged{ChainID: next.chainID, NetworkID: next.networkID})
	if next.account != sess.account {
		m.store.Dispatch(store.AccountChanged{Address: next.account.Hex()})
	}
	m.log.Info("reconnected",
		zap.Int64("chain_id", next.chainID),
		zap.Int("contracts", len(next.instances)))
}

// switchAccount rebinds every instance to send from account.
func (m *Manager) switchAccount(sess *session, account common.Address) {
	if account == sess.account {
		return
	}
	next := *sess
	next.account = account
	next.instances = contract.BindAll(sess.registry, sess.write, account)

	m.resMu.Lock()
	m.sess = &next
	m.resMu.Unlock()

	m.store.Dispatch(store.AccountChanged{Address: account.Hex()})
	m.log.Info("account changed", zap.String("address", account.Hex()))
}
