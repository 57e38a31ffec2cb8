package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3link/internal/asset"
	"github.com/Mohsinsiddi/w3link/internal/chain"
	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/metrics"
	"github.com/Mohsinsiddi/w3link/internal/network"
	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/store"
	"github.com/Mohsinsiddi/w3link/internal/ui"
	"github.com/Mohsinsiddi/w3link/internal/wallet"
)

// providerLabels is what the picker shows for each provider kind.
var providerLabels = map[provider.Kind][2]string{
	provider.KindInjected: {"Local wallet", "sign with a key from your OS keychain"},
	provider.KindPairing:  {"Remote wallet", "pair with a wallet over its RPC endpoint"},
}

// session bundles what a command needs to talk to the manager.
type session struct {
	m       *network.Manager
	chains  *chain.Registry
	toaster *ui.Toaster
	metrics *metrics.Metrics
}

// sessionOption tweaks how newSession builds the manager.
type sessionOption func(*sessionSettings)

type sessionSettings struct {
	metrics *metrics.Metrics
	notify  network.Notifier
	toaster *ui.Toaster
}

func withMetrics(m *metrics.Metrics) sessionOption {
	return func(s *sessionSettings) { s.metrics = m }
}

func withNotifier(n network.Notifier) sessionOption {
	return func(s *sessionSettings) { s.notify = n }
}

// newSession wires the connection manager from config: the supported
// networks with user endpoints, the provider factories and the
// last-provider cache.
func newSession(opts ...sessionOption) *session {
	var set sessionSettings
	for _, o := range opts {
		o(&set)
	}
	if set.toaster == nil {
		set.toaster = ui.NewToaster(os.Stderr)
	}
	if set.notify == nil {
		set.notify = set.toaster
	}

	chains := chain.NewRegistry().WithOverrides(cfg.CustomRPCs, cfg.CustomWS)

	sel := provider.NewSelector(provider.NewFileCache(), chooseProvider, log)
	sel.Register(provider.KindInjected, injectedFactory(chains))
	sel.Register(provider.KindPairing, pairingFactory(chains))

	m := network.New(
		network.WithChains(chains),
		network.WithContracts(contract.NewBuilder(asset.NewCatalog(), contract.DefaultAppContracts())),
		network.WithSelector(sel),
		network.WithStore(store.Global()),
		network.WithNotifier(set.notify),
		network.WithLogger(log),
		network.WithMetrics(set.metrics),
		network.WithDefaultChain(cfg.DefaultChainID),
		network.WithTimeouts(cfg.Timeouts),
	)
	return &session{m: m, chains: chains, toaster: set.toaster, metrics: set.metrics}
}

// resume restores the read client and the remembered provider, if any.
func (s *session) resume(ctx context.Context) error {
	spin := ui.NewSpinner("Connecting to " + s.chainLabel(cfg.DefaultChainID) + "...")
	spin.Start()
	err := s.m.Resume(ctx)
	spin.Stop()
	return err
}

// requireConnected resumes and, when no wallet comes back, runs a full
// Connect so the user can pick one.
func (s *session) requireConnected(ctx context.Context) error {
	if err := s.resume(ctx); err != nil {
		return err
	}
	if s.m.State().Connected {
		return nil
	}
	return s.m.Connect(ctx)
}

func (s *session) chainLabel(id int64) string {
	c, err := s.chains.GetByChainID(id)
	if err != nil {
		return fmt.Sprintf("chain %d", id)
	}
	return c.DisplayName
}

// confirmBroadcast asks before submitting. Outside testnets the user must
// type "yes".
func (s *session) confirmBroadcast(prompt string, chainID int64) bool {
	if c, err := s.chains.GetByChainID(chainID); err == nil && c.Testnet {
		return ui.Confirm(prompt)
	}
	return ui.ConfirmDanger(prompt + " Real funds are at stake.")
}

func (s *session) close() {
	_ = s.m.Close()
}

// chooseProvider is the interactive provider picker.
func chooseProvider(_ context.Context, kinds []provider.Kind) (provider.Kind, error) {
	items := make([]ui.PickerItem, len(kinds))
	for i, k := range kinds {
		label := providerLabels[k]
		items[i] = ui.PickerItem{Label: label[0], SubLabel: label[1], Value: string(k)}
	}
	picked, err := ui.PickItem("Connect a wallet", items)
	if errors.Is(err, ui.ErrPickCancelled) {
		return "", provider.ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return provider.ParseKind(picked)
}

// injectedFactory opens the default wallet as an in-process provider on the
// default chain.
func injectedFactory(chains *chain.Registry) provider.Factory {
	return func(ctx context.Context) (provider.Provider, error) {
		signer, err := newWalletManager().Signer(cfg.DefaultWallet)
		if err != nil {
			return nil, fmt.Errorf("%w\n  Add one with: w3link wallet add <name> --key, then: w3link wallet use <name>", err)
		}
		if !signer.Wallet().CanSign() {
			return nil, fmt.Errorf("wallet %q is watch-only and cannot sign transactions", signer.Wallet().Name)
		}
		return provider.NewInjected(ctx, provider.InjectedConfig{
			Signer:    signer,
			ChainID:   cfg.DefaultChainID,
			Endpoints: chains.RPCTable(),
			Logger:    log,
		})
	}
}

// pairingFactory pairs with the configured remote wallet, or with the
// default chain's RPC endpoint when none is configured. The session code is
// printed before dialing so the user can confirm it in the wallet.
func pairingFactory(chains *chain.Registry) provider.Factory {
	return func(ctx context.Context) (provider.Provider, error) {
		url := cfg.PairingURL
		if url == "" {
			url = chains.RPCTable()[cfg.DefaultChainID]
		}
		code, err := provider.GeneratePairCode()
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(os.Stderr, ui.Info("Pairing code: "+ui.Val(code)))
		fmt.Fprintln(os.Stderr, ui.Hint("Confirm this code in your wallet to continue."))

		return provider.NewPairing(ctx, provider.PairingConfig{
			URL:          url,
			Code:         code,
			PollInterval: cfg.PairingPollInterval.Std(),
			Logger:       log,
		})
	}
}

// newWalletManager creates a wallet Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}
