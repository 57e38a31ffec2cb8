package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/metrics"
	"github.com/Mohsinsiddi/w3link/internal/store"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var (
	watchMetricsAddr string
	watchNoMetrics   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the wallet connection live",
	Long: `Keep the wallet connected and stream every state change into a live
TUI table: connects, account and network switches, submitted and mined
transactions. Switching the wallet to an unsupported network shows a
warning and disconnects.

Prometheus metrics are served on --metrics-addr while watching.

Keyboard controls:
  ↑↓ / j k   navigate rows
  q           quit

Examples:
  w3link watch
  w3link watch --metrics-addr 0.0.0.0:9464`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		addr := watchMetricsAddr
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		var mt *metrics.Metrics
		if !watchNoMetrics {
			mt = metrics.New()
		}

		notify := &programNotifier{}
		s := newSession(withMetrics(mt), withNotifier(notify))
		defer s.close()

		model := ui.WatchModel{
			Current: store.Global().State(),
			ChainName: func(id int64) string {
				return s.chainLabel(id)
			},
		}
		if mt != nil {
			srv, bound, err := serveMetrics(addr, mt)
			if err != nil {
				return err
			}
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer scancel()
				_ = srv.Shutdown(sctx)
			}()
			model.Metrics = bound
		}

		prog := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
		notify.prog = prog

		unsubscribe := store.Global().Subscribe(func(a store.Action, st store.State) {
			prog.Send(ui.StateMsg{Action: a.Name(), State: st, At: time.Now()})
		})
		defer unsubscribe()

		go func() {
			if err := s.m.Resume(ctx); err != nil {
				notify.Show(ui.IntentDanger, err.Error(), "resume")
				return
			}
			if !s.m.State().Connected {
				notify.Show(ui.IntentPrimary, "No wallet remembered; run `w3link connect` first", "resume")
			}
			pollReceipts(ctx, s)
		}()

		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// programNotifier routes manager notices into the running TUI.
type programNotifier struct {
	prog *tea.Program
}

func (n *programNotifier) Show(intent ui.Intent, message, key string) {
	if n.prog == nil {
		return
	}
	n.prog.Send(ui.ToastMsg{Intent: intent, Message: message, Key: key, At: time.Now()})
}

// pollReceipts reconciles pending transactions until ctx ends.
func pollReceipts(ctx context.Context, s *session) {
	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		if len(s.m.State().PendingTransactions) == 0 {
			continue
		}
		if _, err := s.m.Reconcile(ctx); err != nil {
			log.Debug("reconcile failed", zap.Error(err))
		}
	}
}

// serveMetrics starts the Prometheus endpoint and returns the bound address.
func serveMetrics(addr string, mt *metrics.Metrics) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", mt.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	log.Debug("serving metrics", zap.String("addr", ln.Addr().String()))
	return srv, ln.Addr().String(), nil
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (default: config)")
	watchCmd.Flags().BoolVar(&watchNoMetrics, "no-metrics", false, "do not serve metrics")
}
