package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/config"
	"github.com/Mohsinsiddi/w3link/internal/logging"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3link/cmd.Version=1.2.3" .
var Version = "0.3.0"

var (
	cfgDir   string
	cfg      *config.Config
	logLevel string
	verbose  bool
	log      *zap.Logger
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3link",
	Short: "Wallet connections and transactions for RSK lending",
	Long: `w3link connects a wallet to the RSK lending contracts and submits
transactions through it.

  Connect an in-process wallet or pair a remote one, check that it is on a
  supported network, then send RBTC, call lending contracts and watch the
  connection state live.

The last wallet provider used is remembered; later commands reconnect to it
silently. Forget it with: w3link disconnect`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		log, err = logging.Setup(level, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.ConfigDirEnv+" or ~/.w3link)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs with caller)")

	// Register all sub-commands.
	rootCmd.AddCommand(
		connectCmd,
		disconnectCmd,
		statusCmd,
		sendCmd,
		callCmd,
		readCmd,
		contractsCmd,
		networksCmd,
		walletCmd,
		watchCmd,
		configCmd,
	)
}
