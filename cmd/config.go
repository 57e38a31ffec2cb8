package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3link/internal/config"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetWalletCmd = &cobra.Command{
	Use:   "set-wallet <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newWalletManager().Get(args[0]); err != nil {
			return fmt.Errorf("wallet %q not found; run `w3link wallet list` to see all wallets", args[0])
		}
		cfg.DefaultWallet = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

var configSetChainCmd = &cobra.Command{
	Use:   "set-chain <chain-id|name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return networkUseCmd.RunE(cmd, args)
	},
}

var configSetPairingCmd = &cobra.Command{
	Use:   "set-pairing <url> [poll-interval]",
	Short: "Set the remote wallet endpoint used by the pairing provider",
	Long: `Set the remote wallet URL and, optionally, how often it is polled for
account and network changes.

Examples:
  w3link config set-pairing https://wallet.example/rpc
  w3link config set-pairing https://wallet.example/rpc 5s`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.PairingURL = args[0]
		if len(args) == 2 {
			d, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("poll interval: %w", err)
			}
			cfg.PairingPollInterval = config.Duration(d)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Pairing wallet set to %s (poll every %s)", cfg.PairingURL, cfg.PairingPollInterval)))
		return nil
	},
}

var configSetLogLevelCmd = &cobra.Command{
	Use:   "set-log-level <level>",
	Short: "Set the default log level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.LogLevel = args[0]
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Log level set to %s", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetWalletCmd, configSetChainCmd, configSetPairingCmd, configSetLogLevelCmd)
}
