package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/network"
	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var connectProvider string

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet",
	Long: `Connect a wallet and check that it is on a supported network.

Without --provider the last provider used is reused; the first time you
pick one from a list. The choice is remembered until 'w3link disconnect'.

Providers:
  injected   a wallet from 'w3link wallet list', signing locally
  pairing    a remote wallet; confirm the printed code in it

Examples:
  w3link connect
  w3link connect --provider pairing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession()
		defer s.close()

		if err := s.resume(ctx); err != nil {
			return err
		}

		var err error
		switch {
		case connectProvider != "":
			kind, perr := provider.ParseKind(connectProvider)
			if perr != nil {
				return perr
			}
			err = s.m.ConnectTo(ctx, kind)
		case s.m.State().Connected:
			// Resumed with the remembered provider.
		default:
			err = s.m.Connect(ctx)
		}
		if err != nil {
			return err
		}

		st := s.m.State()
		fmt.Println(ui.Success("Wallet connected"))
		fmt.Println(ui.KeyValueBlock("Connection", [][2]string{
			{"Account", ui.Addr(st.Address)},
			{"Network", ui.ChainName(s.chainLabel(st.ChainID))},
			{"Chain ID", fmt.Sprintf("%d", st.ChainID)},
			{"Contracts", fmt.Sprintf("%d", len(s.m.Contracts()))},
		}))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the wallet and forget the last provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		defer s.close()

		// Forgetting the provider must work even when it can no longer connect.
		if err := s.resume(cmd.Context()); err != nil {
			log.Debug("resume before disconnect failed", zap.Error(err))
		}
		wasConnected := s.m.State().Connected
		if err := s.m.Disconnect(); err != nil {
			return err
		}
		if err := provider.NewFileCache().Clear(); err != nil {
			return fmt.Errorf("clearing cached provider: %w", err)
		}
		if wasConnected {
			fmt.Println(ui.Success("Wallet disconnected."))
		} else {
			fmt.Println(ui.Meta("No wallet connected. Cached provider cleared."))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession()
		defer s.close()

		if err := s.resume(ctx); err != nil {
			return err
		}
		st := s.m.State()

		connected := ui.StyleError.Render("no")
		if st.Connected {
			connected = ui.StyleSuccess.Render("yes")
		}
		pairs := [][2]string{
			{"Connected", connected},
			{"Phase", s.m.Status().String()},
		}
		if st.Connected {
			pairs = append(pairs,
				[2]string{"Account", ui.Addr(st.Address)},
				[2]string{"Network", ui.ChainName(s.chainLabel(st.ChainID))},
				[2]string{"Network ID", fmt.Sprintf("%d", st.NetworkID)},
			)
		}
		if rc := s.m.ReadClient(); rc != nil {
			pairs = append(pairs, [2]string{"Read node", ui.Meta(rc.URL())})
			if n, err := rc.BlockNumber(ctx); err == nil {
				pairs = append(pairs, [2]string{"Block", fmt.Sprintf("%d", n)})
			}
		}

		if len(st.PendingTransactions) > 0 {
			if _, err := s.m.Reconcile(ctx); err != nil {
				log.Debug("reconciling pending transactions failed", zap.Error(err))
			}
			st = s.m.State()
		}
		pairs = append(pairs, [2]string{"Pending txs", fmt.Sprintf("%d", len(st.PendingTransactions))})

		fmt.Println(ui.KeyValueBlock("Status", pairs))
		for _, h := range st.PendingTransactions {
			fmt.Println(ui.Meta("  pending " + h))
		}
		if !st.Connected {
			fmt.Println(ui.Hint("Connect with: w3link connect"))
		}
		return nil
	},
}

// errLine renders a command error with a hint for the failures users can fix.
func errLine(err error) string {
	var hint string
	switch {
	case errors.Is(err, provider.ErrCancelled):
		return ui.Meta("Cancelled.")
	case errors.Is(err, network.ErrUnsupportedChain):
		hint = "Switch the wallet to one of: w3link networks"
	case errors.Is(err, network.ErrNotConnected):
		hint = "Connect with: w3link connect"
	case errors.Is(err, contract.ErrMissingContractInstance):
		hint = "List the contracts on this network with: w3link contracts"
	}
	line := ui.Err(strings.TrimSpace(err.Error()))
	if hint != "" {
		line += "\n" + ui.Hint(hint)
	}
	return line
}

func init() {
	connectCmd.Flags().StringVar(&connectProvider, "provider", "", "provider kind: injected|pairing")
}
