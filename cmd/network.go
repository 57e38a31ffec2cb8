package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3link/internal/asset"
	"github.com/Mohsinsiddi/w3link/internal/chain"
	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/endpoint"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"network"},
	Short:   "List supported networks and manage their endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry().WithOverrides(cfg.CustomRPCs, cfg.CustomWS)
		t := ui.NewTable([]ui.Column{
			{Title: "Chain ID", Width: 9, Right: true},
			{Title: "Name", Width: 14},
			{Title: "Display", Width: 14},
			{Title: "Currency", Width: 9},
			{Title: "RPC", Width: 34},
			{Title: "Read node", Width: 34},
			{Title: "Default", Width: 8},
		})

		for _, c := range reg.All() {
			def := ""
			if c.ChainID == cfg.DefaultChainID {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", c.ChainID),
				ui.ChainName(c.Name),
				c.DisplayName,
				c.NativeCurrency,
				c.RPC(),
				c.WS(),
				def,
			})
		}

		fmt.Println(t.Render())
		fmt.Printf("%s\n", ui.Meta(fmt.Sprintf("%d networks supported; wallets on any other chain are refused", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain-id|name>",
	Short: "Set the default network",
	Long: `Set the network the read node targets while no wallet is connected,
and the network a local wallet starts on.

Examples:
  w3link networks use 31
  w3link networks use rsk`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		cfg.DefaultChainID = c.ChainID
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s (%d)", ui.ChainName(c.DisplayName), c.ChainID)))
		return nil
	},
}

var networkAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <chain-id|name> <url>",
	Short: "Add a custom endpoint for a network",
	Long: `Add an endpoint that takes precedence over the built-in ones.
http(s) URLs are used by wallets, ws(s) URLs by the read node.

Examples:
  w3link networks add-rpc 31 https://my-node.example/rpc
  w3link networks add-rpc 31 wss://my-node.example/ws`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		url := args[1]
		if strings.HasPrefix(url, "ws") {
			err = cfg.AddWS(c.ChainID, url)
		} else {
			err = cfg.AddRPC(c.ChainID, url)
		}
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Endpoint for %s added: %s", c.DisplayName, url)))
		return nil
	},
}

var networkRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <chain-id|name> <url>",
	Short: "Remove a custom endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(c.ChainID, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Endpoint removed from %s", c.DisplayName)))
		return nil
	},
}

var (
	checkAlgorithm string
	// probeDial opens endpoint connections for networks check; nil dials for real.
	probeDial chain.Dialer
)

var networkCheckCmd = &cobra.Command{
	Use:   "check [chain-id|name]",
	Short: "Probe a network's endpoints",
	Long: `Dial every wallet and read-node endpoint of a network, report latency,
the chain each one serves and how far behind it is, then name the endpoint
the chosen algorithm would use.

Examples:
  w3link networks check
  w3link networks check rsk --algorithm failover`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.DefaultChainID
		if len(args) == 1 {
			c, err := lookupChain(args[0])
			if err != nil {
				return err
			}
			id = c.ChainID
		}
		c, err := chain.NewRegistry().WithOverrides(cfg.CustomRPCs, cfg.CustomWS).GetByChainID(id)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Probing %s endpoints...", c.DisplayName))
		spin.Start()
		eps := endpoint.ProbeChain(cmd.Context(), probeDial, c)
		spin.Stop()

		best, pickErr := endpoint.NewPicker(endpoint.Algorithm(checkAlgorithm)).Pick(eps)

		t := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 40},
			{Title: "Latency", Width: 10, Right: true},
			{Title: "Block", Width: 12, Right: true},
			{Title: "Status", Width: 30},
		})
		for _, e := range eps {
			status := ui.StyleSuccess.Render("healthy")
			latency, block := "-", "-"
			if e.Err == nil {
				latency = e.Latency.Round(time.Millisecond).String()
				block = fmt.Sprintf("%d", e.BlockNumber)
			}
			if !e.Healthy {
				status = ui.StyleError.Render(e.Reason)
			}
			row := ui.Row{e.URL, latency, block, status}
			if best != nil && e.URL == best.URL {
				t.AddMarkedRow(row)
			} else {
				t.AddRow(row)
			}
		}
		fmt.Println(t.Render())

		if pickErr != nil {
			return fmt.Errorf("%s: %w", c.DisplayName, pickErr)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Best endpoint (%s): %s", checkAlgorithm, best.URL)))
		return nil
	},
}

var contractsChain string

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the contracts registered on a network",
	Long: `List every contract the connection manager instantiates on a network:
a token and a lending pool per asset, then the application contracts.

Examples:
  w3link contracts
  w3link contracts --chain 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.DefaultChainID
		if contractsChain != "" {
			c, err := lookupChain(contractsChain)
			if err != nil {
				return err
			}
			id = c.ChainID
		}

		reg, err := contract.Build(id, asset.NewCatalog(), contract.DefaultAppContracts())
		if err != nil {
			return err
		}
		if reg.Len() == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("No contracts deployed on chain %d.", id)))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Kind", Width: 12},
			{Title: "Address", Width: 44},
		})
		for _, d := range reg.All() {
			t.AddRow(ui.Row{ui.Val(d.Name), ui.Meta(d.Kind), ui.Addr(d.Address.Hex())})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d contract(s) on chain %d", reg.Len(), id)))
		return nil
	},
}

// lookupChain resolves a chain id or registry name.
func lookupChain(arg string) (*chain.Chain, error) {
	reg := chain.NewRegistry()
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		c, err := reg.GetByChainID(id)
		if err != nil {
			return nil, fmt.Errorf("chain %d is not supported; run `w3link networks` to see all networks", id)
		}
		return c, nil
	}
	c, err := reg.GetByName(arg)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q; run `w3link networks` to see all networks", arg)
	}
	return c, nil
}

func init() {
	contractsCmd.Flags().StringVar(&contractsChain, "chain", "", "chain id or name (default: config)")
	networkCheckCmd.Flags().StringVar(&checkAlgorithm, "algorithm", string(endpoint.AlgorithmFastest), "selection algorithm: fastest or failover")
	networksCmd.AddCommand(networkUseCmd, networkAddRPCCmd, networkRemoveRPCCmd, networkCheckCmd)
}
