package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var (
	callValue    string
	callGasLimit uint64
	callWait     bool
	callYes      bool
)

var callCmd = &cobra.Command{
	Use:   "call <contract> <method> [args...]",
	Short: "Send a state-changing call to a lending contract",
	Long: `Invoke a state-changing method on a registered contract from the
connected wallet. Contracts are named by their logical name; list them with
'w3link contracts'.

Examples:
  w3link call BTC-lending mint 0xYourAddress 1000000000000000 --value 0.001
  w3link call USD-token approve 0xD1A979EDE2c17FCD31800Bed859e5EC3DA178Cb9 1000000000000000000`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, method, rawArgs := args[0], args[1], args[2:]
		value, err := toWei(callValue)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s := newSession()
		defer s.close()
		if err := s.requireConnected(ctx); err != nil {
			return err
		}

		inst, err := s.m.Contract(name)
		if err != nil {
			return err
		}
		m, err := inst.Method(method)
		if err != nil {
			return err
		}
		if m.IsConstant() {
			return fmt.Errorf("%s is a read function; use: w3link read %s %s", method, name, method)
		}
		params, err := contract.ParseArgs(m, rawArgs)
		if err != nil {
			return err
		}

		st := s.m.State()
		pairs := [][2]string{
			{"Contract", fmt.Sprintf("%s  %s", ui.Val(name), ui.Addr(inst.Address.Hex()))},
			{"Function", ui.Val(m.Sig)},
			{"From", ui.Addr(st.Address)},
		}
		for i, a := range rawArgs {
			pairs = append(pairs, [2]string{fmt.Sprintf("Arg[%d]", i), a})
		}
		pairs = append(pairs,
			[2]string{"Value", fromWei(value) + " RBTC"},
			[2]string{"Network", ui.ChainName(s.chainLabel(st.ChainID))},
		)
		fmt.Println(ui.KeyValueBlock("Contract Call", pairs))

		if !callYes && !s.confirmBroadcast("Send this call?", st.ChainID) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner(fmt.Sprintf("Calling %s.%s...", name, method))
		spin.Start()
		hash, err := s.m.CallContract(ctx, name, method,
			append(params, contract.CallOptions{Value: value, Gas: callGasLimit})...)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Call sent!"))
		fmt.Println(ui.Addr("Hash: " + hash.Hex()))
		printExplorerLink(s, st.ChainID, hash)
		if callWait {
			return waitMined(ctx, s, hash)
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <contract> <method> [args...]",
	Short: "Call a read-only function on a lending contract",
	Long: `Call a view function through the read node. No wallet is needed: the
read node follows the connected wallet's network, or the default network.

Examples:
  w3link read BTC-lending tokenPrice
  w3link read USD-token balanceOf 0xYourAddress`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, method, rawArgs := args[0], args[1], args[2:]

		ctx := cmd.Context()
		s := newSession()
		defer s.close()
		if err := s.resume(ctx); err != nil {
			return err
		}

		d, err := s.m.ReadDescriptor(name)
		if err != nil {
			return err
		}
		m, err := d.Method(method)
		if err != nil {
			return err
		}
		params, err := contract.ParseArgs(m, rawArgs)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Calling %s.%s...", name, method))
		spin.Start()
		results, err := s.m.Read(ctx, name, method, params...)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("contract call failed: %w", err)
		}

		pairs := [][2]string{
			{"Contract", fmt.Sprintf("%s  %s", ui.Val(name), ui.Addr(d.Address.Hex()))},
			{"Function", ui.Val(m.Sig)},
			{"Network", ui.ChainName(s.chainLabel(d.ChainID))},
		}
		if len(results) == 1 {
			pairs = append(pairs, [2]string{"Result", ui.Val(contract.FormatValue(results[0]))})
		} else {
			for i, r := range results {
				pairs = append(pairs, [2]string{fmt.Sprintf("Result[%d]", i), ui.Val(contract.FormatValue(r))})
			}
		}
		fmt.Println(ui.KeyValueBlock("Contract Read", pairs))
		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&callValue, "value", "0", "RBTC to send with the call, e.g. 0.001")
	callCmd.Flags().Uint64Var(&callGasLimit, "gas", 0, "gas limit (default: estimated by the wallet)")
	callCmd.Flags().BoolVar(&callWait, "wait", false, "wait until the transaction is mined")
	callCmd.Flags().BoolVarP(&callYes, "yes", "y", false, "skip the confirmation prompt")
}
