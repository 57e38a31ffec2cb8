package cmd

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3link/internal/config"
	"github.com/Mohsinsiddi/w3link/internal/network"
	"github.com/Mohsinsiddi/w3link/internal/ui"
)

var (
	sendTo       string
	sendValue    string
	sendData     string
	sendGasLimit uint64
	sendGasPrice string
	sendWait     bool
	sendYes      bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send RBTC from the connected wallet",
	Long: `Send RBTC (and optional calldata) from the connected wallet.

The command returns as soon as the node assigns a hash. With --wait it keeps
polling for the receipt.

Examples:
  w3link send --to 0xRecipient --value 0.001
  w3link send --to 0xRecipient --value 0 --data 0xa9059cbb... --wait`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(sendTo) {
			return fmt.Errorf("--to must be an address, got %q", sendTo)
		}
		value, err := toWei(sendValue)
		if err != nil {
			return err
		}
		var data []byte
		if sendData != "" {
			if data, err = hexutil.Decode(sendData); err != nil {
				return fmt.Errorf("--data: %w", err)
			}
		}
		var gasPrice *big.Int
		if sendGasPrice != "" {
			var ok bool
			if gasPrice, ok = new(big.Int).SetString(sendGasPrice, 10); !ok {
				return fmt.Errorf("--gas-price must be an integer amount of wei")
			}
		}

		ctx := cmd.Context()
		s := newSession()
		defer s.close()
		if err := s.requireConnected(ctx); err != nil {
			return err
		}
		st := s.m.State()

		to := common.HexToAddress(sendTo)
		gasLabel := "estimated by wallet"
		if sendGasLimit > 0 {
			gasLabel = fmt.Sprintf("%d", sendGasLimit)
		}
		fmt.Println(ui.KeyValueBlock("Transaction Preview", [][2]string{
			{"From", ui.Addr(st.Address)},
			{"To", ui.Addr(to.Hex())},
			{"Value", fromWei(value) + " RBTC"},
			{"Data", fmt.Sprintf("%d bytes", len(data))},
			{"Gas Limit", gasLabel},
			{"Network", ui.ChainName(s.chainLabel(st.ChainID))},
		}))

		if !sendYes && !s.confirmBroadcast("Broadcast this transaction?", st.ChainID) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner("Sending...")
		spin.Start()
		hash, err := s.m.Send(ctx, network.TxRequest{
			To:       &to,
			Value:    value,
			Data:     data,
			Gas:      sendGasLimit,
			GasPrice: gasPrice,
		})
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Transaction sent!"))
		fmt.Println(ui.Addr("Hash: " + hash.Hex()))
		printExplorerLink(s, st.ChainID, hash)

		if sendWait {
			return waitMined(ctx, s, hash)
		}
		return nil
	},
}

// printExplorerLink prints the explorer page of hash when the chain has one.
func printExplorerLink(s *session, chainID int64, hash common.Hash) {
	if c, err := s.chains.GetByChainID(chainID); err == nil && c.Explorer != "" {
		fmt.Println(ui.Meta(c.Explorer + "/tx/" + hash.Hex()))
	}
}

// waitMined polls until hash leaves the pending set or the confirm timeout
// expires.
func waitMined(ctx context.Context, s *session, hash common.Hash) error {
	ctx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
	defer cancel()

	spin := ui.NewSpinner("Waiting for the transaction to be mined...")
	spin.Start()
	defer spin.Stop()

	tick := time.NewTicker(3 * time.Second)
	defer tick.Stop()
	for {
		if _, err := s.m.Reconcile(ctx); err != nil {
			log.Debug("receipt poll failed", zap.Error(err))
		}
		if !slices.Contains(s.m.State().PendingTransactions, hash.Hex()) {
			spin.Stop()
			fmt.Println(ui.Success("Mined."))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-tick.C:
		}
	}
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (required)")
	sendCmd.Flags().StringVar(&sendValue, "value", "0", "amount of RBTC to send, e.g. 0.001")
	sendCmd.Flags().StringVar(&sendData, "data", "", "hex calldata")
	sendCmd.Flags().Uint64Var(&sendGasLimit, "gas", 0, "gas limit (default: estimated by the wallet)")
	sendCmd.Flags().StringVar(&sendGasPrice, "gas-price", "", "gas price in wei (default: wallet)")
	sendCmd.Flags().BoolVar(&sendWait, "wait", false, "wait until the transaction is mined")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	_ = sendCmd.MarkFlagRequired("to")
}
