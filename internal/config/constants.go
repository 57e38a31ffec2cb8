package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitTransfer      = uint64(21_000)  // native RBTC transfer
	GasLimitERC20Transfer = uint64(60_000)  // token transfer or approve
	GasLimitContractCall  = uint64(200_000) // generic contract state-change call
	GasLimitLending       = uint64(450_000) // lending pool mint/burn/borrow
)

// MinGasPrice is the floor applied to node gas price suggestions. RSK nodes
// reject transactions below the block minimum gas price.
const MinGasPrice = int64(60_000_000) // 0.06 gwei

// Defaults.
const (
	DefaultChainID             = int64(31) // RSK testnet
	DefaultPairingPollInterval = 2 * time.Second
	DefaultLogLevel            = "info"
	DefaultMetricsAddr         = "127.0.0.1:9464"
	TxConfirmTimeout           = 3 * time.Minute
)

// ConfigDirEnv overrides the config directory.
const ConfigDirEnv = "W3LINK_CONFIG_DIR"
