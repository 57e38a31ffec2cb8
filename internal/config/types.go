package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds all w3link configuration.
type Config struct {
	DefaultChainID      int64              `json:"default_chain_id"`
	DefaultWallet       string             `json:"default_wallet"`
	PairingURL          string             `json:"pairing_url,omitempty"` // remote wallet endpoint; empty = chain RPC table
	PairingPollInterval Duration           `json:"pairing_poll_interval"`
	CustomRPCs          map[int64][]string `json:"custom_rpcs"`
	CustomWS            map[int64][]string `json:"custom_ws"`
	LogLevel            string             `json:"log_level"`
	MetricsAddr         string             `json:"metrics_addr"`
	Timeouts            Timeouts           `json:"timeouts"`

	// internal: config dir path used for Save()
	configDir string
}

// Timeouts controls operation deadlines.
// Zero values are replaced by defaults in WithDefaults.
type Timeouts struct {
	Dial    Duration `json:"dial"`    // opening a provider or read client
	Read    Duration `json:"read"`    // eth_call, chain id, receipts
	Submit  Duration `json:"submit"`  // send tx / contract call
	Connect Duration `json:"connect"` // a whole connection sequence, user interaction included
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:    10s
//	Read:    12s
//	Submit:  30s
//	Connect: 2m
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = Duration(10 * time.Second)
	}
	if tt.Read == 0 {
		tt.Read = Duration(12 * time.Second)
	}
	if tt.Submit == 0 {
		tt.Submit = Duration(30 * time.Second)
	}
	if tt.Connect == 0 {
		tt.Connect = Duration(2 * time.Minute)
	}
	return tt
}

// Duration is a time.Duration that reads and writes as "1m30s" in JSON.
// Plain numbers are accepted as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*d = Duration(time.Duration(x * float64(time.Second)))
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}
