package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Load reads config from dir (or creates defaults). An empty dir resolves to
// $W3LINK_CONFIG_DIR, then ~/.w3link.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(ConfigDirEnv)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3link")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg, err := loadJSON(filepath.Join(dir, configFile), defaults(dir))
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills implicit defaults and rejects values that cannot work.
func (c *Config) Validate() error {
	if c.DefaultChainID == 0 {
		c.DefaultChainID = DefaultChainID
	}
	if c.PairingPollInterval == 0 {
		c.PairingPollInterval = Duration(DefaultPairingPollInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[int64][]string)
	}
	if c.CustomWS == nil {
		c.CustomWS = make(map[int64][]string)
	}
	c.Timeouts = c.Timeouts.WithDefaults()

	var errs []error
	if c.DefaultChainID < 0 {
		errs = append(errs, fmt.Errorf("default_chain_id must be positive, got %d", c.DefaultChainID))
	}
	if c.PairingPollInterval < 0 {
		errs = append(errs, errors.New("pairing_poll_interval must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.PairingURL != "" {
		if err := checkURL(c.PairingURL, "http", "https", "ws", "wss"); err != nil {
			errs = append(errs, fmt.Errorf("pairing_url: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Save writes the config to disk.
func (c *Config) Save() error {
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// AddRPC adds a custom HTTP RPC URL for a chain.
func (c *Config) AddRPC(chainID int64, rawURL string) error {
	if err := checkURL(rawURL, "http", "https"); err != nil {
		return err
	}
	return addEndpoint(c.CustomRPCs, chainID, rawURL)
}

// AddWS adds a custom streaming endpoint for a chain.
func (c *Config) AddWS(chainID int64, rawURL string) error {
	if err := checkURL(rawURL, "ws", "wss"); err != nil {
		return err
	}
	return addEndpoint(c.CustomWS, chainID, rawURL)
}

// RemoveRPC removes a custom RPC or streaming URL for a chain.
func (c *Config) RemoveRPC(chainID int64, rawURL string) error {
	for _, m := range []map[int64][]string{c.CustomRPCs, c.CustomWS} {
		if idx := slices.Index(m[chainID], rawURL); idx != -1 {
			m[chainID] = slices.Delete(m[chainID], idx, idx+1)
			return nil
		}
	}
	return fmt.Errorf("endpoint %s not found for chain %d", rawURL, chainID)
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chainID int64) []string {
	return c.CustomRPCs[chainID]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where wallet metadata is persisted.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultChainID:      DefaultChainID,
		PairingPollInterval: Duration(DefaultPairingPollInterval),
		LogLevel:            DefaultLogLevel,
		MetricsAddr:         DefaultMetricsAddr,
		CustomRPCs:          make(map[int64][]string),
		CustomWS:            make(map[int64][]string),
		Timeouts:            Timeouts{}.WithDefaults(),
		configDir:           dir,
	}
}

func addEndpoint(m map[int64][]string, chainID int64, rawURL string) error {
	if slices.Contains(m[chainID], rawURL) {
		return fmt.Errorf("endpoint %s already exists for chain %d", rawURL, chainID)
	}
	m[chainID] = append(m[chainID], rawURL)
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) || u.Host == "" {
		return fmt.Errorf("invalid URL %q: want %s", raw, strings.Join(schemes, "/"))
	}
	return nil
}

// loadJSON decodes path over into. A missing file leaves into untouched.
func loadJSON[T any](path string, into *T) (*T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return into, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, into); err != nil {
		return nil, err
	}
	return into, nil
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
