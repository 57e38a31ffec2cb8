package chain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds all metadata for a single supported network.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`     // HTTP JSON-RPC, used by wallets and the pairing table
	WSNodes        []string `json:"ws_nodes"` // streaming endpoints, used by the read client
	Explorer       string   `json:"explorer"`
	Testnet        bool     `json:"testnet"`
}

// RPC returns the preferred HTTP endpoint, or "" when none is configured.
func (c *Chain) RPC() string {
	if len(c.RPCs) == 0 {
		return ""
	}
	return c.RPCs[0]
}

// WS returns the preferred streaming endpoint, or "" when none is configured.
func (c *Chain) WS() string {
	if len(c.WSNodes) == 0 {
		return ""
	}
	return c.WSNodes[0]
}

// Registry is the supported-network allow-list.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the registry of every network the platform is deployed on.
func NewRegistry() *Registry {
	return NewRegistryFrom(allChains())
}

// NewRegistryFrom builds a registry over an explicit chain list.
func NewRegistryFrom(chains []Chain) *Registry {
	r := &Registry{
		chains: slices.Clone(chains),
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "rsk-testnet").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// IsSupported reports whether id is a member of the allow-list.
func (r *Registry) IsSupported(id int64) bool {
	_, ok := r.byID[id]
	return ok
}

// RPCTable maps every chain ID to its preferred HTTP endpoint. Pairing wallets
// pick their transport from this table.
func (r *Registry) RPCTable() map[int64]string {
	out := make(map[int64]string, len(r.chains))
	for _, c := range r.chains {
		if u := c.RPC(); u != "" {
			out[c.ChainID] = u
		}
	}
	return out
}

// ChainIDs returns the supported chain IDs in ascending order.
func (r *Registry) ChainIDs() []int64 {
	return slices.Sorted(maps.Keys(r.byID))
}

// WithOverrides returns a copy of the registry where user-configured endpoints
// take precedence over the built-in ones. Overrides for chains outside the
// allow-list are ignored: configuration cannot widen the supported set.
func (r *Registry) WithOverrides(rpcs, ws map[int64][]string) *Registry {
	chains := make([]Chain, len(r.chains))
	for i, c := range r.chains {
		if custom := rpcs[c.ChainID]; len(custom) > 0 {
			c.RPCs = append(slices.Clone(custom), c.RPCs...)
		}
		if custom := ws[c.ChainID]; len(custom) > 0 {
			c.WSNodes = append(slices.Clone(custom), c.WSNodes...)
		}
		chains[i] = c
	}
	return NewRegistryFrom(chains)
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "rsk", DisplayName: "RSK Mainnet", ChainID: 30,
			NativeCurrency: "RBTC",
			RPCs:           []string{"https://mainnet.sovryn.app/rpc", "https://public-node.rsk.co"},
			WSNodes:        []string{"wss://mainnet.sovryn.app/ws"},
			Explorer:       "https://explorer.rsk.co",
		},
		{
			Name: "rsk-testnet", DisplayName: "RSK Testnet", ChainID: 31,
			NativeCurrency: "tRBTC",
			RPCs:           []string{"https://testnet.sovryn.app/rpc", "https://public-node.testnet.rsk.co"},
			WSNodes:        []string{"wss://testnet.sovryn.app/ws"},
			Explorer:       "https://explorer.testnet.rsk.co",
			Testnet:        true,
		},
		{
			Name: "rsk-regtest", DisplayName: "RSK Regtest", ChainID: 33,
			NativeCurrency: "RBTC",
			RPCs:           []string{"http://127.0.0.1:4444"},
			WSNodes:        []string{"ws://127.0.0.1:4445/websocket"},
			Testnet:        true,
		},
	}
}
