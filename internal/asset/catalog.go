// Package asset is the catalog of lendable assets: for every asset, the token
// contract and the lending pool contract it is deployed as on each network.
package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ErrAssetNotFound is returned when an asset is not in the catalog.
var ErrAssetNotFound = errors.New("asset not found")

// Asset is the ticker that identifies a catalog entry.
type Asset string

const (
	BTC Asset = "BTC"
	USD Asset = "USD"
)

// ABI identifiers of the contract kinds every asset is deployed as. They are
// resolved against the built-in ABI set of the contract package.
const (
	TokenABI   = "testtoken"
	LendingABI = "loantoken"
)

// Deployment holds the contract addresses of an asset on one network.
type Deployment struct {
	Token   common.Address
	Lending common.Address
}

// Limits bounds a single lend/borrow amount in whole units.
type Limits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Details describes one asset.
type Details struct {
	Asset       Asset
	Symbol      string
	DisplayName string
	Decimals    int32
	Limits      Limits
	Deployments map[int64]Deployment
}

// TokenContractName is the logical contract name of the asset's token.
func (d *Details) TokenContractName() string {
	return TokenContractName(d.Asset)
}

// LendingContractName is the logical contract name of the asset's lending pool.
func (d *Details) LendingContractName() string {
	return LendingContractName(d.Asset)
}

// Deployment returns where the asset lives on chainID.
func (d *Details) Deployment(chainID int64) (Deployment, bool) {
	dep, ok := d.Deployments[chainID]
	return dep, ok
}

// ToWei converts a whole-unit amount into the token's smallest unit.
func (d *Details) ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(d.Decimals).BigInt()
}

// FromWei converts a smallest-unit amount into whole units.
func (d *Details) FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -d.Decimals)
}

// WithinLimits reports whether amount is an acceptable single operation size.
func (d *Details) WithinLimits(amount decimal.Decimal) bool {
	if !d.Limits.Min.IsZero() && amount.LessThan(d.Limits.Min) {
		return false
	}
	if !d.Limits.Max.IsZero() && amount.GreaterThan(d.Limits.Max) {
		return false
	}
	return true
}

// TokenContractName returns "<ASSET>-token".
func TokenContractName(a Asset) string {
	return string(a) + "-token"
}

// LendingContractName returns "<ASSET>-lending".
func LendingContractName(a Asset) string {
	return string(a) + "-lending"
}

// Parse resolves a ticker case-insensitively.
func Parse(s string) (Asset, error) {
	a := Asset(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := index[a]; !ok {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, s)
	}
	return a, nil
}

// Catalog is an ordered, read-only set of asset details.
type Catalog struct {
	items  []*Details
	byName map[Asset]*Details
}

// NewCatalog returns the catalog of every asset the platform lists.
func NewCatalog() *Catalog {
	return NewCatalogFrom(allAssets())
}

// NewCatalogFrom builds a catalog over an explicit list.
func NewCatalogFrom(items []Details) *Catalog {
	c := &Catalog{byName: make(map[Asset]*Details, len(items))}
	for i := range items {
		d := items[i]
		c.items = append(c.items, &d)
		c.byName[d.Asset] = &d
	}
	return c
}

// Get returns the details of a.
func (c *Catalog) Get(a Asset) (*Details, error) {
	d, ok := c.byName[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, a)
	}
	return d, nil
}

// List returns every asset in catalog order.
func (c *Catalog) List() []*Details {
	return c.items
}

// Assets returns the tickers in catalog order.
func (c *Catalog) Assets() []Asset {
	out := make([]Asset, len(c.items))
	for i, d := range c.items {
		out[i] = d.Asset
	}
	return out
}

// DeployedOn returns the assets that have contracts on chainID.
func (c *Catalog) DeployedOn(chainID int64) []*Details {
	var out []*Details
	for _, d := range c.items {
		if _, ok := d.Deployments[chainID]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ByLendingAddress finds the asset whose lending pool is at address on any
// network. The comparison is case-insensitive.
func (c *Catalog) ByLendingAddress(address string) (*Details, error) {
	return c.find(address, func(dep Deployment) common.Address { return dep.Lending })
}

// ByTokenAddress finds the asset whose token is at address on any network.
func (c *Catalog) ByTokenAddress(address string) (*Details, error) {
	return c.find(address, func(dep Deployment) common.Address { return dep.Token })
}

func (c *Catalog) find(address string, pick func(Deployment) common.Address) (*Details, error) {
	for _, d := range c.items {
		for _, dep := range d.Deployments {
			if strings.EqualFold(pick(dep).Hex(), address) {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no contract at %s", ErrAssetNotFound, address)
}

// --- asset data ---

var index = func() map[Asset]bool {
	m := make(map[Asset]bool)
	for _, d := range allAssets() {
		m[d.Asset] = true
	}
	return m
}()

func allAssets() []Details {
	return []Details{
		{
			Asset: BTC, Symbol: "BTC", DisplayName: "Bitcoin", Decimals: 18,
			Limits: Limits{Min: decimal.RequireFromString("0.01"), Max: decimal.NewFromInt(1)},
			Deployments: map[int64]Deployment{
				31: {
					Token:   common.HexToAddress("0xE53d858A78D884659BF6955Ea43CBA67c0Ae293F"),
					Lending: common.HexToAddress("0x08118a219a4e34E06176cD0861fcDDB865771111"),
				},
			},
		},
		{
			Asset: USD, Symbol: "USD", DisplayName: "USD", Decimals: 18,
			Limits: Limits{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(50000)},
			Deployments: map[int64]Deployment{
				31: {
					Token:   common.HexToAddress("0xE631653c4Dc6Fb98192b950BA0b598f90FA18B3E"),
					Lending: common.HexToAddress("0xD1A979EDE2c17FCD31800Bed859e5EC3DA178Cb9"),
				},
			},
		},
	}
}
