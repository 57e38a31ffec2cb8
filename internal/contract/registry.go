package contract

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Mohsinsiddi/w3link/internal/asset"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrMissingContractInstance is returned when a logical contract name has no
// descriptor or live instance, either because nothing is connected or because
// the active chain has no deployment under that name.
var ErrMissingContractInstance = errors.New("missing contract instance")

// Descriptor binds a logical contract name to its address and interface on
// one network. Descriptors are immutable.
type Descriptor struct {
	Name    string
	Kind    string // built-in ABI ID
	ChainID int64
	Address common.Address
	ABI     abi.ABI
}

// Method looks up a function in the descriptor's ABI.
func (d *Descriptor) Method(name string) (abi.Method, error) {
	m, ok := d.ABI.Methods[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("function %q not found in %s ABI", name, d.Name)
	}
	return m, nil
}

// Pack encodes a call to method with typed arguments.
func (d *Descriptor) Pack(method string, args ...interface{}) ([]byte, error) {
	if _, err := d.Method(method); err != nil {
		return nil, err
	}
	data, err := d.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call %s.%s: %w", d.Name, method, err)
	}
	return data, nil
}

// Unpack decodes the return data of method.
func (d *Descriptor) Unpack(method string, data []byte) ([]interface{}, error) {
	out, err := d.ABI.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s.%s result: %w", d.Name, method, err)
	}
	return out, nil
}

// AppContract is an application-level contract that is not tied to an asset.
type AppContract struct {
	Name      string
	Kind      string
	Addresses map[int64]common.Address
}

// DefaultAppContracts returns the fixed application contract table.
func DefaultAppContracts() []AppContract {
	return []AppContract{
		{
			Name: "sovrynProtocol", Kind: "protocol",
			Addresses: map[int64]common.Address{
				31: common.HexToAddress("0x25380305f223B32FDB844152abD2E82BC5Ad99c3"),
			},
		},
		{
			Name: "priceFeed", Kind: "pricefeeds",
			Addresses: map[int64]common.Address{
				31: common.HexToAddress("0x7f38c422b99075f63C9c919ECD200DF8d2Cf5BD4"),
			},
		},
	}
}

// Registry is the set of contract descriptors available on one network,
// keyed by case-sensitive logical name.
type Registry struct {
	chainID     int64
	descriptors map[string]*Descriptor
	order       []string
}

// Builder produces the registry for a chain. The connection manager calls it
// once per successful connection sequence.
type Builder func(chainID int64) (*Registry, error)

// NewBuilder returns a Builder over an asset catalog and an app contract table.
func NewBuilder(catalog *asset.Catalog, apps []AppContract) Builder {
	return func(chainID int64) (*Registry, error) {
		return Build(chainID, catalog, apps)
	}
}

// Build assembles the registry for chainID: a token and a lending descriptor
// for every asset deployed there, then every app contract deployed there.
func Build(chainID int64, catalog *asset.Catalog, apps []AppContract) (*Registry, error) {
	r := &Registry{chainID: chainID, descriptors: make(map[string]*Descriptor)}

	for _, d := range catalog.DeployedOn(chainID) {
		dep, _ := d.Deployment(chainID)
		if err := r.add(d.TokenContractName(), asset.TokenABI, dep.Token); err != nil {
			return nil, err
		}
		if err := r.add(d.LendingContractName(), asset.LendingABI, dep.Lending); err != nil {
			return nil, err
		}
	}
	for _, app := range apps {
		addr, ok := app.Addresses[chainID]
		if !ok {
			continue
		}
		if err := r.add(app.Name, app.Kind, addr); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(name, kind string, addr common.Address) error {
	b, ok := GetBuiltin(kind)
	if !ok {
		return fmt.Errorf("contract %s: unknown ABI %q", name, kind)
	}
	if _, dup := r.descriptors[name]; dup {
		return fmt.Errorf("contract %s registered twice on chain %d", name, r.chainID)
	}
	r.descriptors[name] = &Descriptor{
		Name:    name,
		Kind:    kind,
		ChainID: r.chainID,
		Address: addr,
		ABI:     b.ABI,
	}
	r.order = append(r.order, name)
	return nil
}

// ChainID returns the network the registry describes.
func (r *Registry) ChainID() int64 { return r.chainID }

// Len returns the number of descriptors.
func (r *Registry) Len() int { return len(r.order) }

// Get returns a descriptor by exact logical name.
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s on chain %d", ErrMissingContractInstance, name, r.chainID)
	}
	return d, nil
}

// Names returns the logical names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[name])
	}
	return out
}
