package contract

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a contract interface whose ABI is embedded in the
// binary. Each ABI registers itself via init() in its own <name>_abi.go file.
type BuiltinKind struct {
	ID          string // machine key, e.g. "loantoken"
	Name        string // human label
	Description string
	ABI         abi.ABI
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// mustParseABI parses an embedded ABI definition. Embedded ABIs are fixed at
// build time, so a parse failure is a programming error.
func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("contract: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
