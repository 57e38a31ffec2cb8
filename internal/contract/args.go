package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseArgs converts command-line strings into the Go values the ABI encoder
// expects for method's inputs.
func ParseArgs(method abi.Method, args []string) ([]interface{}, error) {
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", method.Sig, len(method.Inputs), len(args))
	}
	out := make([]interface{}, len(args))
	for i, in := range method.Inputs {
		v, err := parseParam(in.Type, args[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("encoding param %s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseParam(typ abi.Type, val string) (interface{}, error) {
	val = strings.TrimSpace(val)

	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(val) {
			return nil, fmt.Errorf("invalid address: %s", val)
		}
		return common.HexToAddress(val), nil

	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(val, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer: %s", val)
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for %s: %s", typ, val)
		}
		if typ.Size > 64 {
			return n, nil
		}
		rv := reflect.New(typ.GetType()).Elem()
		if typ.T == abi.UintTy {
			if !n.IsUint64() || rv.OverflowUint(n.Uint64()) {
				return nil, fmt.Errorf("%s overflows %s", val, typ)
			}
			rv.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || rv.OverflowInt(n.Int64()) {
				return nil, fmt.Errorf("%s overflows %s", val, typ)
			}
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid bool: %s", val)
		}
		return b, nil

	case abi.StringTy:
		return val, nil

	case abi.BytesTy:
		b, err := hexutil.Decode(val)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes: %w", err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", typ, err)
		}
		if len(b) > typ.Size {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(b), typ)
		}
		rv := reflect.New(typ.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil
	}

	return nil, fmt.Errorf("unsupported parameter type %s", typ)
}

// FormatValue renders a decoded ABI value for display.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case [32]byte:
		return hexutil.Encode(x[:])
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
