package cmd

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// rbtcDecimals is the precision of the native coin.
const rbtcDecimals = 18

// toWei converts a whole-unit RBTC amount such as "0.0015" into wei.
// Negative amounts and amounts finer than one wei are rejected.
func toWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", amount)
	}
	wei := d.Shift(rbtcDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, rbtcDecimals)
	}
	return wei.BigInt(), nil
}

// fromWei renders wei as a whole-unit RBTC amount.
func fromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -rbtcDecimals).String()
}
