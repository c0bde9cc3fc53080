// Package units converts raw integer token amounts to decimal strings.
package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Format scales a raw amount down by decimals, e.g. 1500000 with 6 decimals is "1.5".
// A nil amount formats as "0".
func Format(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
