package math

import (
	"math/big"

	"github.com/krazyTry/launchpad-go/shared"
)

// MulDiv computes x*y/denominator with the division last, so the full product
// precision survives. RoundingUp rounds a non-zero remainder up.
func MulDiv(x, y, denominator *big.Int, rounding shared.Rounding) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, ErrDivZero
	}
	quo, rem := new(big.Int).QuoRem(new(big.Int).Mul(x, y), denominator, new(big.Int))
	if rounding == shared.RoundingUp && rem.Sign() != 0 {
		quo.Add(quo, one)
	}
	return quo, nil
}

// Sqrt returns the integer square root of value, rounding down. Non-positive
// input yields zero.
func Sqrt(value *big.Int) *big.Int {
	if value.Sign() <= 0 {
		return new(big.Int)
	}
	// Newton's method from a power-of-two guess at or above the root.
	x := new(big.Int).Lsh(one, uint(value.BitLen()+1)/2)
	for {
		y := new(big.Int).Div(value, x)
		y.Add(y, x)
		y.Rsh(y, 1)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}
