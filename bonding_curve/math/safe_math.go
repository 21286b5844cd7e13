package math

import (
	"errors"
	"math/big"
)

// Checked big.Int helpers. Results are freshly allocated; operands are never
// modified.

var (
	ErrUnderflow = errors.New("SafeMath: subtraction overflow")
	ErrDivZero   = errors.New("SafeMath: division by zero")
)

var one = big.NewInt(1)

func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a-b, failing instead of going negative.
func Sub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, ErrUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// Div returns a/b rounded down.
func Div(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivZero
	}
	return new(big.Int).Div(a, b), nil
}
