// Package u128 bridges math/big arithmetic and the 128-bit little-endian
// integers the pool ledger serializes. Sqrt prices and liquidity are stored
// as binary.Uint128 and computed as *big.Int.
package u128

import (
	"errors"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

// FromBig converts a non-negative big integer that fits in 128 bits.
func FromBig(i *big.Int) (binary.Uint128, error) {
	if i == nil || i.Sign() < 0 {
		return binary.Uint128{}, errors.New("value cannot be negative")
	}
	if i.BitLen() > 128 {
		return binary.Uint128{}, errors.New("value overflows Uint128")
	}
	u := binary.NewUint128LittleEndian()
	u.Lo = i.Uint64()
	u.Hi = new(big.Int).Rsh(i, 64).Uint64()
	return *u, nil
}

// MustFromBig is FromBig for values already range-checked by the caller.
func MustFromBig(i *big.Int) binary.Uint128 {
	u, err := FromBig(i)
	if err != nil {
		panic(err)
	}
	return u
}

// ToBig widens back for arithmetic.
func ToBig(u binary.Uint128) *big.Int {
	i := new(big.Int).SetUint64(u.Hi)
	i.Lsh(i, 64)
	return i.Or(i, new(big.Int).SetUint64(u.Lo))
}
