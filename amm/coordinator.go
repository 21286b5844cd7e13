// Package amm is the in-process liquidity venue launches graduate into: a
// singleton pool manager with flash accounting. Value moves through a
// deposited-balance ledger; inside a lock every transfer is tracked as a per
// currency delta and the lock only commits when all deltas net to zero.
package amm

import (
	"bytes"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/shared"
)

// ProgramID namespaces every derived pool, position and launch address.
var ProgramID = solana.MustPublicKeyFromBase58("LaunchPad1111111111111111111111111111111111")

// Currency identifies a fungible asset in the manager's ledger. The zero key
// is the native quote currency.
type Currency = solana.PublicKey

// Native is the quote-side currency of every launch pool.
var Native = Currency{}

var (
	ErrLocked              = errors.New("amm: manager already locked")
	ErrNotLocked           = errors.New("amm: operation requires an active lock")
	ErrNonZeroDelta        = errors.New("amm: unsettled currency delta")
	ErrPoolExists          = errors.New("amm: pool already initialized")
	ErrPoolNotFound        = errors.New("amm: pool not initialized")
	ErrCurrencyNotSorted   = errors.New("amm: pool currencies not sorted")
	ErrInvalidSqrtPrice    = errors.New("amm: sqrt price out of bounds")
	ErrInvalidFee          = errors.New("amm: fee exceeds maximum")
	ErrZeroLiquidity       = errors.New("amm: zero liquidity")
	ErrInsufficientBalance = errors.New("amm: insufficient deposited balance")
	ErrPositionExists      = errors.New("amm: position already exists")
	ErrOverflow            = errors.New("amm: value overflows uint128")
)

// PoolKey identifies a pool by its ordered currency pair and fee tier.
type PoolKey struct {
	TokenX Currency
	TokenY Currency
	FeeBps uint64
}

// NewPoolKey orders the pair so the numerically lower key always occupies
// the X slot. The native currency (zero key) therefore always sorts first.
func NewPoolKey(a, b Currency, feeBps uint64) PoolKey {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return PoolKey{TokenX: a, TokenY: b, FeeBps: feeBps}
}

// Validate rejects unsorted or degenerate pairs.
func (k PoolKey) Validate() error {
	cmp := bytes.Compare(k.TokenX.Bytes(), k.TokenY.Bytes())
	if cmp >= 0 {
		return ErrCurrencyNotSorted
	}
	if k.FeeBps >= shared.MaxBasisPoint {
		return ErrInvalidFee
	}
	return nil
}

// ID returns the derived pool address for this key.
func (k PoolKey) ID() solana.PublicKey {
	return DerivePoolAddress(k)
}
