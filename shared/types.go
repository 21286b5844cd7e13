package shared

import (
	"math/big"
)

const (
	// Resolution is the bit width of the Q64 sqrt-price fixed point.
	Resolution = 64

	MaxBasisPoint = 10_000

	// Fee caps enforced on every FeeConfig.
	MaxGraduationFeeBps = 500
	MaxPolBps           = 300
	MaxBondingFeeBps    = 2_000

	// WadDecimals is the fixed-point scale of all quote and token amounts.
	WadDecimals = 18

	MaxMetadataNameLen   = 32
	MaxMetadataSymbolLen = 10
	MaxMetadataURILen    = 200

	DefaultToleranceBps = 100

	// DefaultPoolFeeBps is the trade fee tier of graduation pools.
	DefaultPoolFeeBps = 30
)

type TradeDirection uint8

const (
	TradeDirectionBuy  TradeDirection = 0
	TradeDirectionSell TradeDirection = 1
)

func (d TradeDirection) String() string {
	switch d {
	case TradeDirectionBuy:
		return "buy"
	case TradeDirectionSell:
		return "sell"
	}
	return "unknown"
}

type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

type FeeKind uint8

const (
	FeeKindBonding    FeeKind = 0
	FeeKindGraduation FeeKind = 1
	FeeKindCreator    FeeKind = 2
	FeeKindPol        FeeKind = 3
)

func (k FeeKind) String() string {
	switch k {
	case FeeKindBonding:
		return "bonding"
	case FeeKindGraduation:
		return "graduation"
	case FeeKindCreator:
		return "creator"
	case FeeKindPol:
		return "pol"
	}
	return "unknown"
}

var (
	Wad    = bigIntFromString("1000000000000000000")
	OneQ64 = new(big.Int).Lsh(big.NewInt(1), Resolution)

	U64Max  = new(big.Int).SetUint64(^uint64(0))
	U128Max = bigIntFromString("340282366920938463463374607431768211455")
	U256Max = bigIntFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")

	// Q64 sqrt-price bounds the liquidity venue can represent.
	MinSqrtPrice = bigIntFromString("4295048016")
	MaxSqrtPrice = bigIntFromString("79226673521066979257578248091")
)

func bigIntFromString(v string) *big.Int {
	out, ok := new(big.Int).SetString(v, 10)
	if !ok {
		panic("invalid big integer literal")
	}
	return out
}
