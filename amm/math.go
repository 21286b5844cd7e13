package amm

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"

	curvemath "github.com/krazyTry/launchpad-go/bonding_curve/math"
	"github.com/krazyTry/launchpad-go/shared"
)

// LiquidityFromQuote L = Δquote << 64 / (√P - √P_min)
func LiquidityFromQuote(quoteAmount, minSqrtPrice, sqrtPrice *big.Int) (*big.Int, error) {
	denominator := new(big.Int).Sub(sqrtPrice, minSqrtPrice)
	if denominator.Sign() <= 0 {
		return nil, errors.New("sqrt price below range lower bound")
	}
	product := new(big.Int).Lsh(quoteAmount, 64)
	return product.Div(product, denominator), nil
}

// LiquidityFromBase L = Δbase * √P * √P_max / ((√P_max - √P) << 64)
func LiquidityFromBase(baseAmount, sqrtPrice, maxSqrtPrice *big.Int) (*big.Int, error) {
	denominator := new(big.Int).Sub(maxSqrtPrice, sqrtPrice)
	if denominator.Sign() <= 0 {
		return nil, errors.New("sqrt price above range upper bound")
	}
	denominator.Lsh(denominator, 64)
	product := new(big.Int).Mul(baseAmount, sqrtPrice)
	product.Mul(product, maxSqrtPrice)
	return product.Div(product, denominator), nil
}

// BaseAmountForLiquidity Δbase = L * (√P_max - √P) << 64 / (√P * √P_max)
func BaseAmountForLiquidity(liquidity, sqrtPrice, maxSqrtPrice *big.Int, rounding shared.Rounding) (*big.Int, error) {
	deltaPrice := new(big.Int).Sub(maxSqrtPrice, sqrtPrice)
	if deltaPrice.Sign() < 0 {
		return nil, errors.New("sqrt price above range upper bound")
	}
	denominator := new(big.Int).Mul(sqrtPrice, maxSqrtPrice)
	return curvemath.MulDiv(liquidity, deltaPrice.Lsh(deltaPrice, 64), denominator, rounding)
}

// QuoteAmountForLiquidity Δquote = L * (√P - √P_min) / 2^64
func QuoteAmountForLiquidity(liquidity, minSqrtPrice, sqrtPrice *big.Int, rounding shared.Rounding) (*big.Int, error) {
	deltaPrice := new(big.Int).Sub(sqrtPrice, minSqrtPrice)
	if deltaPrice.Sign() < 0 {
		return nil, errors.New("sqrt price below range lower bound")
	}
	denominator := new(big.Int).Lsh(big.NewInt(1), 64)
	return curvemath.MulDiv(liquidity, deltaPrice, denominator, rounding)
}

// SqrtPriceFromAmounts √P = sqrt(quote << 128 / base), clamped to the
// supported price range. This seeds the pool at the ratio the deposit
// implies.
func SqrtPriceFromAmounts(quoteAmount, baseAmount *big.Int) (*big.Int, error) {
	if baseAmount == nil || baseAmount.Sign() <= 0 {
		return nil, errors.New("base amount must be greater than 0")
	}
	if quoteAmount == nil || quoteAmount.Sign() <= 0 {
		return nil, errors.New("quote amount must be greater than 0")
	}
	ratio := new(big.Int).Lsh(quoteAmount, 128)
	ratio.Div(ratio, baseAmount)
	return ClampSqrtPrice(curvemath.Sqrt(ratio)), nil
}

// ClampSqrtPrice bounds a computed price into [MinSqrtPrice, MaxSqrtPrice].
func ClampSqrtPrice(sqrtPrice *big.Int) *big.Int {
	if sqrtPrice.Cmp(shared.MinSqrtPrice) < 0 {
		return new(big.Int).Set(shared.MinSqrtPrice)
	}
	if sqrtPrice.Cmp(shared.MaxSqrtPrice) > 0 {
		return new(big.Int).Set(shared.MaxSqrtPrice)
	}
	return sqrtPrice
}

// PriceFromSqrtPrice (√P)^2 / 2^128, as a display decimal in quote units
// per base unit.
func PriceFromSqrtPrice(sqrtPrice *big.Int) decimal.Decimal {
	price := decimal.NewFromBigInt(sqrtPrice, 0)
	price = price.Mul(price)
	return price.Div(decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128), 0))
}
