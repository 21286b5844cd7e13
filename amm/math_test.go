package amm

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/launchpad-go/shared"
)

func TestSqrtPriceFromAmounts(t *testing.T) {
	// 9 quote against 4 base is price 2.25, sqrt price 1.5 in Q64.
	sqrtPrice, err := SqrtPriceFromAmounts(big.NewInt(9), big.NewInt(4))
	if err != nil {
		t.Fatal("SqrtPriceFromAmounts() fail", err)
	}
	want, _ := new(big.Int).SetString("27670116110564327424", 10)
	if sqrtPrice.Cmp(want) != 0 {
		t.Fatalf("SqrtPriceFromAmounts() = %s, want %s", sqrtPrice, want)
	}

	price := PriceFromSqrtPrice(sqrtPrice)
	if !price.Equal(decimal.RequireFromString("2.25")) {
		t.Fatalf("PriceFromSqrtPrice() = %s, want 2.25", price)
	}
}

func TestSqrtPriceClamped(t *testing.T) {
	low, err := SqrtPriceFromAmounts(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 100))
	if err != nil {
		t.Fatal("SqrtPriceFromAmounts() fail", err)
	}
	if low.Cmp(shared.MinSqrtPrice) != 0 {
		t.Fatalf("low ratio = %s, want clamped to %s", low, shared.MinSqrtPrice)
	}

	high, err := SqrtPriceFromAmounts(new(big.Int).Lsh(big.NewInt(1), 80), big.NewInt(1))
	if err != nil {
		t.Fatal("SqrtPriceFromAmounts() fail", err)
	}
	if high.Cmp(shared.MaxSqrtPrice) != 0 {
		t.Fatalf("high ratio = %s, want clamped to %s", high, shared.MaxSqrtPrice)
	}
}

func TestSqrtPriceFromAmountsRejectsZero(t *testing.T) {
	if _, err := SqrtPriceFromAmounts(big.NewInt(0), big.NewInt(1)); err == nil {
		t.Fatal("SqrtPriceFromAmounts() should reject zero quote")
	}
	if _, err := SqrtPriceFromAmounts(big.NewInt(1), big.NewInt(0)); err == nil {
		t.Fatal("SqrtPriceFromAmounts() should reject zero base")
	}
}

// Rounding the amounts up must always buy at least the requested liquidity
// back, never less.
func TestLiquidityAmountRoundTrip(t *testing.T) {
	sqrtPrice := new(big.Int).Lsh(big.NewInt(1), 64) // price 1.0
	liquidity, _ := new(big.Int).SetString("1000000000000000000000000", 10)

	amountX, err := BaseAmountForLiquidity(liquidity, sqrtPrice, shared.MaxSqrtPrice, shared.RoundingUp)
	if err != nil {
		t.Fatal("BaseAmountForLiquidity() fail", err)
	}
	amountY, err := QuoteAmountForLiquidity(liquidity, shared.MinSqrtPrice, sqrtPrice, shared.RoundingUp)
	if err != nil {
		t.Fatal("QuoteAmountForLiquidity() fail", err)
	}
	if amountX.Sign() <= 0 || amountY.Sign() <= 0 {
		t.Fatalf("amounts must be positive, got x=%s y=%s", amountX, amountY)
	}

	fromBase, err := LiquidityFromBase(amountX, sqrtPrice, shared.MaxSqrtPrice)
	if err != nil {
		t.Fatal("LiquidityFromBase() fail", err)
	}
	if fromBase.Cmp(liquidity) < 0 {
		t.Fatalf("LiquidityFromBase() = %s, want >= %s", fromBase, liquidity)
	}

	fromQuote, err := LiquidityFromQuote(amountY, shared.MinSqrtPrice, sqrtPrice)
	if err != nil {
		t.Fatal("LiquidityFromQuote() fail", err)
	}
	if fromQuote.Cmp(liquidity) < 0 {
		t.Fatalf("LiquidityFromQuote() = %s, want >= %s", fromQuote, liquidity)
	}
}

func TestLiquidityOutOfRange(t *testing.T) {
	if _, err := LiquidityFromQuote(big.NewInt(1), shared.MinSqrtPrice, shared.MinSqrtPrice); err == nil {
		t.Fatal("LiquidityFromQuote() should reject a price at the lower bound")
	}
	if _, err := LiquidityFromBase(big.NewInt(1), shared.MaxSqrtPrice, shared.MaxSqrtPrice); err == nil {
		t.Fatal("LiquidityFromBase() should reject a price at the upper bound")
	}
}
