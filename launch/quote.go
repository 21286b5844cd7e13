package launch

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/shared"
)

// Quote previews a trade without executing it.
type Quote struct {
	LaunchID  solana.PublicKey
	Direction shared.TradeDirection
	Amount    *big.Int
	Value     *big.Int // curve cost (buy) or refund (sell)
	Fee       *big.Int
	Total     *big.Int // cost plus fee (buy) or refund minus fee (sell)

	// SuggestedPayment pads Total by the slippage factor on buys;
	// MinPayout shaves it on sells.
	SuggestedPayment *big.Int
	MinPayout        *big.Int

	// SpotPriceAfter is the curve price once the trade settles, in quote
	// units per whole token.
	SpotPriceAfter decimal.Decimal
}

// BuyQuote previews buying amount token units at the current supply.
func (e *Engine) BuyQuote(id solana.PublicKey, amount *big.Int, slippageBps uint64) (*Quote, error) {
	const op = "launch.BuyQuote"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()

	if l.Graduated {
		return nil, shared.StateErrf(op, "launch %s already graduated", id)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "amount must be positive")
	}
	newSold := new(big.Int).Add(l.TotalSold, amount)
	if newSold.Cmp(l.BondingCeiling) > 0 {
		return nil, shared.StateErrf(op, "amount %s exceeds remaining bonding supply %s",
			amount.String(), new(big.Int).Sub(l.BondingCeiling, l.TotalSold).String())
	}

	cost, err := bonding_curve.Cost(l.Params, l.TotalSold, amount)
	if err != nil {
		return nil, err
	}
	fee, err := l.FeeConfig.BondingFee(cost)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(cost, fee)
	spot, err := bonding_curve.Price(l.Params, newSold)
	if err != nil {
		return nil, err
	}

	return &Quote{
		LaunchID:         id,
		Direction:        shared.TradeDirectionBuy,
		Amount:           new(big.Int).Set(amount),
		Value:            cost,
		Fee:              fee,
		Total:            total,
		SuggestedPayment: maxAmountWithSlippage(total, slippageBps),
		SpotPriceAfter:   decimal.NewFromBigInt(spot, -shared.WadDecimals),
	}, nil
}

// SellQuote previews selling amount token units back to the curve.
func (e *Engine) SellQuote(id solana.PublicKey, amount *big.Int, slippageBps uint64) (*Quote, error) {
	const op = "launch.SellQuote"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()

	if l.Graduated {
		return nil, shared.StateErrf(op, "launch %s already graduated", id)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "amount must be positive")
	}

	refund, err := bonding_curve.Refund(l.Params, l.TotalSold, amount)
	if err != nil {
		return nil, err
	}
	fee, err := l.FeeConfig.BondingFee(refund)
	if err != nil {
		return nil, err
	}
	payout := new(big.Int).Sub(refund, fee)
	newSold := new(big.Int).Sub(l.TotalSold, amount)
	spot, err := bonding_curve.Price(l.Params, newSold)
	if err != nil {
		return nil, err
	}

	return &Quote{
		LaunchID:       id,
		Direction:      shared.TradeDirectionSell,
		Amount:         new(big.Int).Set(amount),
		Value:          refund,
		Fee:            fee,
		Total:          payout,
		MinPayout:      minAmountWithSlippage(payout, slippageBps),
		SpotPriceAfter: decimal.NewFromBigInt(spot, -shared.WadDecimals),
	}, nil
}

func minAmountWithSlippage(amount *big.Int, slippageBps uint64) *big.Int {
	if slippageBps == 0 {
		return new(big.Int).Set(amount)
	}
	slippageFactor := decimal.NewFromInt(shared.MaxBasisPoint).Sub(decimal.NewFromInt(int64(slippageBps)))
	denominator := decimal.NewFromInt(shared.MaxBasisPoint)
	return decimal.NewFromBigInt(amount, 0).Mul(slippageFactor).Div(denominator).BigInt()
}

func maxAmountWithSlippage(amount *big.Int, slippageBps uint64) *big.Int {
	if slippageBps == 0 {
		return new(big.Int).Set(amount)
	}
	slippageFactor := decimal.NewFromInt(shared.MaxBasisPoint).Add(decimal.NewFromInt(int64(slippageBps)))
	denominator := decimal.NewFromInt(shared.MaxBasisPoint)
	return decimal.NewFromBigInt(amount, 0).Mul(slippageFactor).Div(denominator).Ceil().BigInt()
}
