package launch

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/events"
	"github.com/krazyTry/launchpad-go/shared"
)

// TradeReceipt reports what a buy or sell actually moved.
type TradeReceipt struct {
	LaunchID  solana.PublicKey
	Direction shared.TradeDirection
	Amount    *big.Int // token units traded
	Value     *big.Int // curve cost (buy) or refund (sell), pre-fee
	Fee       *big.Int
	Change    *big.Int // excess payment returned, buys only
	Payout    *big.Int // refund minus fee, sells only
	TotalSold *big.Int
	Reserve   *big.Int
	Phase     Phase
}

// Buy purchases amount token units against the curve. payment caps the
// spend: anything above curve cost plus fee is returned as change, anything
// below fails as a slippage error.
func (e *Engine) Buy(ctx context.Context, buyer, id solana.PublicKey, amount, payment *big.Int) (*TradeReceipt, error) {
	const op = "launch.Buy"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	if phase := l.phase(now); phase != PhaseActive {
		return nil, shared.StateErrf(op, "launch %s is %s, want active", id, phase)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "amount must be positive")
	}
	if payment == nil || payment.Sign() < 0 {
		return nil, shared.ConfigErrf(op, "payment must not be negative")
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
	if payment.Cmp(total) < 0 {
		return nil, shared.SlippageErrf(op, "payment %s below cost %s", payment.String(), total.String())
	}

	l.ReserveBalance.Add(l.ReserveBalance, cost)
	l.TotalSold.Set(newSold)
	l.TreasuryQuoteFees.Add(l.TreasuryQuoteFees, fee)

	receipt := &TradeReceipt{
		LaunchID:  id,
		Direction: shared.TradeDirectionBuy,
		Amount:    new(big.Int).Set(amount),
		Value:     cost,
		Fee:       fee,
		Change:    new(big.Int).Sub(payment, total),
		TotalSold: new(big.Int).Set(l.TotalSold),
		Reserve:   new(big.Int).Set(l.ReserveBalance),
		Phase:     l.phase(now),
	}

	e.metrics.buyExecuted()
	e.metrics.feeCharged(fee)
	if fee.Sign() > 0 {
		e.publish(&events.FeePaidEvent{
			BaseEvent: events.NewBaseEvent(events.FeePaid, now),
			LaunchID:  id,
			Payer:     buyer,
			Kind:      shared.FeeKindBonding,
			Amount:    new(big.Int).Set(fee),
		})
	}
	e.publish(&events.TradeExecutedEvent{
		BaseEvent: events.NewBaseEvent(events.TradeExecuted, now),
		LaunchID:  id,
		Trader:    buyer,
		Direction: shared.TradeDirectionBuy,
		Amount:    new(big.Int).Set(amount),
		Value:     new(big.Int).Set(cost),
		TotalSold: new(big.Int).Set(l.TotalSold),
	})
	e.logger.Debug("buy executed",
		zap.Stringer("launch", id),
		zap.Stringer("buyer", buyer),
		zap.String("amount", amount.String()),
		zap.String("cost", cost.String()),
		zap.String("fee", fee.String()),
	)
	return receipt, nil
}

// Sell returns amount token units to the curve for the exact integral
// refund. The flat bonding fee comes out of the payout while the reserve
// releases the full refund, so reserve solvency is preserved to the wei.
func (e *Engine) Sell(ctx context.Context, seller, id solana.PublicKey, amount, minPayout *big.Int) (*TradeReceipt, error) {
	const op = "launch.Sell"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	if phase := l.phase(now); !sellable(phase) {
		return nil, shared.StateErrf(op, "launch %s is %s, want active, matured or full", id, phase)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "amount must be positive")
	}

	refund, err := bonding_curve.Refund(l.Params, l.TotalSold, amount)
	if err != nil {
		return nil, err
	}
	if l.ReserveBalance.Cmp(refund) < 0 {
		return nil, shared.ArithmeticErrf(op, "reserve %s below refund %s", l.ReserveBalance.String(), refund.String())
	}
	fee, err := l.FeeConfig.BondingFee(refund)
	if err != nil {
		return nil, err
	}
	payout := new(big.Int).Sub(refund, fee)
	if minPayout != nil && payout.Cmp(minPayout) < 0 {
		return nil, shared.SlippageErrf(op, "payout %s below minimum %s", payout.String(), minPayout.String())
	}

	l.ReserveBalance.Sub(l.ReserveBalance, refund)
	l.TotalSold.Sub(l.TotalSold, amount)
	l.TreasuryQuoteFees.Add(l.TreasuryQuoteFees, fee)

	receipt := &TradeReceipt{
		LaunchID:  id,
		Direction: shared.TradeDirectionSell,
		Amount:    new(big.Int).Set(amount),
		Value:     refund,
		Fee:       fee,
		Payout:    payout,
		TotalSold: new(big.Int).Set(l.TotalSold),
		Reserve:   new(big.Int).Set(l.ReserveBalance),
		Phase:     l.phase(now),
	}

	e.metrics.sellExecuted()
	e.metrics.feeCharged(fee)
	if fee.Sign() > 0 {
		e.publish(&events.FeePaidEvent{
			BaseEvent: events.NewBaseEvent(events.FeePaid, now),
			LaunchID:  id,
			Payer:     seller,
			Kind:      shared.FeeKindBonding,
			Amount:    new(big.Int).Set(fee),
		})
	}
	e.publish(&events.TradeExecutedEvent{
		BaseEvent: events.NewBaseEvent(events.TradeExecuted, now),
		LaunchID:  id,
		Trader:    seller,
		Direction: shared.TradeDirectionSell,
		Amount:    new(big.Int).Set(amount),
		Value:     new(big.Int).Set(refund),
		TotalSold: new(big.Int).Set(l.TotalSold),
	})
	e.logger.Debug("sell executed",
		zap.Stringer("launch", id),
		zap.Stringer("seller", seller),
		zap.String("amount", amount.String()),
		zap.String("refund", refund.String()),
		zap.String("fee", fee.String()),
	)
	return receipt, nil
}
