package launch

import (
	"context"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/amm"
	"github.com/krazyTry/launchpad-go/events"
	"github.com/krazyTry/launchpad-go/fees"
	"github.com/krazyTry/launchpad-go/liquidity"
	"github.com/krazyTry/launchpad-go/shared"
)

// GraduationResult combines the fee waterfall with the deployment the pool
// reported.
type GraduationResult struct {
	LaunchID   solana.PublicKey
	Waterfall  *fees.DeployResult
	Deployment *liquidity.Deployment
}

// Deploy graduates the launch: runs the fee waterfall over the closed
// reserve, funds the pool legs and mints the liquidity position. The owner
// may deploy at any point with a non-empty reserve; everyone else must wait
// until the launch is matured or full. The graduated flag is only set after
// the deployer succeeds, so a settlement failure leaves a clean retry path.
func (e *Engine) Deploy(ctx context.Context, caller, id solana.PublicKey) (*GraduationResult, error) {
	const op = "launch.Deploy"
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
	if l.Graduated {
		return nil, shared.StateErrf(op, "launch %s already graduated", id)
	}
	if l.OpenTime.IsZero() {
		return nil, shared.StateErrf(op, "launch %s not configured", id)
	}
	if l.Hook.IsZero() {
		return nil, shared.StateErrf(op, "hook not set")
	}
	if l.ReserveBalance.Sign() == 0 {
		return nil, shared.StateErrf(op, "no reserve")
	}
	phase := l.phase(now)
	if !caller.Equals(l.Owner) && phase != PhaseMatured && phase != PhaseFull {
		return nil, shared.StateErrf(op, "launch %s is %s, not yet permissionless", id, phase)
	}
	if e.deployer == nil || e.vault == nil {
		return nil, shared.SettlementErrf(op, "no liquidity venue wired")
	}

	tokenGross := new(big.Int).Sub(l.TotalSupply, l.TotalSold)
	split, err := l.FeeConfig.Split(l.ReserveBalance, tokenGross)
	if err != nil {
		return nil, err
	}

	quoteCurrency := l.QuoteMint
	if err := e.vault.Deposit(l.ID, quoteCurrency, split.EthForPool); err != nil {
		return nil, shared.WrapErr(shared.KindSettlement, op, "deposit quote leg", err)
	}
	if err := e.vault.Deposit(l.ID, l.BaseMint, split.TokensForPool); err != nil {
		e.refundDeposit(l.ID, quoteCurrency, split.EthForPool)
		return nil, shared.WrapErr(shared.KindSettlement, op, "deposit base leg", err)
	}

	deployment, err := e.deployer.Deploy(ctx, &liquidity.DeployParams{
		BaseMint:    l.BaseMint,
		QuoteMint:   l.QuoteMint,
		BaseAmount:  split.TokensForPool,
		QuoteAmount: split.EthForPool,
		FeeBps:      l.PoolFeeBps,
		Owner:       l.ID,
		Salt:        l.nextNonce(),
	})
	if err != nil {
		e.refundDeposit(l.ID, quoteCurrency, split.EthForPool)
		e.refundDeposit(l.ID, l.BaseMint, split.TokensForPool)
		return nil, err
	}

	treasuryCut := new(big.Int).Sub(split.GraduationFee, split.CreatorGradCut)
	treasuryCut.Add(treasuryCut, split.PolETH)
	l.TreasuryQuoteFees.Add(l.TreasuryQuoteFees, treasuryCut)
	l.TreasuryTokenFees.Add(l.TreasuryTokenFees, split.PolTokens)
	l.CreatorQuoteFees.Add(l.CreatorQuoteFees, split.CreatorGradCut)

	reserveClosed := new(big.Int).Set(l.ReserveBalance)
	l.ReserveBalance.SetInt64(0)
	l.Graduated = true
	l.PoolID = deployment.PoolID

	e.sweepLeftovers(l, deployment)

	e.metrics.graduationExecuted()
	e.metrics.feeCharged(split.GraduationFee)
	e.publishGraduationFees(l, now, split)
	e.publish(&events.LaunchGraduatedEvent{
		BaseEvent:     events.NewBaseEvent(events.LaunchGraduated, now),
		LaunchID:      id,
		PoolID:        deployment.PoolID,
		Reserve:       reserveClosed,
		EthForPool:    new(big.Int).Set(split.EthForPool),
		TokensForPool: new(big.Int).Set(split.TokensForPool),
	})
	e.publish(&events.LiquidityDeployedEvent{
		BaseEvent:  events.NewBaseEvent(events.LiquidityDeployed, now),
		LaunchID:   id,
		PoolID:     deployment.PoolID,
		PositionID: deployment.PositionID,
		Liquidity:  new(big.Int).Set(deployment.Liquidity),
	})
	e.logger.Info("launch graduated",
		zap.Stringer("launch", id),
		zap.Stringer("pool", deployment.PoolID),
		zap.String("reserve", reserveClosed.String()),
		zap.String("eth_for_pool", split.EthForPool.String()),
		zap.String("tokens_for_pool", split.TokensForPool.String()),
	)

	return &GraduationResult{
		LaunchID:   id,
		Waterfall:  split,
		Deployment: deployment,
	}, nil
}

// refundDeposit undoes a pre-deploy vault deposit so a failed graduation can
// be retried from scratch.
func (e *Engine) refundDeposit(owner solana.PublicKey, currency amm.Currency, amount *big.Int) {
	if err := e.vault.Withdraw(owner, currency, amount); err != nil {
		e.logger.Error("failed to refund graduation deposit",
			zap.Stringer("owner", owner),
			zap.Stringer("currency", currency),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
}

// sweepLeftovers moves rounding dust the pool did not consume to the
// configured receiver.
func (e *Engine) sweepLeftovers(l *Launch, deployment *liquidity.Deployment) {
	if e.leftoverReceiver.IsZero() {
		return
	}
	sweep := func(currency amm.Currency, amount *big.Int) {
		if amount == nil || amount.Sign() <= 0 {
			return
		}
		if err := e.vault.Withdraw(l.ID, currency, amount); err != nil {
			e.logger.Warn("leftover sweep failed",
				zap.Stringer("launch", l.ID),
				zap.Stringer("currency", currency),
				zap.Error(err))
			return
		}
		if err := e.vault.Deposit(e.leftoverReceiver, currency, amount); err != nil {
			e.logger.Warn("leftover sweep failed",
				zap.Stringer("launch", l.ID),
				zap.Stringer("currency", currency),
				zap.Error(err))
		}
	}
	sweep(l.QuoteMint, deployment.QuoteLeftover)
	sweep(l.BaseMint, deployment.BaseLeftover)
}

func (e *Engine) publishGraduationFees(l *Launch, now time.Time, split *fees.DeployResult) {
	for _, f := range []struct {
		kind   shared.FeeKind
		amount *big.Int
	}{
		{shared.FeeKindGraduation, split.GraduationFee},
		{shared.FeeKindCreator, split.CreatorGradCut},
		{shared.FeeKindPol, split.PolETH},
	} {
		if f.amount.Sign() == 0 {
			continue
		}
		e.publish(&events.FeePaidEvent{
			BaseEvent: events.NewBaseEvent(events.FeePaid, now),
			LaunchID:  l.ID,
			Payer:     l.ID,
			Kind:      f.kind,
			Amount:    new(big.Int).Set(f.amount),
		})
	}
}
