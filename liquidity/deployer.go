// Package liquidity turns a graduated launch's reserve and unsold inventory
// into a seeded full-range pool position. The two-phase settlement runs
// inside the venue's flash-accounting lock: stage the pool, size the
// liquidity, then pay every net delta before the lock commits.
package liquidity

import (
	"context"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/amm"
	"github.com/krazyTry/launchpad-go/shared"
	"github.com/krazyTry/launchpad-go/u128"
)

// Coordinator is the slice of the liquidity venue the deployer needs.
// *amm.PoolManager satisfies it.
type Coordinator interface {
	Lock(ctx context.Context, locker solana.PublicKey, fn func(ctx context.Context) error) error
	Initialize(key amm.PoolKey, sqrtPrice bin.Uint128) (solana.PublicKey, error)
	CurrentPrice(pool solana.PublicKey) (bin.Uint128, error)
	AddLiquidity(pool, owner solana.PublicKey, liquidity bin.Uint128, nonce uint64) (*big.Int, *big.Int, error)
	Delta(currency amm.Currency) *big.Int
	Settle(currency amm.Currency, amount *big.Int) error
	Take(currency amm.Currency, amount *big.Int) error
}

// DeployParams describes one graduation deposit. Owner is both the lock
// session identity and the position owner; its deposited balances fund the
// settlement. Salt makes the position address unique per deploy attempt.
type DeployParams struct {
	BaseMint    solana.PublicKey
	QuoteMint   solana.PublicKey
	BaseAmount  *big.Int
	QuoteAmount *big.Int
	FeeBps      uint64
	Owner       solana.PublicKey
	Salt        uint64
}

// Deployment reports what the pool actually consumed.
type Deployment struct {
	PoolID        solana.PublicKey
	PositionID    solana.PublicKey
	SqrtPrice     *big.Int
	Liquidity     *big.Int
	BaseUsed      *big.Int
	QuoteUsed     *big.Int
	BaseLeftover  *big.Int
	QuoteLeftover *big.Int
}

type Deployer struct {
	amm    Coordinator
	logger *zap.Logger
}

func NewDeployer(coordinator Coordinator, logger *zap.Logger) *Deployer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deployer{amm: coordinator, logger: logger}
}

// Deploy initializes the pool at the price the deposit implies and mints the
// largest full-range position both legs can fund. Any coordinator rejection
// fails the whole deploy; nothing is retried.
func (d *Deployer) Deploy(ctx context.Context, params *DeployParams) (*Deployment, error) {
	const op = "liquidity.Deploy"
	if params == nil {
		return nil, shared.SettlementErrf(op, "nil params")
	}
	if params.BaseAmount == nil || params.BaseAmount.Sign() <= 0 {
		return nil, shared.SettlementErrf(op, "base amount must be positive")
	}
	if params.QuoteAmount == nil || params.QuoteAmount.Sign() <= 0 {
		return nil, shared.SettlementErrf(op, "quote amount must be positive")
	}
	if params.BaseMint.Equals(params.QuoteMint) {
		return nil, shared.SettlementErrf(op, "base and quote mint are the same")
	}

	key := amm.NewPoolKey(params.BaseMint, params.QuoteMint, params.FeeBps)

	// The pool prices TokenY in TokenX, so the slot the base mint landed in
	// decides which amount is the numerator.
	depositX, depositY := params.QuoteAmount, params.BaseAmount
	if key.TokenX.Equals(params.BaseMint) {
		depositX, depositY = params.BaseAmount, params.QuoteAmount
	}
	sqrtPrice, err := amm.SqrtPriceFromAmounts(depositY, depositX)
	if err != nil {
		return nil, shared.WrapErr(shared.KindSettlement, op, "entry price", err)
	}

	out := &Deployment{}
	err = d.amm.Lock(ctx, params.Owner, func(ctx context.Context) error {
		poolID, err := d.amm.Initialize(key, u128.MustFromBig(sqrtPrice))
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "initialize pool", err)
		}

		current, err := d.amm.CurrentPrice(poolID)
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "read pool price", err)
		}
		sqrtCurrent := u128.ToBig(current)

		liquidityX, err := amm.LiquidityFromBase(depositX, sqrtCurrent, shared.MaxSqrtPrice)
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "size x leg", err)
		}
		liquidityY, err := amm.LiquidityFromQuote(depositY, shared.MinSqrtPrice, sqrtCurrent)
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "size y leg", err)
		}
		liquidity := liquidityX
		if liquidityY.Cmp(liquidity) < 0 {
			liquidity = liquidityY
		}
		if liquidity.Sign() <= 0 {
			return shared.SettlementErrf(op, "amounts too small for pool price %s", sqrtCurrent.String())
		}
		liquidityU128, err := u128.FromBig(liquidity)
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "liquidity width", err)
		}

		usedX, usedY, err := d.amm.AddLiquidity(poolID, params.Owner, liquidityU128, params.Salt)
		if err != nil {
			return shared.WrapErr(shared.KindSettlement, op, "add liquidity", err)
		}

		for _, currency := range []amm.Currency{key.TokenX, key.TokenY} {
			delta := d.amm.Delta(currency)
			switch {
			case delta.Sign() > 0:
				if err := d.amm.Settle(currency, delta); err != nil {
					return shared.WrapErr(shared.KindSettlement, op, "settle", err)
				}
			case delta.Sign() < 0:
				if err := d.amm.Take(currency, delta.Neg(delta)); err != nil {
					return shared.WrapErr(shared.KindSettlement, op, "take", err)
				}
			}
		}

		out.PoolID = poolID
		out.PositionID = amm.DerivePositionAddress(poolID, params.Owner, params.Salt)
		out.SqrtPrice = sqrtCurrent
		out.Liquidity = liquidity
		if key.TokenX.Equals(params.BaseMint) {
			out.BaseUsed, out.QuoteUsed = usedX, usedY
		} else {
			out.BaseUsed, out.QuoteUsed = usedY, usedX
		}
		return nil
	})
	if err != nil {
		if shared.KindOf(err) == shared.KindSettlement {
			return nil, err
		}
		return nil, shared.WrapErr(shared.KindSettlement, op, "lock", err)
	}

	out.BaseLeftover = new(big.Int).Sub(params.BaseAmount, out.BaseUsed)
	out.QuoteLeftover = new(big.Int).Sub(params.QuoteAmount, out.QuoteUsed)
	d.logger.Info("liquidity deployed",
		zap.Stringer("pool", out.PoolID),
		zap.Stringer("position", out.PositionID),
		zap.String("liquidity", out.Liquidity.String()),
		zap.String("base_used", out.BaseUsed.String()),
		zap.String("quote_used", out.QuoteUsed.String()),
	)
	return out, nil
}
