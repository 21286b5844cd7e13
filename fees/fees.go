// Package fees implements the launchpad fee schedule: the flat bonding fee
// charged on curve trades and the ordered graduation waterfall that splits a
// closed reserve between treasury, creator, protocol-owned liquidity and the
// pool deposit.
package fees

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	curvemath "github.com/krazyTry/launchpad-go/bonding_curve/math"
	"github.com/krazyTry/launchpad-go/shared"
)

// FeeConfig is the per-launch fee schedule. All rates are basis points.
// A zero ProtocolTreasury disables every treasury-directed deduction; a zero
// FactoryCreator zeroes only the creator carve-out.
type FeeConfig struct {
	BondingFeeBps           uint64
	GraduationFeeBps        uint64
	CreatorGraduationFeeBps uint64
	PolBps                  uint64

	ProtocolTreasury solana.PublicKey
	FactoryCreator   solana.PublicKey
}

// DeployResult is the outcome of the graduation waterfall. Every amount is in
// quote units except TokensForPool and PolTokens.
type DeployResult struct {
	GraduationFee  *big.Int
	CreatorGradCut *big.Int
	PolETH         *big.Int
	PolTokens      *big.Int
	EthForPool     *big.Int
	TokensForPool  *big.Int
}

// Validate checks every rate against its protocol cap.
func (c *FeeConfig) Validate() error {
	const op = "fees.Validate"
	if c == nil {
		return shared.ConfigErrf(op, "nil fee config")
	}
	if c.GraduationFeeBps > shared.MaxGraduationFeeBps {
		return shared.ConfigErrf(op, "graduation fee %d exceeds %d bps", c.GraduationFeeBps, shared.MaxGraduationFeeBps)
	}
	if c.PolBps > shared.MaxPolBps {
		return shared.ConfigErrf(op, "pol share %d exceeds %d bps", c.PolBps, shared.MaxPolBps)
	}
	if c.BondingFeeBps > shared.MaxBondingFeeBps {
		return shared.ConfigErrf(op, "bonding fee %d exceeds %d bps", c.BondingFeeBps, shared.MaxBondingFeeBps)
	}
	if c.CreatorGraduationFeeBps > shared.MaxBasisPoint {
		return shared.ConfigErrf(op, "creator graduation fee %d exceeds %d bps", c.CreatorGraduationFeeBps, shared.MaxBasisPoint)
	}
	return nil
}

// TreasurySet reports whether fees have a destination at all.
func (c *FeeConfig) TreasurySet() bool {
	return !c.ProtocolTreasury.IsZero()
}

// BondingFee returns the flat trade fee on a curve buy cost or sell refund,
// floored. Without a treasury there is nowhere to send it, so it is zero.
func (c *FeeConfig) BondingFee(amount *big.Int) (*big.Int, error) {
	const op = "fees.BondingFee"
	if amount == nil || amount.Sign() < 0 {
		return nil, shared.ArithmeticErrf(op, "negative amount")
	}
	if !c.TreasurySet() || c.BondingFeeBps == 0 {
		return new(big.Int), nil
	}
	fee, err := bpsOf(amount, c.BondingFeeBps)
	if err != nil {
		return nil, shared.WrapErr(shared.KindArithmetic, op, "fee", err)
	}
	return fee, nil
}

// Split runs the graduation waterfall over the closed reserve (gross) and the
// unsold token inventory (tokenGross). The deduction order is fixed:
// graduation fee first, the creator cut carved from inside it, then the
// protocol-owned liquidity share of what remains. A schedule that would
// deploy an empty pool is rejected.
func (c *FeeConfig) Split(gross, tokenGross *big.Int) (*DeployResult, error) {
	const op = "fees.Split"
	if gross == nil || gross.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "empty reserve")
	}
	if tokenGross == nil || tokenGross.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "no tokens left for pool")
	}

	out := &DeployResult{
		GraduationFee:  new(big.Int),
		CreatorGradCut: new(big.Int),
		PolETH:         new(big.Int),
		PolTokens:      new(big.Int),
	}

	if c.TreasurySet() {
		var err error
		if c.GraduationFeeBps > 0 {
			if out.GraduationFee, err = bpsOf(gross, c.GraduationFeeBps); err != nil {
				return nil, shared.WrapErr(shared.KindArithmetic, op, "graduation fee", err)
			}
		}
		if !c.FactoryCreator.IsZero() && c.CreatorGraduationFeeBps > 0 {
			if out.CreatorGradCut, err = bpsOf(gross, c.CreatorGraduationFeeBps); err != nil {
				return nil, shared.WrapErr(shared.KindArithmetic, op, "creator cut", err)
			}
			// The creator is paid out of the graduation fee, never on top.
			if out.CreatorGradCut.Cmp(out.GraduationFee) > 0 {
				out.CreatorGradCut.Set(out.GraduationFee)
			}
		}
	}

	afterGrad := new(big.Int).Sub(gross, out.GraduationFee)

	if c.TreasurySet() && c.PolBps > 0 {
		var err error
		if out.PolETH, err = bpsOf(afterGrad, c.PolBps); err != nil {
			return nil, shared.WrapErr(shared.KindArithmetic, op, "pol quote", err)
		}
		if out.PolTokens, err = bpsOf(tokenGross, c.PolBps); err != nil {
			return nil, shared.WrapErr(shared.KindArithmetic, op, "pol tokens", err)
		}
	}

	out.EthForPool = new(big.Int).Sub(afterGrad, out.PolETH)
	out.TokensForPool = new(big.Int).Sub(tokenGross, out.PolTokens)
	if out.EthForPool.Sign() <= 0 || out.TokensForPool.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "fee schedule leaves nothing for the pool")
	}
	return out, nil
}

func bpsOf(amount *big.Int, bps uint64) (*big.Int, error) {
	return curvemath.MulDiv(amount, new(big.Int).SetUint64(bps), big.NewInt(shared.MaxBasisPoint), shared.RoundingDown)
}
