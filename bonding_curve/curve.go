// Package bonding_curve prices a fixed-supply token sale along a quartic
// curve. The marginal price at normalized supply u = s/normalizationFactor is
//
//	P(u) = quartic*u^4 + cubic*u^3 + quadratic*u^2 + initialPrice
//
// with all coefficients 1e18 fixed point. Buy cost and sell refund are exact
// differences of the closed-form integral, so a round trip at the same supply
// point returns exactly what was paid before fees.
package bonding_curve

import (
	"math/big"

	curvemath "github.com/krazyTry/launchpad-go/bonding_curve/math"
	"github.com/krazyTry/launchpad-go/shared"
)

// CurveParams are immutable once a launch is created.
type CurveParams struct {
	InitialPrice        *big.Int
	QuarticCoeff        *big.Int
	CubicCoeff          *big.Int
	QuadraticCoeff      *big.Int
	NormalizationFactor *big.Int
}

// Validate rejects parameter sets the pricing math cannot evaluate.
func (p *CurveParams) Validate() error {
	const op = "bonding_curve.Validate"
	if p == nil {
		return shared.ConfigErrf(op, "nil curve params")
	}
	for _, v := range []*big.Int{p.InitialPrice, p.QuarticCoeff, p.CubicCoeff, p.QuadraticCoeff, p.NormalizationFactor} {
		if v == nil {
			return shared.ConfigErrf(op, "nil coefficient")
		}
		if v.Sign() < 0 {
			return shared.ConfigErrf(op, "negative coefficient %s", v.String())
		}
	}
	if p.NormalizationFactor.Sign() == 0 {
		return shared.ConfigErrf(op, "normalization factor is zero")
	}
	if p.InitialPrice.Sign() == 0 && p.QuarticCoeff.Sign() == 0 && p.CubicCoeff.Sign() == 0 && p.QuadraticCoeff.Sign() == 0 {
		return shared.ConfigErrf(op, "curve normalizes to zero everywhere")
	}
	return nil
}

// Clone returns an independent copy so registry entries cannot be mutated
// through a retained caller pointer.
func (p *CurveParams) Clone() *CurveParams {
	return &CurveParams{
		InitialPrice:        new(big.Int).Set(p.InitialPrice),
		QuarticCoeff:        new(big.Int).Set(p.QuarticCoeff),
		CubicCoeff:          new(big.Int).Set(p.CubicCoeff),
		QuadraticCoeff:      new(big.Int).Set(p.QuadraticCoeff),
		NormalizationFactor: new(big.Int).Set(p.NormalizationFactor),
	}
}

func checkEvalInputs(op string, p *CurveParams, supply *big.Int) error {
	if p == nil || p.NormalizationFactor == nil {
		return shared.ConfigErrf(op, "nil curve params")
	}
	if p.NormalizationFactor.Sign() == 0 {
		return shared.ArithmeticErrf(op, "division by zero normalization factor")
	}
	if supply == nil || supply.Sign() < 0 {
		return shared.ArithmeticErrf(op, "negative supply")
	}
	return nil
}

// integralTerm evaluates coeff*s^power / (power * WAD^power * N^(power-1))
// with every division deferred to the end, rounding down. Keeping the
// division last is what makes cost and refund cancel bit-for-bit.
func integralTerm(op string, coeff, supply *big.Int, power int64, norm *big.Int) (*big.Int, error) {
	if coeff.Sign() == 0 || supply.Sign() == 0 {
		return big.NewInt(0), nil
	}
	num := new(big.Int).Set(coeff)
	for i := int64(0); i < power; i++ {
		num.Mul(num, supply)
	}
	den := new(big.Int).Exp(shared.Wad, big.NewInt(power), nil)
	den.Mul(den, big.NewInt(power))
	if power > 1 {
		den.Mul(den, new(big.Int).Exp(norm, big.NewInt(power-1), nil))
	}
	out, err := curvemath.Div(num, den)
	if err != nil {
		return nil, err
	}
	if out.Cmp(shared.U256Max) > 0 {
		return nil, shared.ArithmeticErrf(op, "integral overflow at power %d", power)
	}
	return out, nil
}

// IntegralFromZero evaluates the closed-form integral of the price curve
// over [0, supply], in quote base units.
func IntegralFromZero(p *CurveParams, supply *big.Int) (*big.Int, error) {
	const op = "bonding_curve.IntegralFromZero"
	if err := checkEvalInputs(op, p, supply); err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	terms := []struct {
		coeff *big.Int
		power int64
	}{
		{p.QuarticCoeff, 5},
		{p.CubicCoeff, 4},
		{p.QuadraticCoeff, 3},
		{p.InitialPrice, 1},
	}
	for _, t := range terms {
		v, err := integralTerm(op, t.coeff, supply, t.power, p.NormalizationFactor)
		if err != nil {
			return nil, err
		}
		total = curvemath.Add(total, v)
	}
	if total.Cmp(shared.U256Max) > 0 {
		return nil, shared.ArithmeticErrf(op, "integral exceeds u256")
	}
	return total, nil
}

// Integral is the curve area between two supply points. upper must not be
// below lower.
func Integral(p *CurveParams, lower, upper *big.Int) (*big.Int, error) {
	const op = "bonding_curve.Integral"
	if lower == nil || upper == nil {
		return nil, shared.ArithmeticErrf(op, "nil bound")
	}
	if upper.Cmp(lower) < 0 {
		return nil, shared.ArithmeticErrf(op, "upper %s below lower %s", upper.String(), lower.String())
	}
	hi, err := IntegralFromZero(p, upper)
	if err != nil {
		return nil, err
	}
	lo, err := IntegralFromZero(p, lower)
	if err != nil {
		return nil, err
	}
	out, err := curvemath.Sub(hi, lo)
	if err != nil {
		return nil, shared.WrapErr(shared.KindArithmetic, op, "integral difference", err)
	}
	return out, nil
}

// Cost is the exact quote amount to mint `amount` more supply starting at
// currentSupply.
func Cost(p *CurveParams, currentSupply, amount *big.Int) (*big.Int, error) {
	const op = "bonding_curve.Cost"
	if amount == nil || amount.Sign() < 0 {
		return nil, shared.ArithmeticErrf(op, "negative amount")
	}
	upper := curvemath.Add(currentSupply, amount)
	return Integral(p, currentSupply, upper)
}

// Refund is the exact quote amount released by burning `amount` supply back
// into the curve. Fails when amount exceeds the current supply.
func Refund(p *CurveParams, currentSupply, amount *big.Int) (*big.Int, error) {
	const op = "bonding_curve.Refund"
	if amount == nil || amount.Sign() < 0 {
		return nil, shared.ArithmeticErrf(op, "negative amount")
	}
	if currentSupply == nil || amount.Cmp(currentSupply) > 0 {
		return nil, shared.ArithmeticErrf(op, "refund amount exceeds supply")
	}
	lower := new(big.Int).Sub(currentSupply, amount)
	return Integral(p, lower, currentSupply)
}

// Price is the spot price at the given supply point, 1e18 fixed point.
func Price(p *CurveParams, supply *big.Int) (*big.Int, error) {
	const op = "bonding_curve.Price"
	if err := checkEvalInputs(op, p, supply); err != nil {
		return nil, err
	}

	total := new(big.Int).Set(p.InitialPrice)
	terms := []struct {
		coeff *big.Int
		power int64
	}{
		{p.QuarticCoeff, 4},
		{p.CubicCoeff, 3},
		{p.QuadraticCoeff, 2},
	}
	scale := new(big.Int).Mul(p.NormalizationFactor, shared.Wad)
	for _, t := range terms {
		if t.coeff.Sign() == 0 || supply.Sign() == 0 {
			continue
		}
		num := new(big.Int).Set(t.coeff)
		for i := int64(0); i < t.power; i++ {
			num.Mul(num, supply)
		}
		den := new(big.Int).Exp(scale, big.NewInt(t.power), nil)
		v, err := curvemath.Div(num, den)
		if err != nil {
			return nil, shared.WrapErr(shared.KindArithmetic, op, "price term", err)
		}
		if v.Cmp(shared.U256Max) > 0 {
			return nil, shared.ArithmeticErrf(op, "price overflow at power %d", t.power)
		}
		total.Add(total, v)
	}
	return total, nil
}
