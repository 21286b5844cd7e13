package bonding_curve

import (
	"math/big"

	"github.com/shopspring/decimal"

	curvemath "github.com/krazyTry/launchpad-go/bonding_curve/math"
	"github.com/krazyTry/launchpad-go/shared"
)

// CurveShape is the fixed coefficient family the calibrator solves within.
// The three polynomial coefficients are the ratios times a single base unit;
// the flat term receives InitialPriceShareBps of the target raise.
type CurveShape struct {
	QuarticRatio         decimal.Decimal
	CubicRatio           decimal.Decimal
	QuadraticRatio       decimal.Decimal
	InitialPriceShareBps uint64
}

// DefaultInitialPriceShareBps reserves 20% of the target raise for the flat
// price term.
const DefaultInitialPriceShareBps = 2000

// DefaultCurveShape mirrors the production coefficient family
// (quartic : cubic : quadratic = 2.25 : 1 : 1.5) with a 20% flat-term share.
func DefaultCurveShape() *CurveShape {
	return &CurveShape{
		QuarticRatio:         decimal.RequireFromString("2.25"),
		CubicRatio:           decimal.NewFromInt(1),
		QuadraticRatio:       decimal.RequireFromString("1.5"),
		InitialPriceShareBps: DefaultInitialPriceShareBps,
	}
}

func (s *CurveShape) validate() error {
	const op = "bonding_curve.BuildCurveParams"
	if s.QuarticRatio.Sign() < 0 || s.CubicRatio.Sign() < 0 || s.QuadraticRatio.Sign() < 0 {
		return shared.ConfigErrf(op, "negative coefficient ratio")
	}
	if s.InitialPriceShareBps > shared.MaxBasisPoint {
		return shared.ConfigErrf(op, "initial price share %d exceeds %d bps", s.InitialPriceShareBps, shared.MaxBasisPoint)
	}
	return nil
}

// BuildCurveParam calibrates a curve from business inputs: collect
// TargetRaise quote units by selling MaxSupply token units.
type BuildCurveParam struct {
	TargetRaise  *big.Int
	MaxSupply    *big.Int
	Shape        *CurveShape // nil selects DefaultCurveShape
	ToleranceBps uint64      // 0 selects shared.DefaultToleranceBps
}

// BuildCurveWithInitialPriceParam pins the flat term instead of deriving it
// from a share of the raise.
type BuildCurveWithInitialPriceParam struct {
	TargetRaise  *big.Int
	MaxSupply    *big.Int
	InitialPrice *big.Int // 1e18 fixed-point spot price at zero supply
	Shape        *CurveShape
	ToleranceBps uint64
}

// BuildCurveParams solves the coefficient family so that the integral over
// [0, MaxSupply] lands on TargetRaise, then verifies the rounded integer
// parameters with the production integral and rejects anything outside the
// tolerance.
func BuildCurveParams(param *BuildCurveParam) (*CurveParams, error) {
	const op = "bonding_curve.BuildCurveParams"
	shape := param.Shape
	if shape == nil {
		shape = DefaultCurveShape()
	}
	norm, err := checkBuildInputs(op, param.TargetRaise, param.MaxSupply, shape)
	if err != nil {
		return nil, err
	}

	// Flat-term contribution from the configured share, then the exact
	// integer price that realizes it.
	shareAmount, err := curvemath.MulDiv(param.TargetRaise, new(big.Int).SetUint64(shape.InitialPriceShareBps), big.NewInt(shared.MaxBasisPoint), shared.RoundingDown)
	if err != nil {
		return nil, shared.WrapErr(shared.KindConfig, op, "initial price share", err)
	}
	initialPrice, err := curvemath.MulDiv(shareAmount, shared.Wad, param.MaxSupply, shared.RoundingDown)
	if err != nil {
		return nil, shared.WrapErr(shared.KindConfig, op, "initial price", err)
	}

	return solveCurve(op, param.TargetRaise, param.MaxSupply, norm, initialPrice, shape, param.ToleranceBps)
}

// BuildCurveParamsWithInitialPrice calibrates around a caller-chosen launch
// price. Fails when the flat term alone exceeds the target raise.
func BuildCurveParamsWithInitialPrice(param *BuildCurveWithInitialPriceParam) (*CurveParams, error) {
	const op = "bonding_curve.BuildCurveParamsWithInitialPrice"
	shape := param.Shape
	if shape == nil {
		shape = DefaultCurveShape()
	}
	norm, err := checkBuildInputs(op, param.TargetRaise, param.MaxSupply, shape)
	if err != nil {
		return nil, err
	}
	if param.InitialPrice == nil || param.InitialPrice.Sign() < 0 {
		return nil, shared.ConfigErrf(op, "invalid initial price")
	}
	return solveCurve(op, param.TargetRaise, param.MaxSupply, norm, new(big.Int).Set(param.InitialPrice), shape, param.ToleranceBps)
}

func checkBuildInputs(op string, targetRaise, maxSupply *big.Int, shape *CurveShape) (*big.Int, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if targetRaise == nil || targetRaise.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "target raise must be positive")
	}
	if maxSupply == nil || maxSupply.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "max supply must be positive")
	}
	// The normalization factor is the whole-token sellable supply.
	norm := new(big.Int).Quo(maxSupply, shared.Wad)
	if norm.Sign() == 0 {
		return nil, shared.ConfigErrf(op, "max supply below one whole token")
	}
	return norm, nil
}

func solveCurve(op string, targetRaise, maxSupply, norm, initialPrice *big.Int, shape *CurveShape, toleranceBps uint64) (*CurveParams, error) {
	flatTerm, err := curvemath.MulDiv(initialPrice, maxSupply, shared.Wad, shared.RoundingDown)
	if err != nil {
		return nil, shared.WrapErr(shared.KindConfig, op, "flat term", err)
	}
	remainder, err := curvemath.Sub(targetRaise, flatTerm)
	if err != nil {
		return nil, shared.ConfigErrf(op, "initial price term %s exceeds target raise %s", flatTerm.String(), targetRaise.String())
	}

	// The raise is linear in the base unit B: each polynomial term
	// contributes B * ratio * norm * u^p / p where u is the normalized
	// supply at MaxSupply (1.0 when MaxSupply is a whole-token count).
	u := decimal.NewFromBigInt(maxSupply, 0).
		Div(decimal.NewFromBigInt(norm, 0).Mul(decimal.NewFromBigInt(shared.Wad, 0)))
	normDec := decimal.NewFromBigInt(norm, 0)
	factor := decimal.Zero
	for _, t := range []struct {
		ratio decimal.Decimal
		power int64
	}{
		{shape.QuarticRatio, 5},
		{shape.CubicRatio, 4},
		{shape.QuadraticRatio, 3},
	} {
		if t.ratio.Sign() == 0 {
			continue
		}
		term := t.ratio.Mul(normDec).
			Mul(u.Pow(decimal.NewFromInt(t.power))).
			Div(decimal.NewFromInt(t.power))
		factor = factor.Add(term)
	}

	baseUnit := decimal.Zero
	if remainder.Sign() > 0 {
		if factor.Sign() == 0 {
			return nil, shared.ConfigErrf(op, "coefficient ratios normalize to zero")
		}
		baseUnit = decimal.NewFromBigInt(remainder, 0).Div(factor)
	}

	params := &CurveParams{
		InitialPrice:        initialPrice,
		QuarticCoeff:        shape.QuarticRatio.Mul(baseUnit).Floor().BigInt(),
		CubicCoeff:          shape.CubicRatio.Mul(baseUnit).Floor().BigInt(),
		QuadraticCoeff:      shape.QuadraticRatio.Mul(baseUnit).Floor().BigInt(),
		NormalizationFactor: norm,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if toleranceBps == 0 {
		toleranceBps = shared.DefaultToleranceBps
	}
	got, err := IntegralFromZero(params, maxSupply)
	if err != nil {
		return nil, err
	}
	diff := new(big.Int).Sub(got, targetRaise)
	diff.Abs(diff)
	limit := new(big.Int).Mul(targetRaise, new(big.Int).SetUint64(toleranceBps))
	if new(big.Int).Mul(diff, big.NewInt(shared.MaxBasisPoint)).Cmp(limit) > 0 {
		return nil, shared.ConfigErrf(op, "calibration out of tolerance: raised %s want %s", got.String(), targetRaise.String())
	}
	return params, nil
}
