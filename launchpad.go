package launchpad

import (
	"github.com/krazyTry/launchpad-go/amm"
	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/launch"
	"github.com/krazyTry/launchpad-go/liquidity"
)

// NewEngine creates a new launch engine.
//
// Example:
//
// manager := NewPoolManager(logger)
//
// engine := NewEngine(launch.Options{Deployer: NewDeployer(manager, logger), Vault: manager, Logger: logger})
//
// engine.CreateLaunch(ctx, &launch.CreateLaunchParam{Owner: owner, BaseMint: baseMint, Params: params, FeeConfig: feeConfig, TotalSupply: supply, BondingCeiling: ceiling})
var NewEngine = launch.NewEngine

// NewPoolManager creates a new pool manager.
//
// Example:
//
// manager := NewPoolManager(logger)
//
// manager.Deposit(trader, currency, amount)
var NewPoolManager = amm.NewPoolManager

// NewDeployer creates a new one-shot liquidity deployer on top of a pool manager.
//
// Example:
//
// deployer := NewDeployer(manager, logger)
//
// deployer.Deploy(ctx, &liquidity.DeployParams{BaseMint: baseMint, QuoteMint: quoteMint, BaseAmount: tokens, QuoteAmount: eth, FeeBps: 30, Owner: owner, Salt: 1})
var NewDeployer = liquidity.NewDeployer

// BuildCurveParams calibrates quartic curve coefficients from business inputs.
//
// Example:
//
// params, _ := BuildCurveParams(&bonding_curve.BuildCurveParam{TargetRaise: raise, MaxSupply: supply})
//
// cost, _ := bonding_curve.Cost(params, big.NewInt(0), amount)
var BuildCurveParams = bonding_curve.BuildCurveParams

// BuildCurveParamsWithInitialPrice calibrates curve coefficients around a
// pinned flat term.
//
// Example:
//
// params, _ := BuildCurveParamsWithInitialPrice(&bonding_curve.BuildCurveWithInitialPriceParam{TargetRaise: raise, MaxSupply: supply, InitialPrice: price})
var BuildCurveParamsWithInitialPrice = bonding_curve.BuildCurveParamsWithInitialPrice
