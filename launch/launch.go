// Package launch holds the lifecycle engine: every token launch moves from
// configuration through bonding-curve trading to graduation into the
// liquidity venue, with all mutation funneled through the Engine.
package launch

import (
	"math/big"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/fees"
)

type Phase uint8

const (
	PhaseUnconfigured Phase = 0
	PhaseOpen         Phase = 1
	PhaseActive       Phase = 2
	PhaseMatured      Phase = 3
	PhaseFull         Phase = 4
	PhaseGraduated    Phase = 5
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseOpen:
		return "open"
	case PhaseActive:
		return "active"
	case PhaseMatured:
		return "matured"
	case PhaseFull:
		return "full"
	case PhaseGraduated:
		return "graduated"
	}
	return "unknown"
}

// Launch is one token launch. Fields other than the curve and fee schedule
// are mutable and only ever touched by Engine methods while the scope guard
// is held.
type Launch struct {
	ID        solana.PublicKey
	Owner     solana.PublicKey
	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey

	Params    *bonding_curve.CurveParams
	FeeConfig *fees.FeeConfig
	Metadata  *TokenMetadata

	TotalSupply    *big.Int
	BondingCeiling *big.Int
	PoolFeeBps     uint64

	ReserveBalance *big.Int
	TotalSold      *big.Int
	BondingActive  bool
	OpenTime       time.Time
	MaturityTime   time.Time
	Hook           solana.PublicKey
	Graduated      bool
	PoolID         solana.PublicKey

	// Accrued fee buckets, paid out by the claim operations.
	TreasuryQuoteFees *big.Int
	TreasuryTokenFees *big.Int
	CreatorQuoteFees  *big.Int

	CreatedAt     time.Time
	positionNonce uint64
	busy          atomic.Bool
}

// phase derives the lifecycle phase from stored state. Matured and Full are
// predicates over time and sold supply, so a Full launch drops back to
// Active when sells bring it under the ceiling.
func (l *Launch) phase(now time.Time) Phase {
	switch {
	case l.Graduated:
		return PhaseGraduated
	case l.OpenTime.IsZero():
		return PhaseUnconfigured
	case !l.BondingActive:
		return PhaseOpen
	case l.TotalSold.Cmp(l.BondingCeiling) >= 0:
		return PhaseFull
	case !now.Before(l.MaturityTime):
		return PhaseMatured
	}
	return PhaseActive
}

// sellable reports whether curve sells are accepted in the given phase.
func sellable(p Phase) bool {
	return p == PhaseActive || p == PhaseMatured || p == PhaseFull
}

// State is the mutable slice of a launch, copied for callers.
type State struct {
	ReserveBalance *big.Int
	TotalSold      *big.Int
	BondingActive  bool
	OpenTime       time.Time
	MaturityTime   time.Time
	Graduated      bool
	Hook           solana.PublicKey
}

// Info is the full read-only view returned by the engine getters.
type Info struct {
	ID             solana.PublicKey
	Owner          solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	Params         *bonding_curve.CurveParams
	Metadata       *TokenMetadata
	TotalSupply    *big.Int
	BondingCeiling *big.Int
	PoolFeeBps     uint64
	Phase          Phase
	PoolID         solana.PublicKey
	State          State
}

func (l *Launch) info(now time.Time) *Info {
	var metadata *TokenMetadata
	if l.Metadata != nil {
		m := *l.Metadata
		metadata = &m
	}
	return &Info{
		ID:             l.ID,
		Owner:          l.Owner,
		BaseMint:       l.BaseMint,
		QuoteMint:      l.QuoteMint,
		Params:         l.Params.Clone(),
		Metadata:       metadata,
		TotalSupply:    new(big.Int).Set(l.TotalSupply),
		BondingCeiling: new(big.Int).Set(l.BondingCeiling),
		PoolFeeBps:     l.PoolFeeBps,
		Phase:          l.phase(now),
		PoolID:         l.PoolID,
		State: State{
			ReserveBalance: new(big.Int).Set(l.ReserveBalance),
			TotalSold:      new(big.Int).Set(l.TotalSold),
			BondingActive:  l.BondingActive,
			OpenTime:       l.OpenTime,
			MaturityTime:   l.MaturityTime,
			Graduated:      l.Graduated,
			Hook:           l.Hook,
		},
	}
}
