package launch

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/amm"
	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/events"
	"github.com/krazyTry/launchpad-go/fees"
	"github.com/krazyTry/launchpad-go/liquidity"
	"github.com/krazyTry/launchpad-go/shared"
)

// PoolDeployer turns a graduation deposit into a funded pool position.
// *liquidity.Deployer satisfies it.
type PoolDeployer interface {
	Deploy(ctx context.Context, params *liquidity.DeployParams) (*liquidity.Deployment, error)
}

// Vault is the deposited-balance surface of the liquidity venue. The engine
// moves reserve value and fee payouts through it. *amm.PoolManager satisfies
// it.
type Vault interface {
	Deposit(owner solana.PublicKey, currency amm.Currency, amount *big.Int) error
	Withdraw(owner solana.PublicKey, currency amm.Currency, amount *big.Int) error
	BalanceOf(owner solana.PublicKey, currency amm.Currency) *big.Int
}

// Options wires an Engine. Deployer and Vault are required for graduation;
// everything else degrades gracefully when absent.
type Options struct {
	Deployer PoolDeployer
	Vault    Vault
	Bus      *events.Bus
	Logger   *zap.Logger
	Metrics  *Metrics
	Now      func() time.Time

	// LeftoverReceiver collects rounding dust the pool deposit did not
	// consume. Zero leaves the dust on the launch's vault balance.
	LeftoverReceiver solana.PublicKey
}

// Engine owns every launch and serializes all mutation per launch.
type Engine struct {
	mu       sync.RWMutex
	launches map[solana.PublicKey]*Launch
	counter  uint64

	deployer PoolDeployer
	vault    Vault
	bus      *events.Bus
	logger   *zap.Logger
	metrics  *Metrics
	now      func() time.Time

	leftoverReceiver solana.PublicKey
}

func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		launches:         make(map[solana.PublicKey]*Launch),
		deployer:         opts.Deployer,
		vault:            opts.Vault,
		bus:              opts.Bus,
		logger:           logger.Named("launch_engine"),
		metrics:          opts.Metrics,
		now:              now,
		leftoverReceiver: opts.LeftoverReceiver,
	}
}

// CreateLaunchParam configures one launch. BondingCeiling must stay strictly
// below TotalSupply so graduation always has inventory for the pool.
type CreateLaunchParam struct {
	Owner          solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey // zero key means the native quote currency
	Params         *bonding_curve.CurveParams
	FeeConfig      *fees.FeeConfig
	TotalSupply    *big.Int
	BondingCeiling *big.Int
	PoolFeeBps     uint64 // zero selects shared.DefaultPoolFeeBps
	MetadataJSON   []byte // optional
}

// CreateLaunch validates and registers a launch in phase Unconfigured.
func (e *Engine) CreateLaunch(ctx context.Context, param *CreateLaunchParam) (*Info, error) {
	const op = "launch.CreateLaunch"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if param == nil {
		return nil, shared.ConfigErrf(op, "nil param")
	}
	if param.Owner.IsZero() {
		return nil, shared.ConfigErrf(op, "owner not set")
	}
	if param.BaseMint.IsZero() {
		return nil, shared.ConfigErrf(op, "base mint not set")
	}
	if param.BaseMint.Equals(param.QuoteMint) {
		return nil, shared.ConfigErrf(op, "base mint equals quote mint")
	}
	if err := param.Params.Validate(); err != nil {
		return nil, err
	}
	if err := param.FeeConfig.Validate(); err != nil {
		return nil, err
	}
	if param.TotalSupply == nil || param.TotalSupply.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "total supply must be positive")
	}
	if param.BondingCeiling == nil || param.BondingCeiling.Sign() <= 0 {
		return nil, shared.ConfigErrf(op, "bonding ceiling must be positive")
	}
	if param.BondingCeiling.Cmp(param.TotalSupply) >= 0 {
		return nil, shared.ConfigErrf(op, "bonding ceiling %s must be below total supply %s",
			param.BondingCeiling.String(), param.TotalSupply.String())
	}
	var metadata *TokenMetadata
	if len(param.MetadataJSON) > 0 {
		var err error
		if metadata, err = ParseTokenMetadata(param.MetadataJSON); err != nil {
			return nil, err
		}
	}
	poolFeeBps := param.PoolFeeBps
	if poolFeeBps == 0 {
		poolFeeBps = shared.DefaultPoolFeeBps
	}
	if poolFeeBps >= shared.MaxBasisPoint {
		return nil, shared.ConfigErrf(op, "pool fee %d exceeds %d bps", poolFeeBps, shared.MaxBasisPoint)
	}

	now := e.now()
	l := &Launch{
		Owner:             param.Owner,
		BaseMint:          param.BaseMint,
		QuoteMint:         param.QuoteMint,
		Params:            param.Params.Clone(),
		FeeConfig:         param.FeeConfig,
		Metadata:          metadata,
		TotalSupply:       new(big.Int).Set(param.TotalSupply),
		BondingCeiling:    new(big.Int).Set(param.BondingCeiling),
		PoolFeeBps:        poolFeeBps,
		ReserveBalance:    new(big.Int),
		TotalSold:         new(big.Int),
		TreasuryQuoteFees: new(big.Int),
		TreasuryTokenFees: new(big.Int),
		CreatorQuoteFees:  new(big.Int),
		CreatedAt:         now,
	}

	e.mu.Lock()
	e.counter++
	l.ID = amm.DeriveLaunchAddress(param.Owner, param.BaseMint, e.counter)
	if _, exists := e.launches[l.ID]; exists {
		e.mu.Unlock()
		return nil, shared.StateErrf(op, "launch %s already exists", l.ID)
	}
	e.launches[l.ID] = l
	e.mu.Unlock()

	e.metrics.launchCreated()
	e.publish(&events.LaunchCreatedEvent{
		BaseEvent: events.NewBaseEvent(events.LaunchCreated, now),
		LaunchID:  l.ID,
		Owner:     l.Owner,
		BaseMint:  l.BaseMint,
	})
	e.logger.Info("launch created",
		zap.Stringer("launch", l.ID),
		zap.Stringer("owner", l.Owner),
		zap.String("total_supply", l.TotalSupply.String()),
		zap.String("bonding_ceiling", l.BondingCeiling.String()),
	)
	return l.info(now), nil
}

// GetLaunch returns a copy of the launch's full state.
func (e *Engine) GetLaunch(id solana.PublicKey) (*Info, error) {
	const op = "launch.GetLaunch"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()
	return l.info(e.now()), nil
}

// GetPhase returns the launch's current lifecycle phase.
func (e *Engine) GetPhase(id solana.PublicKey) (Phase, error) {
	const op = "launch.GetPhase"
	l, err := e.resolve(op, id)
	if err != nil {
		return PhaseUnconfigured, err
	}
	if err := l.enter(op); err != nil {
		return PhaseUnconfigured, err
	}
	defer l.exit()
	return l.phase(e.now()), nil
}

// Launches lists all launch ids, ordered for determinism.
func (e *Engine) Launches() []solana.PublicKey {
	e.mu.RLock()
	ids := make([]solana.PublicKey, 0, len(e.launches))
	for id := range e.launches {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func (e *Engine) resolve(op string, id solana.PublicKey) (*Launch, error) {
	e.mu.RLock()
	l, ok := e.launches[id]
	e.mu.RUnlock()
	if !ok {
		return nil, shared.StateErrf(op, "unknown launch %s", id)
	}
	return l, nil
}

func (e *Engine) publish(event events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(event); err != nil {
		e.logger.Warn("event dropped",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}

// nextNonce hands out position salts for graduation deploys.
func (l *Launch) nextNonce() uint64 {
	l.positionNonce++
	return l.positionNonce
}
