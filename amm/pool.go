package amm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/shared"
	"github.com/krazyTry/launchpad-go/u128"
)

// Pool is one initialized market. Prices are Q64 sqrt prices; liquidity is
// the Q64 full-range liquidity of all positions.
type Pool struct {
	Key       PoolKey
	SqrtPrice bin.Uint128
	Liquidity bin.Uint128
	ReserveX  *big.Int
	ReserveY  *big.Int
}

func (p *Pool) clone() *Pool {
	return &Pool{
		Key:       p.Key,
		SqrtPrice: p.SqrtPrice,
		Liquidity: p.Liquidity,
		ReserveX:  new(big.Int).Set(p.ReserveX),
		ReserveY:  new(big.Int).Set(p.ReserveY),
	}
}

// Position records one owner's liquidity in a pool.
type Position struct {
	Address   solana.PublicKey
	Pool      solana.PublicKey
	Owner     solana.PublicKey
	Nonce     uint64
	Liquidity bin.Uint128
}

// PoolManager is the singleton venue. All pools share one deposited-balance
// ledger so a graduation can settle both currencies in a single lock.
type PoolManager struct {
	mu     sync.Mutex
	locked bool
	locker solana.PublicKey

	pools     map[solana.PublicKey]*Pool
	positions map[solana.PublicKey]*Position
	balances  map[solana.PublicKey]map[Currency]*big.Int
	deltas    map[Currency]*big.Int

	logger *zap.Logger
}

func NewPoolManager(logger *zap.Logger) *PoolManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolManager{
		pools:     make(map[solana.PublicKey]*Pool),
		positions: make(map[solana.PublicKey]*Position),
		balances:  make(map[solana.PublicKey]map[Currency]*big.Int),
		deltas:    make(map[Currency]*big.Int),
		logger:    logger,
	}
}

// Deposit moves value into the manager's ledger for later settlement.
// Rejected while a lock session is running.
func (m *PoolManager) Deposit(owner solana.PublicKey, currency Currency, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("amm: negative deposit %s", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return ErrLocked
	}
	m.credit(owner, currency, amount)
	return nil
}

// Withdraw moves deposited value back out of the ledger.
func (m *PoolManager) Withdraw(owner solana.PublicKey, currency Currency, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("amm: negative withdrawal %s", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return ErrLocked
	}
	return m.debit(owner, currency, amount)
}

// BalanceOf returns the owner's deposited balance for a currency.
func (m *PoolManager) BalanceOf(owner solana.PublicKey, currency Currency) *big.Int {
	byCurrency, ok := m.balances[owner]
	if !ok {
		return new(big.Int)
	}
	bal, ok := byCurrency[currency]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

// Lock runs fn as a flash-accounting session. Inside the session every
// transfer is tracked as a per-currency delta: positive means the locker owes
// the pool, negative means the pool owes the locker. When fn returns, every
// delta must be zero or the session fails and all staged state is discarded.
func (m *PoolManager) Lock(ctx context.Context, locker solana.PublicKey, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.locked {
		m.mu.Unlock()
		return ErrLocked
	}
	m.locked = true
	m.locker = locker
	snap := m.stage()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.locked = false
		m.locker = solana.PublicKey{}
		m.deltas = make(map[Currency]*big.Int)
		m.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		m.restore(snap)
		return err
	}
	for currency, delta := range m.deltas {
		if delta.Sign() != 0 {
			m.restore(snap)
			m.logger.Warn("lock aborted",
				zap.Stringer("locker", locker),
				zap.Stringer("currency", currency),
				zap.String("delta", delta.String()),
			)
			return fmt.Errorf("%w: currency=%s delta=%s", ErrNonZeroDelta, currency, delta)
		}
	}
	return nil
}

// Initialize creates a pool at the given sqrt price. Lock only.
func (m *PoolManager) Initialize(key PoolKey, sqrtPrice bin.Uint128) (solana.PublicKey, error) {
	if !m.locked {
		return solana.PublicKey{}, ErrNotLocked
	}
	if err := key.Validate(); err != nil {
		return solana.PublicKey{}, err
	}
	price := u128.ToBig(sqrtPrice)
	if price.Cmp(shared.MinSqrtPrice) < 0 || price.Cmp(shared.MaxSqrtPrice) > 0 {
		return solana.PublicKey{}, ErrInvalidSqrtPrice
	}
	id := key.ID()
	if _, ok := m.pools[id]; ok {
		return solana.PublicKey{}, ErrPoolExists
	}
	m.pools[id] = &Pool{
		Key:       key,
		SqrtPrice: sqrtPrice,
		ReserveX:  new(big.Int),
		ReserveY:  new(big.Int),
	}
	m.logger.Debug("pool initialized",
		zap.Stringer("pool", id),
		zap.String("sqrt_price", price.String()),
	)
	return id, nil
}

// CurrentPrice returns the pool's Q64 sqrt price.
func (m *PoolManager) CurrentPrice(pool solana.PublicKey) (bin.Uint128, error) {
	p, ok := m.pools[pool]
	if !ok {
		return bin.Uint128{}, ErrPoolNotFound
	}
	return p.SqrtPrice, nil
}

// PoolByID returns a copy of the pool state.
func (m *PoolManager) PoolByID(pool solana.PublicKey) (*Pool, error) {
	p, ok := m.pools[pool]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return p.clone(), nil
}

// PositionByID returns a copy of a position record.
func (m *PoolManager) PositionByID(position solana.PublicKey) (*Position, error) {
	p, ok := m.positions[position]
	if !ok {
		return nil, ErrPoolNotFound
	}
	cp := *p
	return &cp, nil
}

// AddLiquidity mints a full-range position at the pool's current price and
// returns the amounts the liquidity requires, rounded up. The amounts are
// charged to the session as positive deltas. Lock only.
func (m *PoolManager) AddLiquidity(pool, owner solana.PublicKey, liquidity bin.Uint128, nonce uint64) (*big.Int, *big.Int, error) {
	if !m.locked {
		return nil, nil, ErrNotLocked
	}
	p, ok := m.pools[pool]
	if !ok {
		return nil, nil, ErrPoolNotFound
	}
	liq := u128.ToBig(liquidity)
	if liq.Sign() <= 0 {
		return nil, nil, ErrZeroLiquidity
	}

	sqrtPrice := u128.ToBig(p.SqrtPrice)
	amountX, amountY, err := amountsForLiquidity(liq, sqrtPrice)
	if err != nil {
		return nil, nil, err
	}

	newLiquidity, err := u128.FromBig(new(big.Int).Add(u128.ToBig(p.Liquidity), liq))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: pool liquidity", ErrOverflow)
	}

	address := DerivePositionAddress(pool, owner, nonce)
	if _, ok := m.positions[address]; ok {
		return nil, nil, ErrPositionExists
	}

	p.Liquidity = newLiquidity
	p.ReserveX.Add(p.ReserveX, amountX)
	p.ReserveY.Add(p.ReserveY, amountY)
	m.positions[address] = &Position{
		Address:   address,
		Pool:      pool,
		Owner:     owner,
		Nonce:     nonce,
		Liquidity: liquidity,
	}
	m.updateDelta(p.Key.TokenX, amountX)
	m.updateDelta(p.Key.TokenY, amountY)

	m.logger.Debug("liquidity added",
		zap.Stringer("pool", pool),
		zap.Stringer("position", address),
		zap.String("liquidity", liq.String()),
		zap.String("amount_x", amountX.String()),
		zap.String("amount_y", amountY.String()),
	)
	return amountX, amountY, nil
}

// Settle pays a positive delta down from the locker's deposited balance.
// Lock only.
func (m *PoolManager) Settle(currency Currency, amount *big.Int) error {
	if !m.locked {
		return ErrNotLocked
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("amm: negative settle %s", amount)
	}
	if err := m.debit(m.locker, currency, amount); err != nil {
		return err
	}
	m.updateDelta(currency, new(big.Int).Neg(amount))
	return nil
}

// Take withdraws value owed to the locker into its deposited balance.
// Lock only.
func (m *PoolManager) Take(currency Currency, amount *big.Int) error {
	if !m.locked {
		return ErrNotLocked
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("amm: negative take %s", amount)
	}
	m.credit(m.locker, currency, amount)
	m.updateDelta(currency, amount)
	return nil
}

// Delta returns the session's net delta for a currency. Lock only.
func (m *PoolManager) Delta(currency Currency) *big.Int {
	delta, ok := m.deltas[currency]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(delta)
}

// amountsForLiquidity prices a full-range position at the current sqrt
// price. The price is TokenY per TokenX, so the X leg covers
// [current, max] and the Y leg covers [min, current]. Both round up so the
// pool is never underfunded.
func amountsForLiquidity(liquidity, sqrtPrice *big.Int) (amountX, amountY *big.Int, err error) {
	amountX, err = BaseAmountForLiquidity(liquidity, sqrtPrice, shared.MaxSqrtPrice, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	amountY, err = QuoteAmountForLiquidity(liquidity, shared.MinSqrtPrice, sqrtPrice, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	return amountX, amountY, nil
}

func (m *PoolManager) updateDelta(currency Currency, delta *big.Int) {
	current, ok := m.deltas[currency]
	if !ok {
		current = new(big.Int)
		m.deltas[currency] = current
	}
	current.Add(current, delta)
}

func (m *PoolManager) credit(owner solana.PublicKey, currency Currency, amount *big.Int) {
	byCurrency, ok := m.balances[owner]
	if !ok {
		byCurrency = make(map[Currency]*big.Int)
		m.balances[owner] = byCurrency
	}
	bal, ok := byCurrency[currency]
	if !ok {
		bal = new(big.Int)
		byCurrency[currency] = bal
	}
	bal.Add(bal, amount)
}

func (m *PoolManager) debit(owner solana.PublicKey, currency Currency, amount *big.Int) error {
	byCurrency, ok := m.balances[owner]
	if !ok {
		return ErrInsufficientBalance
	}
	bal, ok := byCurrency[currency]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}

type managerSnapshot struct {
	pools     map[solana.PublicKey]*Pool
	positions map[solana.PublicKey]*Position
	balances  map[solana.PublicKey]map[Currency]*big.Int
}

func (m *PoolManager) stage() *managerSnapshot {
	snap := &managerSnapshot{
		pools:     make(map[solana.PublicKey]*Pool, len(m.pools)),
		positions: make(map[solana.PublicKey]*Position, len(m.positions)),
		balances:  make(map[solana.PublicKey]map[Currency]*big.Int, len(m.balances)),
	}
	for id, p := range m.pools {
		snap.pools[id] = p.clone()
	}
	for id, p := range m.positions {
		cp := *p
		snap.positions[id] = &cp
	}
	for owner, byCurrency := range m.balances {
		cp := make(map[Currency]*big.Int, len(byCurrency))
		for currency, bal := range byCurrency {
			cp[currency] = new(big.Int).Set(bal)
		}
		snap.balances[owner] = cp
	}
	return snap
}

func (m *PoolManager) restore(snap *managerSnapshot) {
	m.pools = snap.pools
	m.positions = snap.positions
	m.balances = snap.balances
}
