package launch

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/amm"
	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/fees"
	"github.com/krazyTry/launchpad-go/liquidity"
	"github.com/krazyTry/launchpad-go/shared"
)

var (
	testOpen     = time.Unix(1_700_000_000, 0)
	testMaturity = testOpen.Add(24 * time.Hour)
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func testKey(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func tokens(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), shared.Wad)
}

func mustBig(t *testing.T, v string) *big.Int {
	t.Helper()
	out, ok := new(big.Int).SetString(v, 10)
	if !ok {
		t.Fatalf("bad big integer %q", v)
	}
	return out
}

// launchParam builds a launch on a flat curve priced at 1e12 wei per whole
// token, so every trade amount works out to round figures.
func launchParam(owner, treasury, creator solana.PublicKey) *CreateLaunchParam {
	return &CreateLaunchParam{
		Owner:     owner,
		BaseMint:  testKey(0x01),
		QuoteMint: solana.PublicKey{},
		Params: &bonding_curve.CurveParams{
			InitialPrice:        big.NewInt(1_000_000_000_000),
			QuarticCoeff:        new(big.Int),
			CubicCoeff:          new(big.Int),
			QuadraticCoeff:      new(big.Int),
			NormalizationFactor: big.NewInt(1_000_000),
		},
		FeeConfig: &fees.FeeConfig{
			BondingFeeBps:           100,
			GraduationFeeBps:        200,
			CreatorGraduationFeeBps: 50,
			PolBps:                  100,
			ProtocolTreasury:        treasury,
			FactoryCreator:          creator,
		},
		TotalSupply:    tokens(1_000_000),
		BondingCeiling: tokens(800_000),
	}
}

type fixture struct {
	engine  *Engine
	manager *amm.PoolManager
	clock   *fakeClock
	id      solana.PublicKey

	owner    solana.PublicKey
	buyer    solana.PublicKey
	hook     solana.PublicKey
	treasury solana.PublicKey
	creator  solana.PublicKey
	receiver solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, deployer PoolDeployer) *fixture {
	t.Helper()
	fx := &fixture{
		clock:    &fakeClock{now: testOpen.Add(-time.Hour)},
		owner:    testKey(0x11),
		buyer:    testKey(0x22),
		hook:     testKey(0x33),
		treasury: testKey(0xAA),
		creator:  testKey(0xBB),
		receiver: testKey(0xCC),
	}
	fx.manager = amm.NewPoolManager(nil)
	if deployer == nil {
		deployer = liquidity.NewDeployer(fx.manager, nil)
	}
	fx.engine = NewEngine(Options{
		Deployer:         deployer,
		Vault:            fx.manager,
		Now:              fx.clock.Now,
		LeftoverReceiver: fx.receiver,
	})
	info, err := fx.engine.CreateLaunch(context.Background(), launchParam(fx.owner, fx.treasury, fx.creator))
	if err != nil {
		t.Fatal("CreateLaunch() fail", err)
	}
	fx.id = info.ID
	return fx
}

// activate walks the launch through schedule, hook and activation, leaving
// the clock at the open time.
func (fx *fixture) activate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := fx.engine.SetBondingSchedule(ctx, fx.owner, fx.id, testOpen, testMaturity); err != nil {
		t.Fatal("SetBondingSchedule() fail", err)
	}
	if err := fx.engine.SetHook(ctx, fx.owner, fx.id, fx.hook); err != nil {
		t.Fatal("SetHook() fail", err)
	}
	fx.clock.now = testOpen
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err != nil {
		t.Fatal("Activate() fail", err)
	}
}

func (fx *fixture) buy(t *testing.T, whole int64) *TradeReceipt {
	t.Helper()
	amount := tokens(whole)
	quote, err := fx.engine.BuyQuote(fx.id, amount, 0)
	if err != nil {
		t.Fatal("BuyQuote() fail", err)
	}
	receipt, err := fx.engine.Buy(context.Background(), fx.buyer, fx.id, amount, quote.Total)
	if err != nil {
		t.Fatal("Buy() fail", err)
	}
	return receipt
}

func TestCreateLaunch(t *testing.T) {
	fx := newFixture(t)

	info, err := fx.engine.GetLaunch(fx.id)
	if err != nil {
		t.Fatal("GetLaunch() fail", err)
	}
	if info.Phase != PhaseUnconfigured {
		t.Fatalf("Phase = %s, want unconfigured", info.Phase)
	}
	if !info.Owner.Equals(fx.owner) {
		t.Fatalf("Owner = %s, want %s", info.Owner, fx.owner)
	}
	if info.PoolFeeBps != shared.DefaultPoolFeeBps {
		t.Fatalf("PoolFeeBps = %d, want %d", info.PoolFeeBps, shared.DefaultPoolFeeBps)
	}
	if info.State.TotalSold.Sign() != 0 || info.State.ReserveBalance.Sign() != 0 {
		t.Fatal("fresh launch must start with zero sold and zero reserve")
	}

	phase, err := fx.engine.GetPhase(fx.id)
	if err != nil {
		t.Fatal("GetPhase() fail", err)
	}
	if phase != PhaseUnconfigured {
		t.Fatalf("GetPhase() = %s, want unconfigured", phase)
	}
}

func TestCreateLaunchMetadata(t *testing.T) {
	fx := newFixture(t)

	param := launchParam(fx.owner, fx.treasury, fx.creator)
	param.BaseMint = testKey(0x02)
	param.MetadataJSON = []byte(`{"name":"Moon","symbol":"MOON","uri":"https://example.com/moon.json"}`)
	info, err := fx.engine.CreateLaunch(context.Background(), param)
	if err != nil {
		t.Fatal("CreateLaunch() fail", err)
	}
	if info.Metadata == nil {
		t.Fatal("Metadata missing")
	}
	if info.Metadata.Symbol != "MOON" {
		t.Fatalf("Symbol = %q, want %q", info.Metadata.Symbol, "MOON")
	}
}

func TestCreateLaunchValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.engine.CreateLaunch(ctx, nil); err == nil {
		t.Fatal("CreateLaunch(nil) expected error")
	}

	cases := []struct {
		name   string
		mutate func(*CreateLaunchParam)
	}{
		{"zero owner", func(p *CreateLaunchParam) { p.Owner = solana.PublicKey{} }},
		{"zero base mint", func(p *CreateLaunchParam) { p.BaseMint = solana.PublicKey{} }},
		{"base equals quote", func(p *CreateLaunchParam) { p.QuoteMint = p.BaseMint }},
		{"nil curve", func(p *CreateLaunchParam) { p.Params = nil }},
		{"nil fees", func(p *CreateLaunchParam) { p.FeeConfig = nil }},
		{"nil supply", func(p *CreateLaunchParam) { p.TotalSupply = nil }},
		{"zero supply", func(p *CreateLaunchParam) { p.TotalSupply = new(big.Int) }},
		{"zero ceiling", func(p *CreateLaunchParam) { p.BondingCeiling = new(big.Int) }},
		{"ceiling at supply", func(p *CreateLaunchParam) { p.BondingCeiling = new(big.Int).Set(p.TotalSupply) }},
		{"bad metadata", func(p *CreateLaunchParam) { p.MetadataJSON = []byte("{") }},
		{"excess pool fee", func(p *CreateLaunchParam) { p.PoolFeeBps = shared.MaxBasisPoint }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			param := launchParam(fx.owner, fx.treasury, fx.creator)
			tc.mutate(param)
			if _, err := fx.engine.CreateLaunch(ctx, param); err == nil {
				t.Fatalf("CreateLaunch(%s) expected error", tc.name)
			} else if shared.KindOf(err) != shared.KindConfig {
				t.Fatalf("CreateLaunch(%s) kind = %v, want config", tc.name, shared.KindOf(err))
			}
		})
	}
}

func TestLaunchLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// Activation needs a schedule first.
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err == nil {
		t.Fatal("Activate() before schedule expected error")
	}

	// Only the owner configures.
	if err := fx.engine.SetBondingSchedule(ctx, fx.buyer, fx.id, testOpen, testMaturity); err == nil {
		t.Fatal("SetBondingSchedule() by non-owner expected error")
	}
	if err := fx.engine.SetBondingSchedule(ctx, fx.owner, fx.id, time.Time{}, testMaturity); err == nil {
		t.Fatal("SetBondingSchedule() with zero open expected error")
	}
	if err := fx.engine.SetBondingSchedule(ctx, fx.owner, fx.id, testMaturity, testOpen); err == nil {
		t.Fatal("SetBondingSchedule() with maturity before open expected error")
	}
	if err := fx.engine.SetBondingSchedule(ctx, fx.owner, fx.id, testOpen, testMaturity); err != nil {
		t.Fatal("SetBondingSchedule() fail", err)
	}
	if phase, _ := fx.engine.GetPhase(fx.id); phase != PhaseOpen {
		t.Fatalf("phase after schedule = %s, want open", phase)
	}

	// The open time gates activation.
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err == nil {
		t.Fatal("Activate() before open time expected error")
	}
	fx.clock.now = testOpen

	// So does the hook.
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err == nil {
		t.Fatal("Activate() without hook expected error")
	}
	if err := fx.engine.SetHook(ctx, fx.owner, fx.id, solana.PublicKey{}); err == nil {
		t.Fatal("SetHook() with zero hook expected error")
	}
	if err := fx.engine.SetHook(ctx, fx.owner, fx.id, fx.hook); err != nil {
		t.Fatal("SetHook() fail", err)
	}
	if err := fx.engine.Activate(ctx, fx.buyer, fx.id); err == nil {
		t.Fatal("Activate() by non-owner expected error")
	}
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err != nil {
		t.Fatal("Activate() fail", err)
	}
	if phase, _ := fx.engine.GetPhase(fx.id); phase != PhaseActive {
		t.Fatalf("phase after activation = %s, want active", phase)
	}

	// Activation freezes the schedule and cannot repeat.
	if err := fx.engine.Activate(ctx, fx.owner, fx.id); err == nil {
		t.Fatal("Activate() twice expected error")
	}
	if err := fx.engine.SetBondingSchedule(ctx, fx.owner, fx.id, testOpen, testMaturity.Add(time.Hour)); err == nil {
		t.Fatal("SetBondingSchedule() after activation expected error")
	}

	// Maturity is a pure function of the clock.
	fx.clock.now = testMaturity.Add(time.Minute)
	if phase, _ := fx.engine.GetPhase(fx.id); phase != PhaseMatured {
		t.Fatalf("phase after maturity = %s, want matured", phase)
	}
	fx.clock.now = testOpen
	if phase, _ := fx.engine.GetPhase(fx.id); phase != PhaseActive {
		t.Fatalf("phase before maturity = %s, want active", phase)
	}
}

func TestGetLaunchCopies(t *testing.T) {
	fx := newFixture(t)

	info, err := fx.engine.GetLaunch(fx.id)
	if err != nil {
		t.Fatal("GetLaunch() fail", err)
	}
	info.State.ReserveBalance.SetInt64(77)
	info.Params.InitialPrice.SetInt64(9)

	fresh, err := fx.engine.GetLaunch(fx.id)
	if err != nil {
		t.Fatal("GetLaunch() fail", err)
	}
	if fresh.State.ReserveBalance.Sign() != 0 {
		t.Fatal("mutating a returned Info must not touch engine state")
	}
	if fresh.Params.InitialPrice.Cmp(big.NewInt(1_000_000_000_000)) != 0 {
		t.Fatal("mutating returned curve params must not touch engine state")
	}
}

func TestLaunchesOrdering(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, mint := range []byte{0x02, 0x03} {
		param := launchParam(fx.owner, fx.treasury, fx.creator)
		param.BaseMint = testKey(mint)
		if _, err := fx.engine.CreateLaunch(ctx, param); err != nil {
			t.Fatal("CreateLaunch() fail", err)
		}
	}

	ids := fx.engine.Launches()
	if len(ids) != 3 {
		t.Fatalf("Launches() returned %d ids, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1].String() >= ids[i].String() {
			t.Fatalf("Launches() not sorted at %d: %s >= %s", i, ids[i-1], ids[i])
		}
	}
	found := false
	for _, id := range ids {
		if id.Equals(fx.id) {
			found = true
		}
	}
	if !found {
		t.Fatal("Launches() missing the created launch")
	}
}

func TestEngineRejectsReentry(t *testing.T) {
	fx := newFixture(t)

	fx.engine.mu.RLock()
	l := fx.engine.launches[fx.id]
	fx.engine.mu.RUnlock()

	if err := l.enter("test"); err != nil {
		t.Fatal("enter() fail", err)
	}
	if _, err := fx.engine.GetLaunch(fx.id); err == nil {
		t.Fatal("GetLaunch() while busy expected error")
	} else if shared.KindOf(err) != shared.KindState {
		t.Fatalf("busy error kind = %v, want state", shared.KindOf(err))
	}
	l.exit()

	if _, err := fx.engine.GetLaunch(fx.id); err != nil {
		t.Fatal("GetLaunch() after release fail", err)
	}
}

func TestUnknownLaunch(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.engine.GetLaunch(testKey(0xEE)); err == nil {
		t.Fatal("GetLaunch() for unknown id expected error")
	} else if shared.KindOf(err) != shared.KindState {
		t.Fatalf("error kind = %v, want state", shared.KindOf(err))
	}
}
