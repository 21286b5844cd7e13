package launch

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/events"
	"github.com/krazyTry/launchpad-go/shared"
)

// SetBondingSchedule sets the trading window. Owner only. Re-scheduling is
// allowed until activation.
func (e *Engine) SetBondingSchedule(ctx context.Context, caller, id solana.PublicKey, openTime, maturityTime time.Time) error {
	const op = "launch.SetBondingSchedule"
	l, err := e.resolve(op, id)
	if err != nil {
		return err
	}
	if err := l.enter(op); err != nil {
		return err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return err
	}

	if !caller.Equals(l.Owner) {
		return shared.StateErrf(op, "caller %s is not the owner", caller)
	}
	if l.Graduated {
		return shared.StateErrf(op, "launch %s already graduated", id)
	}
	if l.BondingActive {
		return shared.StateErrf(op, "schedule is frozen after activation")
	}
	if openTime.IsZero() {
		return shared.ConfigErrf(op, "open time not set")
	}
	if !maturityTime.After(openTime) {
		return shared.ConfigErrf(op, "maturity %s must be after open %s", maturityTime, openTime)
	}

	l.OpenTime = openTime
	l.MaturityTime = maturityTime
	e.logger.Info("bonding schedule set",
		zap.Stringer("launch", id),
		zap.Time("open", openTime),
		zap.Time("maturity", maturityTime),
	)
	return nil
}

// SetHook points the launch at its liquidity venue. Owner only,
// pre-graduation.
func (e *Engine) SetHook(ctx context.Context, caller, id, hook solana.PublicKey) error {
	const op = "launch.SetHook"
	l, err := e.resolve(op, id)
	if err != nil {
		return err
	}
	if err := l.enter(op); err != nil {
		return err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return err
	}

	if !caller.Equals(l.Owner) {
		return shared.StateErrf(op, "caller %s is not the owner", caller)
	}
	if l.Graduated {
		return shared.StateErrf(op, "launch %s already graduated", id)
	}
	if hook.IsZero() {
		return shared.ConfigErrf(op, "zero hook address")
	}

	l.Hook = hook
	e.logger.Info("hook set", zap.Stringer("launch", id), zap.Stringer("hook", hook))
	return nil
}

// Activate opens curve trading. Owner only; requires a schedule whose open
// time has passed and a configured hook.
func (e *Engine) Activate(ctx context.Context, caller, id solana.PublicKey) error {
	const op = "launch.Activate"
	l, err := e.resolve(op, id)
	if err != nil {
		return err
	}
	if err := l.enter(op); err != nil {
		return err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return err
	}

	if !caller.Equals(l.Owner) {
		return shared.StateErrf(op, "caller %s is not the owner", caller)
	}
	now := e.now()
	if phase := l.phase(now); phase != PhaseOpen {
		return shared.StateErrf(op, "launch %s is %s, want open", id, phase)
	}
	if now.Before(l.OpenTime) {
		return shared.StateErrf(op, "open time %s not reached", l.OpenTime)
	}
	if l.Hook.IsZero() {
		return shared.StateErrf(op, "hook not set")
	}

	l.BondingActive = true
	e.publish(&events.LaunchActivatedEvent{
		BaseEvent:    events.NewBaseEvent(events.LaunchActivated, now),
		LaunchID:     id,
		OpenTime:     l.OpenTime,
		MaturityTime: l.MaturityTime,
	})
	e.logger.Info("launch activated", zap.Stringer("launch", id))
	return nil
}
