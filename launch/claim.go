package launch

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/shared"
)

// ClaimResult reports what a fee claim paid out.
type ClaimResult struct {
	LaunchID    solana.PublicKey
	Receiver    solana.PublicKey
	QuoteAmount *big.Int
	TokenAmount *big.Int
}

// ClaimTreasuryFees pays the accrued protocol buckets, quote and token, to
// the protocol treasury. Only the treasury itself may claim.
func (e *Engine) ClaimTreasuryFees(ctx context.Context, caller, id solana.PublicKey) (*ClaimResult, error) {
	const op = "launch.ClaimTreasuryFees"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	treasury := l.FeeConfig.ProtocolTreasury
	if treasury.IsZero() {
		return nil, shared.StateErrf(op, "launch %s has no protocol treasury", id)
	}
	if !caller.Equals(treasury) {
		return nil, shared.StateErrf(op, "caller %s is not the protocol treasury", caller)
	}
	if l.TreasuryQuoteFees.Sign() == 0 && l.TreasuryTokenFees.Sign() == 0 {
		return nil, shared.StateErrf(op, "launch %s has no treasury fees to claim", id)
	}

	quote := new(big.Int).Set(l.TreasuryQuoteFees)
	tokens := new(big.Int).Set(l.TreasuryTokenFees)
	if err := e.payout(op, treasury, l.QuoteMint, quote); err != nil {
		return nil, err
	}
	l.TreasuryQuoteFees.SetInt64(0)
	if err := e.payout(op, treasury, l.BaseMint, tokens); err != nil {
		return nil, err
	}
	l.TreasuryTokenFees.SetInt64(0)

	e.logger.Info("treasury fees claimed",
		zap.Stringer("launch", id),
		zap.String("quote", quote.String()),
		zap.String("tokens", tokens.String()),
	)
	return &ClaimResult{
		LaunchID:    id,
		Receiver:    treasury,
		QuoteAmount: quote,
		TokenAmount: tokens,
	}, nil
}

// ClaimCreatorFees pays the creator's graduation cut to the factory creator.
// Only the factory creator may claim.
func (e *Engine) ClaimCreatorFees(ctx context.Context, caller, id solana.PublicKey) (*ClaimResult, error) {
	const op = "launch.ClaimCreatorFees"
	l, err := e.resolve(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.enter(op); err != nil {
		return nil, err
	}
	defer l.exit()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	creator := l.FeeConfig.FactoryCreator
	if creator.IsZero() {
		return nil, shared.StateErrf(op, "launch %s has no factory creator", id)
	}
	if !caller.Equals(creator) {
		return nil, shared.StateErrf(op, "caller %s is not the factory creator", caller)
	}
	if l.CreatorQuoteFees.Sign() == 0 {
		return nil, shared.StateErrf(op, "launch %s has no creator fees to claim", id)
	}

	quote := new(big.Int).Set(l.CreatorQuoteFees)
	if err := e.payout(op, creator, l.QuoteMint, quote); err != nil {
		return nil, err
	}
	l.CreatorQuoteFees.SetInt64(0)

	e.logger.Info("creator fees claimed",
		zap.Stringer("launch", id),
		zap.String("quote", quote.String()),
	)
	return &ClaimResult{
		LaunchID:    id,
		Receiver:    creator,
		QuoteAmount: quote,
		TokenAmount: new(big.Int),
	}, nil
}

// payout credits the receiver's vault balance, skipping empty buckets.
func (e *Engine) payout(op string, receiver, currency solana.PublicKey, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if e.vault == nil {
		return shared.SettlementErrf(op, "no vault wired")
	}
	if err := e.vault.Deposit(receiver, currency, amount); err != nil {
		return shared.WrapErr(shared.KindSettlement, op, "fee payout", err)
	}
	return nil
}
