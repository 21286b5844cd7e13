package events

import (
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/shared"
)

// EventType represents the type of event.
type EventType string

const (
	LaunchCreated     EventType = "launch.created"
	LaunchActivated   EventType = "launch.activated"
	TradeExecuted     EventType = "trade.executed"
	FeePaid           EventType = "fee.paid"
	LaunchGraduated   EventType = "launch.graduated"
	LiquidityDeployed EventType = "liquidity.deployed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func NewBaseEvent(eventType EventType, at time.Time) BaseEvent {
	return BaseEvent{EventType: eventType, EventTime: at}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// LaunchCreatedEvent is emitted when a launch is registered.
type LaunchCreatedEvent struct {
	BaseEvent
	LaunchID solana.PublicKey
	Owner    solana.PublicKey
	BaseMint solana.PublicKey
}

// LaunchActivatedEvent is emitted when bonding opens for trading.
type LaunchActivatedEvent struct {
	BaseEvent
	LaunchID     solana.PublicKey
	OpenTime     time.Time
	MaturityTime time.Time
}

// TradeExecutedEvent is emitted after every successful buy or sell.
type TradeExecutedEvent struct {
	BaseEvent
	LaunchID  solana.PublicKey
	Trader    solana.PublicKey
	Direction shared.TradeDirection
	Amount    *big.Int // token units traded
	Value     *big.Int // quote units moved through the reserve
	TotalSold *big.Int
}

// FeePaidEvent is emitted whenever a fee is charged, with the payer and the
// fee kind so downstream accounting can attribute it.
type FeePaidEvent struct {
	BaseEvent
	LaunchID solana.PublicKey
	Payer    solana.PublicKey
	Kind     shared.FeeKind
	Amount   *big.Int
}

// LaunchGraduatedEvent is emitted when a launch leaves the curve.
type LaunchGraduatedEvent struct {
	BaseEvent
	LaunchID      solana.PublicKey
	PoolID        solana.PublicKey
	Reserve       *big.Int
	EthForPool    *big.Int
	TokensForPool *big.Int
}

// LiquidityDeployedEvent is emitted once the pool position is funded.
type LiquidityDeployedEvent struct {
	BaseEvent
	LaunchID   solana.PublicKey
	PoolID     solana.PublicKey
	PositionID solana.PublicKey
	Liquidity  *big.Int
}
