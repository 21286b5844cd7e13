// Package events is the in-memory notification fabric of the launchpad.
// Trades, fees and graduations are published here so accounting and
// monitoring can observe the engine without being wired into it.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus fans events out to subscribed handlers. Publish queues the event for a
// background worker; PublishSync delivers on the caller's goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventType]map[string]Handler
	queue  chan Event
	logger *zap.Logger

	ctx      context.Context
	stop     context.CancelFunc
	inflight sync.WaitGroup
}

// NewBus starts a bus whose async queue holds bufferSize events. A nil logger
// disables logging.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	b := &Bus{
		subs:   make(map[EventType]map[string]Handler),
		queue:  make(chan Event, bufferSize),
		logger: logger.Named("event_bus"),
		ctx:    ctx,
		stop:   stop,
	}
	b.inflight.Add(1)
	go b.run()
	return b
}

// Subscribe registers a handler for one event type and returns a handle that
// removes it again.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	id := uuid.New().String()

	b.mu.Lock()
	byID := b.subs[eventType]
	if byID == nil {
		byID = make(map[string]Handler)
		b.subs[eventType] = byID
	}
	byID[id] = handler
	b.mu.Unlock()

	b.logger.Debug("handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
	return &subscription{id: id, bus: b, typ: eventType}
}

// SubscribeFunc subscribes a plain function.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// Publish queues an event for asynchronous delivery. A full queue drops the
// event rather than blocking the publisher.
func (b *Bus) Publish(event Event) error {
	select {
	case <-b.ctx.Done():
		return fmt.Errorf("event bus is shutting down")
	case b.queue <- event:
		return nil
	default:
		b.logger.Warn("event queue full, dropping event",
			zap.String("event_type", string(event.Type())))
		return fmt.Errorf("event queue full")
	}
}

// PublishSync delivers an event to every matching handler before returning.
// A failing handler does not stop delivery to the others; handler errors are
// reported together.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	type target struct {
		id      string
		handler Handler
	}
	b.mu.RLock()
	targets := make([]target, 0, len(b.subs[event.Type()]))
	for id, h := range b.subs[event.Type()] {
		targets = append(targets, target{id: id, handler: h})
	}
	b.mu.RUnlock()

	var failed []error
	for _, t := range targets {
		if err := t.handler.Handle(ctx, event); err != nil {
			b.logger.Error("handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("subscription_id", t.id),
				zap.Error(err))
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d handlers failed: %v", len(failed), len(targets), failed)
	}
	return nil
}

func (b *Bus) run() {
	defer b.inflight.Done()
	for {
		select {
		case <-b.ctx.Done():
			b.drain()
			return
		case event := <-b.queue:
			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				if err := b.PublishSync(b.ctx, event); err != nil {
					b.logger.Error("async delivery failed",
						zap.String("event_type", string(event.Type())),
						zap.Error(err))
				}
			}()
		}
	}
}

// drain delivers whatever is still queued at shutdown so no accepted event is
// lost.
func (b *Bus) drain() {
	for {
		select {
		case event := <-b.queue:
			_ = b.PublishSync(context.Background(), event)
		default:
			return
		}
	}
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	if byID, ok := b.subs[eventType]; ok {
		delete(byID, id)
		if len(byID) == 0 {
			delete(b.subs, eventType)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown stops accepting events, drains the queue and waits for in-flight
// deliveries, up to the context deadline.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.stop()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus shutdown timed out")
		return ctx.Err()
	}
}
