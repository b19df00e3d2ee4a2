// Package dispatcher delivers committed lifecycle events to in-process subscribers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/field-service/internal/domain/event"
)

// Dispatcher routes lifecycle events to subscribers in registration order
type Dispatcher interface {
	// Subscribe registers a named handler for the given event types.
	// With no types the handler receives every lifecycle event.
	Subscribe(name string, handler Handler, types ...event.Type)

	// Dispatch runs the subscribers of evt.Type and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// Close rejects further dispatches
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	mu            sync.RWMutex
	subscriptions map[event.Type][]subscription
	logger        Logger
	closed        atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		subscriptions: make(map[event.Type][]subscription),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(name string, handler Handler, types ...event.Type) {
	if len(types) == 0 {
		types = event.AllTypes()
	}

	d.mu.Lock()
	for _, eventType := range types {
		d.subscriptions[eventType] = append(d.subscriptions[eventType], subscription{name: name, handler: handler})
	}
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Info("Subscriber registered", "subscriber", name, "event_types", len(types))
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}

	d.mu.RLock()
	subs := d.subscriptions[evt.Type]
	d.mu.RUnlock()

	for _, sub := range subs {
		if err := d.deliver(ctx, evt, sub); err != nil {
			if d.logger != nil {
				d.logger.Error("Subscriber failed",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"subscriber", sub.name,
					"error", err,
				)
			}
			return fmt.Errorf("subscriber %s failed: %w", sub.name, err)
		}
	}

	return nil
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}
	if d.logger != nil {
		d.logger.Info("Dispatcher closed")
	}
	return nil
}

// deliver runs one subscriber and turns a panic into an error
func (d *eventDispatcher) deliver(ctx context.Context, evt *event.Event, sub subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()

	return sub.handler(ctx, evt)
}
