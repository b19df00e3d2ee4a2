// Package service holds the lifecycle engines and the data services around
// them. Every operation takes the caller's Principal explicitly.
package service

import (
	"context"

	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EventPublisher receives lifecycle events after their transaction committed
type EventPublisher interface {
	Dispatch(ctx context.Context, evt *event.Event) error
}

// IdentityLookup resolves a user by ID. A missing user yields (nil, nil).
type IdentityLookup interface {
	GetIdentity(ctx context.Context, id int64) (*entity.User, error)
}

// publish hands committed events to the publisher on one correlation chain.
// A failing subscriber never undoes the committed write, so errors are only logged.
func publish(ctx context.Context, events EventPublisher, logger Logger, evts ...*event.Event) {
	if events == nil {
		return
	}
	event.Correlate(evts...)
	for _, evt := range evts {
		if err := events.Dispatch(ctx, evt); err != nil {
			logger.Error("Failed to publish event",
				"event_type", evt.Type,
				"entity_id", evt.EntityID,
				"error", err,
			)
		}
	}
}

// pageLimits clamps caller-supplied pagination
func pageLimits(limit, offset int) (int, int) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
