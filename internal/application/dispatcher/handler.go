package dispatcher

import (
	"context"

	"github.com/garyjia/field-service/internal/domain/event"
)

// Handler processes lifecycle events
type Handler func(ctx context.Context, evt *event.Event) error

type subscription struct {
	name    string
	handler Handler
}

// LoggingHandler records every lifecycle event it receives
func LoggingHandler(logger Logger) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		kv := []interface{}{
			"event_type", evt.Type,
			"event_id", evt.ID,
			"correlation_id", evt.CorrelationID,
			"entity_id", evt.EntityID,
			"actor_id", evt.ActorID,
		}
		for k, v := range evt.Payload {
			kv = append(kv, k, v)
		}
		logger.Info("Lifecycle event", kv...)
		return nil
	}
}
