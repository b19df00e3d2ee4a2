package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	EntityID      int64                  `json:"entity_id"`
	ActorID       int64                  `json:"actor_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp.
// EntityID is the request or task the event is about. The event starts its
// own correlation chain.
func NewEvent(eventType Type, entityID, actorID int64, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		EntityID:      entityID,
		ActorID:       actorID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// Correlate puts events raised by one operation on the chain of the first
func Correlate(evts ...*Event) {
	if len(evts) < 2 {
		return
	}
	for _, evt := range evts[1:] {
		evt.CorrelationID = evts[0].CorrelationID
	}
}
