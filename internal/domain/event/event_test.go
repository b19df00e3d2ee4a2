package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestType_IsValid(t *testing.T) {
	for _, typ := range AllTypes() {
		if !typ.IsValid() {
			t.Errorf("Type(%q).IsValid() = false, want true", typ)
		}
	}

	invalid := []Type{"unknown.type", "", "instance.created"}
	for _, typ := range invalid {
		if typ.IsValid() {
			t.Errorf("Type(%q).IsValid() = true, want false", typ)
		}
	}
}

func TestType_String(t *testing.T) {
	if got := TypeTaskCompleted.String(); got != "task.completed" {
		t.Errorf("Type.String() = %v, want %v", got, "task.completed")
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"from": "assigned",
		"to":   "in_progress",
	}

	evt := NewEvent(TypeTaskStatusChanged, 12, 4, payload)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, TypeTaskStatusChanged, evt.Type)
	assert.Equal(t, int64(12), evt.EntityID)
	assert.Equal(t, int64(4), evt.ActorID)
	assert.Equal(t, "in_progress", evt.Payload["to"])
	assert.Equal(t, evt.ID, evt.CorrelationID)
	assert.WithinDuration(t, time.Now(), evt.Timestamp, time.Second)

	assert.NotEqual(t, evt.ID, NewEvent(TypeTaskStatusChanged, 12, 4, nil).ID)
}

func TestCorrelate(t *testing.T) {
	status := NewEvent(TypeTaskStatusChanged, 20, 3, nil)
	completed := NewEvent(TypeTaskCompleted, 20, 3, nil)
	cascade := NewEvent(TypeRequestCompleted, 10, 3, nil)

	Correlate(status, completed, cascade)

	assert.Equal(t, status.ID, status.CorrelationID)
	assert.Equal(t, status.ID, completed.CorrelationID)
	assert.Equal(t, status.ID, cascade.CorrelationID)
	assert.NotEqual(t, status.ID, cascade.ID)

	single := NewEvent(TypeRequestRated, 10, 2, nil)
	Correlate(single)
	Correlate()
	assert.Equal(t, single.ID, single.CorrelationID)
}
