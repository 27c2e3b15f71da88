// Package events provides a minimal in-process event system used to
// decouple request handling from background task scheduling. A service
// emits a task request event; a handler turns it into a task and hands
// it to the runner.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event type identifiers.
const (
	// TaskRequestedEvent signals that a background task should be scheduled.
	TaskRequestedEvent = "task_requested"
)

// TaskRequestEvent carries the data needed to schedule a background task.
type TaskRequestEvent struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewTaskRequestEvent creates a TaskRequestEvent for the given task type,
// serializing the payload to JSON.
func NewTaskRequestEvent(taskType string, payload interface{}) (*TaskRequestEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &TaskRequestEvent{
		ID:      uuid.New(),
		Type:    taskType,
		Payload: data,
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes a single event. Returning an error means the
	// event could not be acted on; the emitter propagates it to the caller.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	// EmitEvent delivers the event to every registered handler.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error

	// RegisterHandler adds a handler for emitted events.
	RegisterHandler(handler EventHandler)
}
