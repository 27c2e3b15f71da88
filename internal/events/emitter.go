package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prept/prept-api/internal/platform/logger"
)

// InMemoryEventEmitter delivers events synchronously to registered
// handlers within the same process. Delivery is in registration order;
// the first handler error aborts delivery and is returned to the caller
// so it can react (for a task request, by failing the associated job).
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers registered.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "event_emitter"),
	}
}

// RegisterHandler adds a handler for emitted events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent delivers the event to every registered handler.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger)

	if len(handlers) == 0 {
		log.Warn("event emitted with no registered handlers",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			return fmt.Errorf("event handler failed for event %s: %w", event.ID, err)
		}
	}

	return nil
}
