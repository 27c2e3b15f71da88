package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prept/prept-api/internal/events"
	"github.com/prept/prept-api/internal/platform/logger"
)

// TaskRequestHandler turns task request events into executable tasks and
// submits them to the runner.
type TaskRequestHandler struct {
	factory *QuestionGenerationTaskFactory
	runner  *TaskRunner
	logger  *slog.Logger
}

// NewTaskRequestHandler creates a handler wired to the given factory and
// runner.
func NewTaskRequestHandler(factory *QuestionGenerationTaskFactory, runner *TaskRunner, logger *slog.Logger) *TaskRequestHandler {
	return &TaskRequestHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_request_handler"),
	}
}

// HandleEvent builds the task described by the event and submits it.
func (h *TaskRequestHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if event.Type != TaskTypeQuestionGeneration {
		log.Debug("ignoring event of unrelated type",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var payload questionGenerationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	task, err := h.factory.CreateTask(payload.JobID, payload.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task submitted",
		"task_id", task.ID(),
		"job_id", payload.JobID,
		"owner_id", payload.OwnerID)

	return nil
}
