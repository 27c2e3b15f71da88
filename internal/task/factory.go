package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/generation"
)

// QuestionGenerationTaskFactory creates question generation tasks, both
// for fresh submissions and when rehydrating persisted task rows during
// crash recovery.
type QuestionGenerationTaskFactory struct {
	jobs       JobService
	profiles   ProfileReader
	generator  generation.Generator
	questions  QuestionWriter
	batchSize  int
	genTimeout time.Duration
	logger     *slog.Logger
}

// NewQuestionGenerationTaskFactory creates a factory with the shared
// dependencies every generation task needs.
func NewQuestionGenerationTaskFactory(
	jobs JobService,
	profiles ProfileReader,
	generator generation.Generator,
	questions QuestionWriter,
	batchSize int,
	genTimeout time.Duration,
	logger *slog.Logger,
) *QuestionGenerationTaskFactory {
	return &QuestionGenerationTaskFactory{
		jobs:       jobs,
		profiles:   profiles,
		generator:  generator,
		questions:  questions,
		batchSize:  batchSize,
		genTimeout: genTimeout,
		logger:     logger,
	}
}

// CreateTask builds a new generation task for the given job and owner.
func (f *QuestionGenerationTaskFactory) CreateTask(jobID, ownerID uuid.UUID) (Task, error) {
	return NewQuestionGenerationTask(
		jobID,
		ownerID,
		f.jobs,
		f.profiles,
		f.generator,
		f.questions,
		f.batchSize,
		f.genTimeout,
		f.logger,
	)
}

// HydrateTask reconstructs an executable task from a persisted row. It
// is wired into the runner as its Hydrator.
func (f *QuestionGenerationTaskFactory) HydrateTask(record TaskRecord) (Task, error) {
	if record.Type != TaskTypeQuestionGeneration {
		return nil, fmt.Errorf("unknown task type: %s", record.Type)
	}

	var payload questionGenerationPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	task, err := f.CreateTask(payload.JobID, payload.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild task: %w", err)
	}

	// Preserve the identity of the original row so status updates land on it.
	qt := task.(*QuestionGenerationTask)
	qt.id = record.ID
	qt.status = record.Status

	return qt, nil
}
