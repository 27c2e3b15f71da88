package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/dedup"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/generation"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// JobService covers the generation-job transitions the task drives. The
// service enforces state machine legality; the task only reports outcomes.
type JobService interface {
	// MarkJobProcessing claims the job for this run. Claiming succeeds
	// for pending and processing jobs; terminal jobs cannot be claimed.
	MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error

	// CompleteJob moves the job to completed with the given result.
	CompleteJob(ctx context.Context, jobID uuid.UUID, result domain.GenerationResult) error

	// FailJob moves the job to failed with the given error message.
	FailJob(ctx context.Context, jobID uuid.UUID, message string) error
}

// ProfileReader provides the profile data that drives generation.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// QuestionWriter covers the question persistence the task needs: the
// active corpus for duplicate detection, cleanup of duplicates already in
// the corpus, and saving the new batch.
type QuestionWriter interface {
	// CleanupExisting deactivates duplicates already present in the
	// owner's active corpus, keeping the oldest of each group. Returns
	// the number of questions deactivated.
	CleanupExisting(ctx context.Context, ownerID uuid.UUID) (int, error)

	// ActiveTexts returns the text of every active question the owner has.
	ActiveTexts(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// SaveBatch persists a batch of freshly generated questions.
	SaveBatch(ctx context.Context, questions []*domain.Question) error
}

// questionGenerationPayload is the persisted form of a generation task.
type questionGenerationPayload struct {
	JobID   uuid.UUID `json:"job_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// QuestionGenerationTask generates a batch of interview questions for one
// user: it marks the job processing, loads the profile, calls the
// generator, cleans up pre-existing duplicates, filters the new batch
// against the active corpus, saves the survivors and completes the job.
// Any failure marks the job failed with a user-facing message.
type QuestionGenerationTask struct {
	id         uuid.UUID
	jobID      uuid.UUID
	ownerID    uuid.UUID
	jobs       JobService
	profiles   ProfileReader
	generator  generation.Generator
	questions  QuestionWriter
	batchSize  int
	genTimeout time.Duration
	logger     *slog.Logger
	status     TaskStatus
}

// NewQuestionGenerationTask creates a task that runs one generation job.
func NewQuestionGenerationTask(
	jobID uuid.UUID,
	ownerID uuid.UUID,
	jobs JobService,
	profiles ProfileReader,
	generator generation.Generator,
	questions QuestionWriter,
	batchSize int,
	genTimeout time.Duration,
	logger *slog.Logger,
) (*QuestionGenerationTask, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("job ID cannot be nil")
	}
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID cannot be nil")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job service cannot be nil")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile reader cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if questions == nil {
		return nil, fmt.Errorf("question writer cannot be nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if genTimeout <= 0 {
		return nil, fmt.Errorf("generation timeout must be positive")
	}

	return &QuestionGenerationTask{
		id:         uuid.New(),
		jobID:      jobID,
		ownerID:    ownerID,
		jobs:       jobs,
		profiles:   profiles,
		generator:  generator,
		questions:  questions,
		batchSize:  batchSize,
		genTimeout: genTimeout,
		logger:     logger.With("task_type", TaskTypeQuestionGeneration),
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *QuestionGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *QuestionGenerationTask) Type() string {
	return TaskTypeQuestionGeneration
}

// Payload returns the serialized task data for persistence.
func (t *QuestionGenerationTask) Payload() []byte {
	payload := questionGenerationPayload{
		JobID:   t.jobID,
		OwnerID: t.ownerID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshaling two UUIDs cannot fail.
		t.logger.Error("failed to marshal task payload", "error", err)
		return nil
	}

	return data
}

// Status returns the current task status.
func (t *QuestionGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the generation pipeline for the task's job. The returned
// error is for the task runner's bookkeeping; the job itself is always
// moved to a terminal state here before returning.
func (t *QuestionGenerationTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger).With(
		"job_id", t.jobID,
		"owner_id", t.ownerID,
	)

	log.Info("starting question generation")
	t.status = TaskStatusProcessing

	if err := t.jobs.MarkJobProcessing(ctx, t.jobID); err != nil {
		// The job is not ours to fail if we never owned it.
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to mark job as processing: %w", err)
	}

	result, err := t.run(ctx, log)
	if err != nil {
		log.Error("question generation failed", "error", err)
		t.failJob(ctx, log, userFacingMessage(err))
		t.status = TaskStatusFailed
		return err
	}

	if err := t.jobs.CompleteJob(ctx, t.jobID, *result); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Info("question generation completed",
		"questions_generated", result.QuestionsGenerated,
		"duplicates_skipped", result.DuplicatesSkipped,
		"existing_duplicates_cleaned", result.ExistingDuplicatesCleaned)

	t.status = TaskStatusCompleted
	return nil
}

// run performs the generation steps and builds the result summary.
func (t *QuestionGenerationTask) run(ctx context.Context, log *slog.Logger) (*domain.GenerationResult, error) {
	profile, err := t.profiles.GetProfile(ctx, t.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, t.genTimeout)
	defer cancel()

	generated, err := t.generator.GenerateQuestions(genCtx, profile, t.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	log.Debug("received generated questions", "count", len(generated))

	cleaned, err := t.questions.CleanupExisting(ctx, t.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to clean up existing duplicates: %w", err)
	}

	texts, err := t.questions.ActiveTexts(ctx, t.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active question texts: %w", err)
	}

	existing := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		existing[text] = struct{}{}
	}

	unique, duplicates := dedup.Partition(existing, generated)

	if len(duplicates) > 0 {
		log.Debug("skipping duplicate questions", "count", len(duplicates))
	}

	if len(unique) > 0 {
		if err := t.questions.SaveBatch(ctx, unique); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
	}

	saved := len(unique)
	skipped := len(duplicates)

	return &domain.GenerationResult{
		QuestionsGenerated:        saved,
		DuplicatesSkipped:         skipped,
		ExistingDuplicatesCleaned: cleaned,
		Message:                   resultMessage(saved, skipped, cleaned),
	}, nil
}

// failJob moves the job to failed, logging rather than returning any
// error from the transition itself.
func (t *QuestionGenerationTask) failJob(ctx context.Context, log *slog.Logger, message string) {
	if err := t.jobs.FailJob(ctx, t.jobID, message); err != nil {
		log.Error("failed to mark job as failed", "error", err)
	}
}

// userFacingMessage maps a pipeline error to the message stored on the
// failed job. Known conditions get an actionable message; anything else
// keeps the underlying error verbatim so the failure stays diagnosable
// from the job record alone.
func userFacingMessage(err error) string {
	switch {
	case store.IsNotFoundError(err):
		return "profile not found, complete your profile before generating questions"
	case errors.Is(err, context.DeadlineExceeded):
		return "question generation timed out, please try again"
	case errors.Is(err, generation.ErrContentBlocked):
		return "question generation was blocked by content filters"
	case errors.Is(err, generation.ErrInvalidResponse):
		return "the question generator returned an unusable response, please try again"
	default:
		return "question generation failed: " + err.Error()
	}
}

// resultMessage builds the human-readable summary for a completed job.
func resultMessage(saved, skipped, cleaned int) string {
	msg := fmt.Sprintf("Generated %d new questions", saved)
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d duplicates", skipped)
	}
	if cleaned > 0 {
		msg += fmt.Sprintf(", cleaned up %d existing duplicates", cleaned)
	}
	return msg + "."
}
