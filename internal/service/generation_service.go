package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/events"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
	"github.com/prept/prept-api/internal/task"
)

// GenerationService manages the lifecycle of question generation jobs.
type GenerationService interface {
	// RequestGeneration starts a generation job for the owner. When the
	// owner already has an active job, it returns that job together with
	// ErrActiveJobExists instead of creating a new one.
	RequestGeneration(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error)

	// GetLatestJob returns the owner's most recent job, of any status.
	// Returns store.ErrJobNotFound when the owner never ran a generation.
	GetLatestJob(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error)

	// GetJob returns a job by ID, enforcing ownership.
	GetJob(ctx context.Context, jobID, ownerID uuid.UUID) (*domain.GenerationJob, error)
}

// generationServiceImpl implements GenerationService.
type generationServiceImpl struct {
	db           *sql.DB
	jobs         store.GenerationJobStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	db *sql.DB,
	jobs store.GenerationJobStore,
	eventEmitter events.EventEmitter,
	log *slog.Logger,
) (GenerationService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if jobs == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "job store cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "event emitter cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	return &generationServiceImpl{
		db:           db,
		jobs:         jobs,
		eventEmitter: eventEmitter,
		logger:       log.With("component", "generation_service"),
	}, nil
}

// RequestGeneration creates a pending job and emits the task request
// event that schedules the background run.
func (s *generationServiceImpl) RequestGeneration(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	job, err := domain.NewGenerationJob(ownerID)
	if err != nil {
		return nil, NewServiceError("request_generation", "failed to create job", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.jobs.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		// The partial unique index is the arbiter: two concurrent
		// requests both reach here, exactly one insert wins.
		if errors.Is(err, store.ErrActiveJobExists) {
			existing, getErr := s.jobs.GetLatestByOwner(ctx, ownerID)
			if getErr != nil {
				return nil, NewServiceError("request_generation", "failed to load existing job", getErr)
			}
			log.Info("generation already in progress",
				"owner_id", ownerID,
				"existing_job_id", existing.ID)
			return existing, ErrActiveJobExists
		}
		return nil, NewServiceError("request_generation", "failed to save job", err)
	}

	log.Info("generation job created", "job_id", job.ID, "owner_id", ownerID)

	payload := struct {
		JobID   uuid.UUID `json:"job_id"`
		OwnerID uuid.UUID `json:"owner_id"`
	}{
		JobID:   job.ID,
		OwnerID: ownerID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeQuestionGeneration, payload)
	if err != nil {
		s.abandonJob(ctx, log, job.ID)
		return nil, NewServiceError("request_generation", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit generation event",
			"job_id", job.ID,
			"owner_id", ownerID,
			"error", err)
		s.abandonJob(ctx, log, job.ID)
		return nil, NewServiceError("request_generation", "failed to schedule generation", err)
	}

	return job, nil
}

// abandonJob moves a job that will never be picked up to failed, freeing
// the owner's active slot.
func (s *generationServiceImpl) abandonJob(ctx context.Context, log *slog.Logger, jobID uuid.UUID) {
	if err := s.jobs.MarkProcessing(ctx, jobID); err != nil {
		log.Error("failed to mark abandoned job processing", "job_id", jobID, "error", err)
		return
	}
	if err := s.jobs.Fail(ctx, jobID, "failed to enqueue generation task"); err != nil {
		log.Error("failed to fail abandoned job", "job_id", jobID, "error", err)
	}
}

// GetLatestJob returns the owner's most recent job.
func (s *generationServiceImpl) GetLatestJob(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error) {
	job, err := s.jobs.GetLatestByOwner(ctx, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_latest_job", "failed to load job", err)
	}
	return job, nil
}

// GetJob returns a job by ID, enforcing ownership.
func (s *generationServiceImpl) GetJob(ctx context.Context, jobID, ownerID uuid.UUID) (*domain.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_job", "failed to load job", err)
	}

	if job.OwnerID != ownerID {
		return nil, ErrNotOwned
	}

	return job, nil
}
