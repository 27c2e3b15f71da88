package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
)

// GenerationJobStore defines the interface for generation job persistence.
// Status transitions are guarded at the database level: an update that
// would violate the pending → processing → {completed, failed} path
// affects no rows and surfaces domain.ErrIllegalJobTransition.
type GenerationJobStore interface {
	// Create saves a new pending job. A partial unique index on
	// (owner_id) over active statuses backs the one-active-job-per-user
	// invariant; a violating insert returns ErrActiveJobExists.
	Create(ctx context.Context, job *domain.GenerationJob) error

	// GetByID retrieves a job by ID.
	// Returns ErrJobNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error)

	// GetLatestByOwner retrieves the owner's most recently created job.
	// Returns ErrJobNotFound when the owner has no jobs.
	GetLatestByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error)

	// MarkProcessing claims a job for execution, transitioning pending to
	// processing. Claiming a job already in processing succeeds so a
	// recovered run can resume it; terminal jobs cannot be claimed.
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// Complete transitions a processing job to completed and records the
	// result. The result is never overwritten afterwards.
	Complete(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error

	// Fail transitions a processing job to failed and records the error
	// message. The message is never overwritten afterwards.
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// DeleteTerminalBefore removes completed and failed jobs created
	// before the cutoff and reports how many were removed. Active jobs
	// are never touched.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a GenerationJobStore bound to the given transaction.
	WithTx(tx *sql.Tx) GenerationJobStore
}
