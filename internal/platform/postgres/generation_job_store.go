package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// PostgresGenerationJobStore implements store.GenerationJobStore using
// PostgreSQL. Status transitions use guarded UPDATEs whose WHERE clause
// includes the expected current status, so an illegal transition affects
// zero rows regardless of interleaving.
type PostgresGenerationJobStore struct {
	db store.DBTX
}

// NewPostgresGenerationJobStore creates a new PostgresGenerationJobStore.
func NewPostgresGenerationJobStore(db store.DBTX) *PostgresGenerationJobStore {
	return &PostgresGenerationJobStore{db: db}
}

// WithTx returns a GenerationJobStore bound to the given transaction.
func (s *PostgresGenerationJobStore) WithTx(tx *sql.Tx) store.GenerationJobStore {
	return &PostgresGenerationJobStore{db: tx}
}

// Create saves a new pending job. The generation_jobs_one_active_per_owner
// partial unique index rejects a second active job for the same owner.
func (s *PostgresGenerationJobStore) Create(ctx context.Context, job *domain.GenerationJob) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO generation_jobs (id, owner_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "generation_jobs_one_active_per_owner") {
			return store.ErrActiveJobExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create generation job",
			"job_id", job.ID,
			"owner_id", job.OwnerID,
			"error", err)
		return fmt.Errorf("failed to create generation job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by ID.
func (s *PostgresGenerationJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	query := `
		SELECT id, owner_id, status, result, error_message, created_at, completed_at
		FROM generation_jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrJobNotFound, "failed to get generation job")
	}

	return job, nil
}

// GetLatestByOwner retrieves the owner's most recently created job.
func (s *PostgresGenerationJobStore) GetLatestByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error) {
	query := `
		SELECT id, owner_id, status, result, error_message, created_at, completed_at
		FROM generation_jobs
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrJobNotFound, "failed to get latest generation job")
	}

	return job, nil
}

// MarkProcessing claims a job for execution, transitioning pending to
// processing. A job already in processing is claimed again: a task
// re-run after a crash or a stuck-task reset finds the job mid-flight
// and must still be able to drive it to a terminal state. Terminal jobs
// cannot be claimed.
func (s *PostgresGenerationJobStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE generation_jobs
		SET status = $1
		WHERE id = $2 AND status IN ($3, $4)
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusProcessing,
		id,
		domain.JobStatusPending,
		domain.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to mark generation job processing: %w", err)
	}

	return s.checkTransition(ctx, result, id, domain.JobStatusProcessing)
}

// Complete transitions a processing job to completed and records the
// result.
func (s *PostgresGenerationJobStore) Complete(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal generation result: %w", err)
	}

	query := `
		UPDATE generation_jobs
		SET status = $1, result = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		domain.JobStatusCompleted,
		resultJSON,
		time.Now().UTC(),
		id,
		domain.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete generation job: %w", err)
	}

	return s.checkTransition(ctx, res, id, domain.JobStatusCompleted)
}

// Fail transitions a processing job to failed and records the error
// message.
func (s *PostgresGenerationJobStore) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE generation_jobs
		SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		domain.JobStatusFailed,
		message,
		time.Now().UTC(),
		id,
		domain.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to fail generation job: %w", err)
	}

	return s.checkTransition(ctx, res, id, domain.JobStatusFailed)
}

// DeleteTerminalBefore removes completed and failed jobs created before
// the cutoff.
func (s *PostgresGenerationJobStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM generation_jobs
		WHERE status IN ($1, $2) AND created_at < $3
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old generation jobs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// checkTransition distinguishes a missing job from an illegal transition
// when a guarded UPDATE affects no rows.
func (s *PostgresGenerationJobStore) checkTransition(
	ctx context.Context,
	result sql.Result,
	id uuid.UUID,
	target domain.JobStatus,
) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		return nil
	}

	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalJobTransition, job.Status, target)
}

// scanJob reads one generation job from a row.
func scanJob(row *sql.Row) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var resultJSON []byte
	var errorMessage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Status,
		&resultJSON,
		&errorMessage,
		&job.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultJSON) > 0 {
		var result domain.GenerationResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generation result: %w", err)
		}
		job.Result = &result
	}

	job.Error = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}

	return &job, nil
}
