package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a generation job.
type JobStatus string

// Possible job status values. Pending and processing are active states;
// completed and failed are terminal.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation errors for GenerationJob.
var (
	ErrEmptyJobID           = errors.New("job ID cannot be empty")
	ErrEmptyJobOwnerID      = errors.New("job owner ID cannot be empty")
	ErrInvalidJobStatus     = errors.New("invalid job status")
	ErrIllegalJobTransition = errors.New("illegal job status transition")
)

// GenerationResult summarizes a completed generation run. The three
// counters are the contract; Message is presentation only.
type GenerationResult struct {
	QuestionsGenerated        int    `json:"questionsGenerated"`
	DuplicatesSkipped         int    `json:"duplicatesSkipped"`
	ExistingDuplicatesCleaned int    `json:"existingDuplicatesCleaned"`
	Message                   string `json:"message"`
}

// GenerationJob tracks one asynchronous question-generation attempt for a
// user. Only the orchestration task mutates it after creation; Result is
// set exactly once on completion and Error exactly once on failure.
type GenerationJob struct {
	ID          uuid.UUID         `json:"id"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	Status      JobStatus         `json:"status"`
	Result      *GenerationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewGenerationJob creates a pending job for the given owner.
func NewGenerationJob(ownerID uuid.UUID) (*GenerationJob, error) {
	job := &GenerationJob{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks that the GenerationJob has valid data.
func (j *GenerationJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.OwnerID == uuid.Nil {
		return ErrEmptyJobOwnerID
	}

	if !IsValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// IsActive reports whether the job still occupies the owner's single
// in-flight slot.
func (j *GenerationJob) IsActive() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}

// IsTerminal reports whether the job has reached a final state.
func (j *GenerationJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MarkProcessing claims the job for execution, transitioning pending to
// processing. Claiming a job already in processing is a no-op so that a
// crashed run can be resumed; terminal jobs cannot be claimed.
func (j *GenerationJob) MarkProcessing() error {
	if j.Status == JobStatusProcessing {
		return nil
	}
	if j.Status != JobStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalJobTransition, j.Status, JobStatusProcessing)
	}
	j.Status = JobStatusProcessing
	return nil
}

// Complete transitions the job from processing to completed and records
// the result. The result is immutable once set.
func (j *GenerationJob) Complete(result GenerationResult) error {
	if j.Status != JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalJobTransition, j.Status, JobStatusCompleted)
	}
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.Result = &result
	j.CompletedAt = &now
	return nil
}

// Fail transitions the job from processing to failed and records the
// error message. The message is immutable once set.
func (j *GenerationJob) Fail(message string) error {
	if j.Status != JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalJobTransition, j.Status, JobStatusFailed)
	}
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.Error = message
	j.CompletedAt = &now
	return nil
}

// IsValidJobStatus checks if the given status is a valid JobStatus.
func IsValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
