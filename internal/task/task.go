package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a background task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type identifiers.
const (
	// TaskTypeQuestionGeneration identifies tasks that generate interview
	// questions for a user.
	TaskTypeQuestionGeneration = "question_generation"
)

// Task represents a unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data serialized for persistence.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskRecord is a task row loaded from persistence. Records are hydrated
// back into executable Tasks during crash recovery.
type TaskRecord struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hydrator reconstructs an executable Task from a persisted record.
// It returns an error for unknown task types or malformed payloads.
type Hydrator func(record TaskRecord) (Task, error)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// SaveTask persists a new task row.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates a task's status and error message.
	// A missing task is treated as a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with pending status.
	GetPendingTasks(ctx context.Context) ([]TaskRecord, error)

	// GetProcessingTasks retrieves tasks with processing status. When
	// olderThan is non-zero only tasks that have been processing longer
	// than that duration are returned.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]TaskRecord, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
