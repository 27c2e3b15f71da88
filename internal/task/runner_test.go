package task_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prept/prept-api/internal/task"
)

// memTaskStore is an in-memory task store for runner tests.
type memTaskStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]task.TaskRecord
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{records: make(map[uuid.UUID]task.TaskRecord)}
}

func (s *memTaskStore) SaveTask(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.records[t.ID()] = task.TaskRecord{
		ID:        t.ID(),
		Type:      t.Type(),
		Payload:   t.Payload(),
		Status:    t.Status(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *memTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[taskID]
	if !ok {
		return nil
	}
	record.Status = status
	record.ErrorMessage = errorMsg
	record.UpdatedAt = time.Now().UTC()
	s.records[taskID] = record
	return nil
}

func (s *memTaskStore) GetPendingTasks(_ context.Context) ([]task.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []task.TaskRecord
	for _, r := range s.records {
		if r.Status == task.TaskStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memTaskStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]task.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []task.TaskRecord
	for _, r := range s.records {
		if r.Status != task.TaskStatusProcessing {
			continue
		}
		if olderThan > 0 && r.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memTaskStore) WithTx(_ *sql.Tx) task.TaskStore { return s }

func (s *memTaskStore) status(taskID uuid.UUID) task.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[taskID].Status
}

func (s *memTaskStore) seed(record task.TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

// stubTask executes a function and signals completion on a channel.
type stubTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
	done    chan struct{}
}

func newStubTask(execute func(ctx context.Context) error) *stubTask {
	return &stubTask{
		id:      uuid.New(),
		execute: execute,
		done:    make(chan struct{}),
	}
}

func (t *stubTask) ID() uuid.UUID           { return t.id }
func (t *stubTask) Type() string            { return "stub" }
func (t *stubTask) Status() task.TaskStatus { return task.TaskStatusPending }

func (t *stubTask) Payload() []byte {
	b, _ := json.Marshal(map[string]string{"id": t.id.String()})
	return b
}

func (t *stubTask) Execute(ctx context.Context) error {
	defer close(t.done)
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func (t *stubTask) waitDone(tb testing.TB) {
	tb.Helper()
	select {
	case <-t.done:
	case <-time.After(5 * time.Second):
		tb.Fatal("timed out waiting for task to execute")
	}
}

func testRunnerConfig() task.TaskRunnerConfig {
	return task.TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              10,
		StuckTaskAge:           time.Hour,
		StuckTaskCheckInterval: time.Hour,
	}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, nil))
}

func TestTaskRunner_SubmitAndProcess(t *testing.T) {
	store := newMemTaskStore()
	runner := task.NewTaskRunner(store, nil, testRunnerConfig(), testLogger(t))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	stub := newStubTask(nil)
	require.NoError(t, runner.Submit(context.Background(), stub))

	stub.waitDone(t)

	assert.Eventually(t, func() bool {
		return store.status(stub.id) == task.TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond, "task row should end up completed")
}

func TestTaskRunner_FailedTaskMarkedFailed(t *testing.T) {
	store := newMemTaskStore()
	runner := task.NewTaskRunner(store, nil, testRunnerConfig(), testLogger(t))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	stub := newStubTask(func(context.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, runner.Submit(context.Background(), stub))

	stub.waitDone(t)

	assert.Eventually(t, func() bool {
		return store.status(stub.id) == task.TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond, "task row should end up failed")
}

func TestTaskRunner_QueueFull(t *testing.T) {
	store := newMemTaskStore()
	cfg := testRunnerConfig()
	cfg.WorkerCount = 0
	cfg.QueueSize = 1
	runner := task.NewTaskRunner(store, nil, cfg, testLogger(t))
	// Not started: nothing drains the queue.

	require.NoError(t, runner.Submit(context.Background(), newStubTask(nil)))

	err := runner.Submit(context.Background(), newStubTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestTaskRunner_RecoveryRequeuesViaHydrator(t *testing.T) {
	store := newMemTaskStore()

	pendingID := uuid.New()
	processingID := uuid.New()
	store.seed(task.TaskRecord{
		ID:      pendingID,
		Type:    "stub",
		Status:  task.TaskStatusPending,
		Payload: []byte(`{}`),
	})
	store.seed(task.TaskRecord{
		ID:      processingID,
		Type:    "stub",
		Status:  task.TaskStatusProcessing,
		Payload: []byte(`{}`),
	})

	var mu sync.Mutex
	executed := make(map[uuid.UUID]bool)
	hydrator := func(record task.TaskRecord) (task.Task, error) {
		stub := newStubTask(nil)
		stub.id = record.ID
		stub.execute = func(context.Context) error {
			mu.Lock()
			executed[record.ID] = true
			mu.Unlock()
			return nil
		}
		return stub, nil
	}

	runner := task.NewTaskRunner(store, hydrator, testRunnerConfig(), testLogger(t))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return executed[pendingID] && executed[processingID]
	}, 5*time.Second, 10*time.Millisecond, "both recovered tasks should run")
}

func TestTaskRunner_RecoveryUnknownTypeMarkedFailed(t *testing.T) {
	store := newMemTaskStore()

	badID := uuid.New()
	store.seed(task.TaskRecord{
		ID:      badID,
		Type:    "mystery",
		Status:  task.TaskStatusPending,
		Payload: []byte(`{}`),
	})

	hydrator := func(record task.TaskRecord) (task.Task, error) {
		return nil, errors.New("unknown task type: " + record.Type)
	}

	runner := task.NewTaskRunner(store, hydrator, testRunnerConfig(), testLogger(t))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return store.status(badID) == task.TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond, "unhydratable task should be marked failed")
}
