package task_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/store"
	"github.com/prept/prept-api/internal/task"
)

// fakeJobService records job transitions for assertions.
type fakeJobService struct {
	markProcessingErr error
	completeErr       error

	processingCalls []uuid.UUID
	completed       map[uuid.UUID]domain.GenerationResult
	failed          map[uuid.UUID]string
}

func newFakeJobService() *fakeJobService {
	return &fakeJobService{
		completed: make(map[uuid.UUID]domain.GenerationResult),
		failed:    make(map[uuid.UUID]string),
	}
}

func (f *fakeJobService) MarkJobProcessing(_ context.Context, jobID uuid.UUID) error {
	if f.markProcessingErr != nil {
		return f.markProcessingErr
	}
	f.processingCalls = append(f.processingCalls, jobID)
	return nil
}

func (f *fakeJobService) CompleteJob(_ context.Context, jobID uuid.UUID, result domain.GenerationResult) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed[jobID] = result
	return nil
}

func (f *fakeJobService) FailJob(_ context.Context, jobID uuid.UUID, message string) error {
	f.failed[jobID] = message
	return nil
}

type fakeProfileReader struct {
	profile *domain.Profile
	err     error
}

func (f *fakeProfileReader) GetProfile(_ context.Context, _ uuid.UUID) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

// fakeGenerator returns canned questions, optionally blocking until the
// context is cancelled to simulate a slow backend.
type fakeGenerator struct {
	questions []*domain.Question
	err       error
	block     bool
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, _ *domain.Profile, _ int) ([]*domain.Question, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeQuestionWriter struct {
	cleanedCount int
	cleanupErr   error
	activeTexts  []string
	saveErr      error

	savedBatches [][]*domain.Question
}

func (f *fakeQuestionWriter) CleanupExisting(_ context.Context, _ uuid.UUID) (int, error) {
	if f.cleanupErr != nil {
		return 0, f.cleanupErr
	}
	return f.cleanedCount, nil
}

func (f *fakeQuestionWriter) ActiveTexts(_ context.Context, _ uuid.UUID) ([]string, error) {
	return f.activeTexts, nil
}

func (f *fakeQuestionWriter) SaveBatch(_ context.Context, questions []*domain.Question) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedBatches = append(f.savedBatches, questions)
	return nil
}

func mustQuestion(t *testing.T, ownerID uuid.UUID, text string) *domain.Question {
	t.Helper()
	q, err := domain.NewQuestion(ownerID, text, domain.CategoryTechnical, domain.DifficultyAdvanced)
	require.NoError(t, err)
	return q
}

func testProfile(t *testing.T, userID uuid.UUID) *domain.Profile {
	t.Helper()
	p, err := domain.NewProfile(userID, "Backend Engineer", 5, []string{"Go", "PostgreSQL"}, "Become a staff engineer")
	require.NoError(t, err)
	return p
}

func newTestTask(
	t *testing.T,
	jobID, ownerID uuid.UUID,
	jobs task.JobService,
	profiles task.ProfileReader,
	gen *fakeGenerator,
	writer *fakeQuestionWriter,
	timeout time.Duration,
) *task.QuestionGenerationTask {
	t.Helper()
	tk, err := task.NewQuestionGenerationTask(
		jobID, ownerID, jobs, profiles, gen, writer, 20, timeout,
		slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	)
	require.NoError(t, err)
	return tk
}

// testWriter routes log output through the test log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestQuestionGenerationTask_Success(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{questions: []*domain.Question{
		mustQuestion(t, ownerID, "Explain how Go channels work."),
		mustQuestion(t, ownerID, "What is a goroutine leak?"),
		mustQuestion(t, ownerID, "Describe index-only scans in PostgreSQL."),
	}}
	writer := &fakeQuestionWriter{
		cleanedCount: 2,
		// Matches the second candidate after normalization.
		activeTexts: []string{"  What is a goroutine leak?  "},
	}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	err := tk.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, jobs.processingCalls, 1)
	result, ok := jobs.completed[jobID]
	require.True(t, ok, "job should be completed")
	assert.Equal(t, 2, result.QuestionsGenerated)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Equal(t, 2, result.ExistingDuplicatesCleaned)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, jobs.failed)

	require.Len(t, writer.savedBatches, 1)
	saved := writer.savedBatches[0]
	require.Len(t, saved, 2)
	assert.Equal(t, "Explain how Go channels work.", saved[0].Text)
	assert.Equal(t, "Describe index-only scans in PostgreSQL.", saved[1].Text)

	assert.Equal(t, task.TaskStatusCompleted, tk.Status())
}

func TestQuestionGenerationTask_AllDuplicates(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{questions: []*domain.Question{
		mustQuestion(t, ownerID, "Explain how Go channels work."),
	}}
	writer := &fakeQuestionWriter{
		activeTexts: []string{"explain how go channels work."},
	}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	err := tk.Execute(context.Background())
	require.NoError(t, err)

	result, ok := jobs.completed[jobID]
	require.True(t, ok)
	assert.Equal(t, 0, result.QuestionsGenerated)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Empty(t, writer.savedBatches, "no batch should be saved when everything is a duplicate")
}

func TestQuestionGenerationTask_ProfileNotFound(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{err: store.ErrProfileNotFound}
	gen := &fakeGenerator{}
	writer := &fakeQuestionWriter{}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	err := tk.Execute(context.Background())
	require.Error(t, err)

	msg, ok := jobs.failed[jobID]
	require.True(t, ok, "job should be failed")
	assert.Contains(t, msg, "profile")
	assert.Empty(t, jobs.completed)
	assert.Empty(t, writer.savedBatches)
	assert.Equal(t, task.TaskStatusFailed, tk.Status())
}

func TestQuestionGenerationTask_GeneratorTimeout(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{block: true}
	writer := &fakeQuestionWriter{}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, 10*time.Millisecond)

	err := tk.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	msg, ok := jobs.failed[jobID]
	require.True(t, ok, "job should be failed after a timeout")
	assert.Contains(t, msg, "timed out")
	assert.Empty(t, writer.savedBatches, "no questions should be saved after a timeout")
}

func TestQuestionGenerationTask_MarkProcessingFails(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	jobs.markProcessingErr = errors.New("job already terminal")
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{}
	writer := &fakeQuestionWriter{}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	err := tk.Execute(context.Background())
	require.Error(t, err)

	assert.Empty(t, jobs.failed, "a job we never claimed must not be failed")
	assert.Empty(t, jobs.completed)
	assert.Empty(t, writer.savedBatches)
}

func TestQuestionGenerationTask_SaveFailureFailsJob(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{questions: []*domain.Question{
		mustQuestion(t, ownerID, "Explain how Go channels work."),
	}}
	writer := &fakeQuestionWriter{saveErr: errors.New("connection reset")}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	err := tk.Execute(context.Background())
	require.Error(t, err)

	msg, ok := jobs.failed[jobID]
	require.True(t, ok)
	assert.Contains(t, msg, "connection reset", "the underlying error must survive into the job record")
	assert.Empty(t, jobs.completed)
}

// lifecycleJobService mirrors the real job state machine: pending and
// processing jobs can be claimed, terminal jobs cannot, and completion
// requires the processing state.
type lifecycleJobService struct {
	status domain.JobStatus
	result *domain.GenerationResult
	errMsg string
}

func (s *lifecycleJobService) MarkJobProcessing(_ context.Context, _ uuid.UUID) error {
	if s.status != domain.JobStatusPending && s.status != domain.JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalJobTransition, s.status, domain.JobStatusProcessing)
	}
	s.status = domain.JobStatusProcessing
	return nil
}

func (s *lifecycleJobService) CompleteJob(_ context.Context, _ uuid.UUID, result domain.GenerationResult) error {
	if s.status != domain.JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalJobTransition, s.status, domain.JobStatusCompleted)
	}
	s.status = domain.JobStatusCompleted
	s.result = &result
	return nil
}

func (s *lifecycleJobService) FailJob(_ context.Context, _ uuid.UUID, message string) error {
	if s.status != domain.JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalJobTransition, s.status, domain.JobStatusFailed)
	}
	s.status = domain.JobStatusFailed
	s.errMsg = message
	return nil
}

// A worker crash leaves the job in processing and the task row eligible
// for recovery. The rehydrated task must still drive the job to a
// terminal state instead of wedging it mid-flight.
func TestQuestionGenerationTask_ResumesInterruptedJob(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := &lifecycleJobService{status: domain.JobStatusProcessing}
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{questions: []*domain.Question{
		mustQuestion(t, ownerID, "Explain how Go channels work."),
	}}
	writer := &fakeQuestionWriter{}

	factory := task.NewQuestionGenerationTaskFactory(
		jobs, profiles, gen, writer, 20, time.Minute,
		slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	)

	payload, err := json.Marshal(map[string]uuid.UUID{
		"job_id":   jobID,
		"owner_id": ownerID,
	})
	require.NoError(t, err)

	rebuilt, err := factory.HydrateTask(task.TaskRecord{
		ID:      uuid.New(),
		Type:    task.TaskTypeQuestionGeneration,
		Payload: payload,
		Status:  task.TaskStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, rebuilt.Execute(context.Background()))

	assert.Equal(t, domain.JobStatusCompleted, jobs.status)
	require.NotNil(t, jobs.result)
	assert.Equal(t, 1, jobs.result.QuestionsGenerated)
	assert.Empty(t, jobs.errMsg)
}

func TestQuestionGenerationTask_PayloadRoundTrip(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	ownerID := uuid.New()

	jobs := newFakeJobService()
	profiles := &fakeProfileReader{profile: testProfile(t, ownerID)}
	gen := &fakeGenerator{}
	writer := &fakeQuestionWriter{}

	tk := newTestTask(t, jobID, ownerID, jobs, profiles, gen, writer, time.Minute)

	factory := task.NewQuestionGenerationTaskFactory(
		jobs, profiles, gen, writer, 20, time.Minute,
		slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	)

	record := task.TaskRecord{
		ID:      tk.ID(),
		Type:    task.TaskTypeQuestionGeneration,
		Payload: tk.Payload(),
		Status:  task.TaskStatusPending,
	}

	rebuilt, err := factory.HydrateTask(record)
	require.NoError(t, err)
	assert.Equal(t, tk.ID(), rebuilt.ID(), "hydrated task must keep the original row identity")
	assert.Equal(t, task.TaskTypeQuestionGeneration, rebuilt.Type())
}

func TestQuestionGenerationTaskFactory_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	factory := task.NewQuestionGenerationTaskFactory(
		newFakeJobService(), &fakeProfileReader{}, &fakeGenerator{}, &fakeQuestionWriter{},
		20, time.Minute,
		slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	)

	_, err := factory.HydrateTask(task.TaskRecord{
		ID:   uuid.New(),
		Type: "mystery_task",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task type")
}
