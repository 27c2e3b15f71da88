package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/events"
	"github.com/prept/prept-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockGenerationJobStore is a mock implementation of store.GenerationJobStore.
type MockGenerationJobStore struct {
	mock.Mock
}

func (m *MockGenerationJobStore) Create(ctx context.Context, job *domain.GenerationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockGenerationJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*domain.GenerationJob)
	return job, args.Error(1)
}

func (m *MockGenerationJobStore) GetLatestByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.GenerationJob, error) {
	args := m.Called(ctx, ownerID)
	job, _ := args.Get(0).(*domain.GenerationJob)
	return job, args.Error(1)
}

func (m *MockGenerationJobStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGenerationJobStore) Complete(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockGenerationJobStore) Fail(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockGenerationJobStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGenerationJobStore) WithTx(tx *sql.Tx) store.GenerationJobStore {
	return m
}

// MockQuestionStore is a mock implementation of store.QuestionStore.
type MockQuestionStore struct {
	mock.Mock
}

func (m *MockQuestionStore) CreateMultiple(ctx context.Context, questions []*domain.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	question, _ := args.Get(0).(*domain.Question)
	return question, args.Error(1)
}

func (m *MockQuestionStore) ListActiveTexts(ctx context.Context, ownerID uuid.UUID) (map[string]struct{}, error) {
	args := m.Called(ctx, ownerID)
	texts, _ := args.Get(0).(map[string]struct{})
	return texts, args.Error(1)
}

func (m *MockQuestionStore) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Question, error) {
	args := m.Called(ctx, ownerID)
	questions, _ := args.Get(0).([]*domain.Question)
	return questions, args.Error(1)
}

func (m *MockQuestionStore) List(ctx context.Context, ownerID uuid.UUID, filters store.QuestionFilters) (*store.QuestionPage, error) {
	args := m.Called(ctx, ownerID, filters)
	page, _ := args.Get(0).(*store.QuestionPage)
	return page, args.Error(1)
}

func (m *MockQuestionStore) Deactivate(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return m
}

// MockBookmarkStore is a mock implementation of store.BookmarkStore.
type MockBookmarkStore struct {
	mock.Mock
}

func (m *MockBookmarkStore) Get(ctx context.Context, ownerID, questionID uuid.UUID) (*domain.Bookmark, error) {
	args := m.Called(ctx, ownerID, questionID)
	bookmark, _ := args.Get(0).(*domain.Bookmark)
	return bookmark, args.Error(1)
}

func (m *MockBookmarkStore) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	args := m.Called(ctx, bookmark)
	return args.Error(0)
}

func (m *MockBookmarkStore) Delete(ctx context.Context, ownerID, questionID uuid.UUID) error {
	args := m.Called(ctx, ownerID, questionID)
	return args.Error(0)
}

// MockProfileStore is a mock implementation of store.ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*domain.Profile)
	return profile, args.Error(1)
}

func (m *MockProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockEventEmitter is a mock implementation of events.EventEmitter.
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventEmitter) RegisterHandler(handler events.EventHandler) {
	m.Called(handler)
}
