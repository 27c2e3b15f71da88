package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/store"
	"github.com/prept/prept-api/internal/task"
)

// Adapters that expose service and store capabilities through the narrow
// interfaces the task package consumes, keeping the task package free of
// service imports.

// JobStoreAdapter adapts store.GenerationJobStore to task.JobService.
// Transition legality is enforced by the store's guarded updates.
type JobStoreAdapter struct {
	jobs store.GenerationJobStore
}

// NewJobStoreAdapter creates a JobStoreAdapter.
func NewJobStoreAdapter(jobs store.GenerationJobStore) *JobStoreAdapter {
	return &JobStoreAdapter{jobs: jobs}
}

// MarkJobProcessing claims the job for execution.
func (a *JobStoreAdapter) MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error {
	return a.jobs.MarkProcessing(ctx, jobID)
}

// CompleteJob moves the job to completed with the given result.
func (a *JobStoreAdapter) CompleteJob(ctx context.Context, jobID uuid.UUID, result domain.GenerationResult) error {
	return a.jobs.Complete(ctx, jobID, result)
}

// FailJob moves the job to failed with the given error message.
func (a *JobStoreAdapter) FailJob(ctx context.Context, jobID uuid.UUID, message string) error {
	return a.jobs.Fail(ctx, jobID, message)
}

// ProfileStoreAdapter adapts store.ProfileStore to task.ProfileReader.
type ProfileStoreAdapter struct {
	profiles store.ProfileStore
}

// NewProfileStoreAdapter creates a ProfileStoreAdapter.
func NewProfileStoreAdapter(profiles store.ProfileStore) *ProfileStoreAdapter {
	return &ProfileStoreAdapter{profiles: profiles}
}

// GetProfile returns the profile for the given user.
func (a *ProfileStoreAdapter) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return a.profiles.GetByUserID(ctx, userID)
}

// QuestionWriterAdapter adapts QuestionService and store.QuestionStore to
// task.QuestionWriter.
type QuestionWriterAdapter struct {
	service   QuestionService
	questions store.QuestionStore
}

// NewQuestionWriterAdapter creates a QuestionWriterAdapter.
func NewQuestionWriterAdapter(service QuestionService, questions store.QuestionStore) *QuestionWriterAdapter {
	return &QuestionWriterAdapter{service: service, questions: questions}
}

// CleanupExisting deactivates duplicates already in the owner's corpus.
func (a *QuestionWriterAdapter) CleanupExisting(ctx context.Context, ownerID uuid.UUID) (int, error) {
	return a.service.CleanupDuplicates(ctx, ownerID)
}

// ActiveTexts returns the text of every active question the owner has.
func (a *QuestionWriterAdapter) ActiveTexts(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	textSet, err := a.questions.ListActiveTexts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(textSet))
	for text := range textSet {
		texts = append(texts, text)
	}
	return texts, nil
}

// SaveBatch persists a batch of freshly generated questions.
func (a *QuestionWriterAdapter) SaveBatch(ctx context.Context, questions []*domain.Question) error {
	return a.service.SaveGenerated(ctx, questions)
}

// Interface conformance checks.
var (
	_ task.JobService     = (*JobStoreAdapter)(nil)
	_ task.ProfileReader  = (*ProfileStoreAdapter)(nil)
	_ task.QuestionWriter = (*QuestionWriterAdapter)(nil)
)
