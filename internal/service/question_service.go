package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/dedup"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// QuestionService provides question listing, deletion, and duplicate
// cleanup.
type QuestionService interface {
	// List returns one page of the owner's active questions matching the
	// filters. Zero-valued paging fields get defaults.
	List(ctx context.Context, ownerID uuid.UUID, filters store.QuestionFilters) (*store.QuestionPage, error)

	// Get returns a question by ID, enforcing ownership.
	Get(ctx context.Context, questionID, ownerID uuid.UUID) (*domain.Question, error)

	// Delete soft-deletes the owner's question.
	Delete(ctx context.Context, questionID, ownerID uuid.UUID) error

	// CleanupDuplicates deactivates duplicates in the owner's active
	// corpus, keeping the oldest of each normalized-text group. Returns
	// the number deactivated. Running it twice in a row deactivates
	// nothing the second time.
	CleanupDuplicates(ctx context.Context, ownerID uuid.UUID) (int, error)

	// SaveGenerated persists a batch of generated questions atomically.
	SaveGenerated(ctx context.Context, questions []*domain.Question) error
}

// questionServiceImpl implements QuestionService.
type questionServiceImpl struct {
	db        *sql.DB
	questions store.QuestionStore
	logger    *slog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(db *sql.DB, questions store.QuestionStore, log *slog.Logger) (QuestionService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if questions == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "question store cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	return &questionServiceImpl{
		db:        db,
		questions: questions,
		logger:    log.With("component", "question_service"),
	}, nil
}

// List returns one page of the owner's active questions.
func (s *questionServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filters store.QuestionFilters,
) (*store.QuestionPage, error) {
	filters.Normalize()

	page, err := s.questions.List(ctx, ownerID, filters)
	if err != nil {
		return nil, NewServiceError("list_questions", "failed to list questions", err)
	}

	return page, nil
}

// Get returns a question by ID, enforcing ownership.
func (s *questionServiceImpl) Get(ctx context.Context, questionID, ownerID uuid.UUID) (*domain.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_question", "failed to load question", err)
	}

	if question.OwnerID != ownerID {
		return nil, ErrNotOwned
	}

	return question, nil
}

// Delete soft-deletes the owner's question.
func (s *questionServiceImpl) Delete(ctx context.Context, questionID, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	question, err := s.Get(ctx, questionID, ownerID)
	if err != nil {
		return err
	}

	if err := s.questions.Deactivate(ctx, []uuid.UUID{question.ID}); err != nil {
		return NewServiceError("delete_question", "failed to deactivate question", err)
	}

	log.Info("question deactivated", "question_id", questionID, "owner_id", ownerID)
	return nil
}

// CleanupDuplicates deactivates later duplicates in the owner's active
// corpus.
func (s *questionServiceImpl) CleanupDuplicates(ctx context.Context, ownerID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Oldest first, so the earliest occurrence of each text survives.
	questions, err := s.questions.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return 0, NewServiceError("cleanup_duplicates", "failed to list questions", err)
	}

	seen := make(map[string]struct{}, len(questions))
	var duplicateIDs []uuid.UUID
	for _, question := range questions {
		key := dedup.Normalize(question.Text)
		if _, dup := seen[key]; dup {
			duplicateIDs = append(duplicateIDs, question.ID)
			continue
		}
		seen[key] = struct{}{}
	}

	if len(duplicateIDs) == 0 {
		return 0, nil
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.questions.WithTx(tx).Deactivate(ctx, duplicateIDs)
	})
	if err != nil {
		return 0, NewServiceError("cleanup_duplicates", "failed to deactivate duplicates", err)
	}

	log.Info("deactivated duplicate questions",
		"owner_id", ownerID,
		"count", len(duplicateIDs))

	return len(duplicateIDs), nil
}

// SaveGenerated persists a batch of generated questions atomically.
func (s *questionServiceImpl) SaveGenerated(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.questions.WithTx(tx).CreateMultiple(ctx, questions)
	})
	if err != nil {
		return NewServiceError("save_generated", "failed to save questions", err)
	}

	return nil
}
