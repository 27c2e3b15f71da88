package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// BookmarkService toggles bookmarks on questions.
type BookmarkService interface {
	// Toggle flips the bookmark state of the owner's question and
	// reports the resulting state: true when the question is now
	// bookmarked, false when it is not. The question must exist and be
	// owned by the caller.
	Toggle(ctx context.Context, ownerID, questionID uuid.UUID) (bool, error)
}

// bookmarkServiceImpl implements BookmarkService.
type bookmarkServiceImpl struct {
	bookmarks store.BookmarkStore
	questions store.QuestionStore
	logger    *slog.Logger
}

// NewBookmarkService creates a BookmarkService.
func NewBookmarkService(bookmarks store.BookmarkStore, questions store.QuestionStore, log *slog.Logger) (BookmarkService, error) {
	if bookmarks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "bookmark store cannot be nil"}
	}
	if questions == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "question store cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	return &bookmarkServiceImpl{
		bookmarks: bookmarks,
		questions: questions,
		logger:    log.With("component", "bookmark_service"),
	}, nil
}

// Toggle flips the bookmark state of the owner's question.
func (s *bookmarkServiceImpl) Toggle(ctx context.Context, ownerID, questionID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, err
		}
		return false, NewServiceError("toggle_bookmark", "failed to load question", err)
	}

	if question.OwnerID != ownerID {
		return false, ErrNotOwned
	}

	_, err = s.bookmarks.Get(ctx, ownerID, questionID)
	switch {
	case err == nil:
		// Bookmarked now, so the toggle removes it. A concurrent toggle
		// may have deleted it first; the pair ends unbookmarked either way.
		if err := s.bookmarks.Delete(ctx, ownerID, questionID); err != nil {
			if errors.Is(err, store.ErrBookmarkNotFound) {
				return false, nil
			}
			return false, NewServiceError("toggle_bookmark", "failed to remove bookmark", err)
		}
		log.Debug("bookmark removed", "owner_id", ownerID, "question_id", questionID)
		return false, nil

	case errors.Is(err, store.ErrBookmarkNotFound):
		bookmark, err := domain.NewBookmark(ownerID, questionID)
		if err != nil {
			return false, NewServiceError("toggle_bookmark", "failed to create bookmark", err)
		}
		if err := s.bookmarks.Create(ctx, bookmark); err != nil {
			// A concurrent toggle inserted first; the unique constraint
			// guarantees at most one row, which is the state we wanted.
			if errors.Is(err, store.ErrBookmarkExists) {
				return true, nil
			}
			return false, NewServiceError("toggle_bookmark", "failed to save bookmark", err)
		}
		log.Debug("bookmark added", "owner_id", ownerID, "question_id", questionID)
		return true, nil

	default:
		return false, NewServiceError("toggle_bookmark", "failed to check bookmark state", err)
	}
}
