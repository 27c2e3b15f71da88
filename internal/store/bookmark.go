package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
)

// BookmarkStore defines the interface for bookmark persistence. Rows are
// only created and deleted; the unique (owner_id, question_id) constraint
// is the final arbiter under concurrent toggles.
type BookmarkStore interface {
	// Get retrieves the bookmark for the given owner/question pair.
	// Returns ErrBookmarkNotFound if it does not exist.
	Get(ctx context.Context, ownerID, questionID uuid.UUID) (*domain.Bookmark, error)

	// Create inserts a bookmark. Returns ErrBookmarkExists if the pair
	// is already bookmarked.
	Create(ctx context.Context, bookmark *domain.Bookmark) error

	// Delete removes the bookmark for the given pair.
	// Returns ErrBookmarkNotFound if none exists.
	Delete(ctx context.Context, ownerID, questionID uuid.UUID) error
}
