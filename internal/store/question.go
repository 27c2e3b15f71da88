package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
)

// QuestionSort selects the ordering of question listings. Ordering is
// always by creation time.
type QuestionSort string

// Supported sort orders.
const (
	SortNewestFirst QuestionSort = "newest"
	SortOldestFirst QuestionSort = "oldest"
)

// Listing defaults and bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QuestionFilters narrows and paginates a question listing. Page is
// 1-indexed; Limit is the fixed page size.
type QuestionFilters struct {
	Category       *domain.QuestionCategory
	Difficulty     *domain.QuestionDifficulty
	BookmarkedOnly bool
	// Search matches as a case-insensitive substring of the question text.
	Search string
	Sort   QuestionSort
	Page   int
	Limit  int
}

// Normalize fills paging defaults, caps the page size, and resolves the
// sort order to one of the supported values.
func (f *QuestionFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Sort != SortOldestFirst {
		f.Sort = SortNewestFirst
	}
}

// QuestionPage is one page of a question listing together with the total
// number of matches across all pages.
type QuestionPage struct {
	Items []*domain.Question
	Total int
}

// QuestionStore defines the interface for question persistence.
type QuestionStore interface {
	// CreateMultiple saves the given questions. Run it inside a
	// transaction (via WithTx and RunInTransaction) when atomicity
	// across the batch matters.
	CreateMultiple(ctx context.Context, questions []*domain.Question) error

	// GetByID retrieves a question by ID.
	// Returns ErrQuestionNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)

	// ListActiveTexts returns the full set of active question texts for
	// the owner. This is the corpus the duplicate detector partitions
	// candidates against, so it must be read at call time, never cached.
	ListActiveTexts(ctx context.Context, ownerID uuid.UUID) (map[string]struct{}, error)

	// ListActiveByOwner returns the owner's active questions in creation
	// order (oldest first). The duplicate sweep depends on this ordering
	// to keep the earliest occurrence of each normalized text.
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Question, error)

	// List returns one page of the owner's active questions matching
	// the filters, along with the total match count.
	List(ctx context.Context, ownerID uuid.UUID, filters QuestionFilters) (*QuestionPage, error)

	// Deactivate soft-deletes the given questions by clearing is_active.
	// Missing IDs are ignored.
	Deactivate(ctx context.Context, ids []uuid.UUID) error

	// WithTx returns a QuestionStore bound to the given transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
