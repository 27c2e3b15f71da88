package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// PostgresBookmarkStore implements store.BookmarkStore using PostgreSQL.
// The bookmarks_owner_question_key unique constraint is the arbiter under
// concurrent toggles of the same pair.
type PostgresBookmarkStore struct {
	db store.DBTX
}

// NewPostgresBookmarkStore creates a new PostgresBookmarkStore.
func NewPostgresBookmarkStore(db store.DBTX) *PostgresBookmarkStore {
	return &PostgresBookmarkStore{db: db}
}

// Get retrieves the bookmark for the given owner/question pair.
func (s *PostgresBookmarkStore) Get(ctx context.Context, ownerID, questionID uuid.UUID) (*domain.Bookmark, error) {
	query := `
		SELECT id, owner_id, question_id, created_at
		FROM bookmarks
		WHERE owner_id = $1 AND question_id = $2
	`

	var bookmark domain.Bookmark
	err := s.db.QueryRowContext(ctx, query, ownerID, questionID).Scan(
		&bookmark.ID,
		&bookmark.OwnerID,
		&bookmark.QuestionID,
		&bookmark.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, store.ErrBookmarkNotFound, "failed to get bookmark")
	}

	return &bookmark, nil
}

// Create inserts a bookmark.
func (s *PostgresBookmarkStore) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	log := logger.FromContext(ctx)

	if err := bookmark.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO bookmarks (id, owner_id, question_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		bookmark.ID,
		bookmark.OwnerID,
		bookmark.QuestionID,
		bookmark.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookmarks_owner_question_key") {
			return store.ErrBookmarkExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner or question does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create bookmark",
			"owner_id", bookmark.OwnerID,
			"question_id", bookmark.QuestionID,
			"error", err)
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	return nil
}

// Delete removes the bookmark for the given pair.
func (s *PostgresBookmarkStore) Delete(ctx context.Context, ownerID, questionID uuid.UUID) error {
	query := `
		DELETE FROM bookmarks
		WHERE owner_id = $1 AND question_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, ownerID, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return store.ErrBookmarkNotFound
	}

	return nil
}
