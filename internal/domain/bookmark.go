package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Bookmark.
var (
	ErrEmptyBookmarkID         = errors.New("bookmark ID cannot be empty")
	ErrEmptyBookmarkOwnerID    = errors.New("bookmark owner ID cannot be empty")
	ErrEmptyBookmarkQuestionID = errors.New("bookmark question ID cannot be empty")
)

// Bookmark is a join entity between a user and a question. Its existence
// means the question is bookmarked; rows are only ever created and
// deleted, never updated.
type Bookmark struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	QuestionID uuid.UUID `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBookmark creates a Bookmark linking the given owner and question.
func NewBookmark(ownerID, questionID uuid.UUID) (*Bookmark, error) {
	b := &Bookmark{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		QuestionID: questionID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// Validate checks that the Bookmark has valid data.
func (b *Bookmark) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookmarkID
	}

	if b.OwnerID == uuid.Nil {
		return ErrEmptyBookmarkOwnerID
	}

	if b.QuestionID == uuid.Nil {
		return ErrEmptyBookmarkQuestionID
	}

	return nil
}
