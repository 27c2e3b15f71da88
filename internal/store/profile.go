package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
)

// ProfileStore defines the interface for profile persistence.
type ProfileStore interface {
	// GetByUserID retrieves the profile for the given user.
	// Returns ErrProfileNotFound if the user has no profile yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// Upsert creates the user's profile or replaces its fields.
	Upsert(ctx context.Context, profile *domain.Profile) error
}
