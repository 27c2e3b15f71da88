// Package generation defines the interface for producing interview
// questions from a user's profile, plus the error taxonomy shared by its
// implementations.
package generation

import (
	"context"

	"github.com/prept/prept-api/internal/domain"
)

// Generator produces a batch of interview questions tailored to a
// profile.
type Generator interface {
	// GenerateQuestions generates up to count questions for the given
	// profile. The returned questions carry the profile owner's ID and
	// pass domain validation; entries the backend produced with invalid
	// fields are dropped rather than returned.
	//
	// Errors wrap one of the package sentinel errors so callers can
	// classify the failure without knowing the backend.
	GenerateQuestions(ctx context.Context, profile *domain.Profile, count int) ([]*domain.Question, error)
}
