package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// ProfileService manages the profile that drives question generation.
type ProfileService interface {
	// Get returns the user's profile.
	// Returns store.ErrProfileNotFound when none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// Update creates or replaces the user's profile.
	Update(ctx context.Context, userID uuid.UUID, jobTitle string, yearsOfExperience int, keySkills []string, professionalGoal string) (*domain.Profile, error)
}

// profileServiceImpl implements ProfileService.
type profileServiceImpl struct {
	profiles store.ProfileStore
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles store.ProfileStore, log *slog.Logger) (ProfileService, error) {
	if profiles == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "profile store cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	return &profileServiceImpl{
		profiles: profiles,
		logger:   log.With("component", "profile_service"),
	}, nil
}

// Get returns the user's profile.
func (s *profileServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_profile", "failed to load profile", err)
	}
	return profile, nil
}

// Update creates or replaces the user's profile.
func (s *profileServiceImpl) Update(
	ctx context.Context,
	userID uuid.UUID,
	jobTitle string,
	yearsOfExperience int,
	keySkills []string,
	professionalGoal string,
) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	profile, err := domain.NewProfile(userID, jobTitle, yearsOfExperience, keySkills, professionalGoal)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, NewServiceError("update_profile", "failed to save profile", err)
	}

	log.Info("profile updated", "user_id", userID)
	return profile, nil
}
