package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// PostgresProfileStore implements store.ProfileStore using PostgreSQL.
type PostgresProfileStore struct {
	db store.DBTX
}

// NewPostgresProfileStore creates a new PostgresProfileStore.
func NewPostgresProfileStore(db store.DBTX) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// GetByUserID retrieves the profile for the given user.
func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT user_id, job_title, years_of_experience, key_skills, professional_goal, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile domain.Profile
	var skillsJSON []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.JobTitle,
		&profile.YearsOfExperience,
		&skillsJSON,
		&profile.ProfessionalGoal,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, store.ErrProfileNotFound, "failed to get profile")
	}

	if len(skillsJSON) > 0 {
		if err := json.Unmarshal(skillsJSON, &profile.KeySkills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key skills: %w", err)
		}
	}

	return &profile, nil
}

// Upsert creates the user's profile or replaces its fields, keeping the
// original created_at on update.
func (s *PostgresProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContext(ctx)

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO profiles (user_id, job_title, years_of_experience, key_skills, professional_goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			years_of_experience = EXCLUDED.years_of_experience,
			key_skills = EXCLUDED.key_skills,
			professional_goal = EXCLUDED.professional_goal,
			updated_at = EXCLUDED.updated_at
	`

	skillsJSON, err := json.Marshal(profile.KeySkills)
	if err != nil {
		return fmt.Errorf("failed to marshal key skills: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.JobTitle,
		profile.YearsOfExperience,
		skillsJSON,
		profile.ProfessionalGoal,
		now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to upsert profile", "user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
