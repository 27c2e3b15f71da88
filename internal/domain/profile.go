package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Profile.
var (
	ErrEmptyProfileUserID  = errors.New("profile user ID cannot be empty")
	ErrEmptyJobTitle       = errors.New("profile job title cannot be empty")
	ErrNegativeExperience  = errors.New("profile years of experience cannot be negative")
	ErrTooManyKeySkills    = errors.New("profile cannot have more than 20 key skills")
	ErrEmptyKeySkill       = errors.New("profile key skills cannot contain empty entries")
)

// Profile holds the subset of a user's profile consumed by question
// generation. It is read-only input to the generation pipeline; the user
// edits it through the profile endpoints.
type Profile struct {
	UserID            uuid.UUID `json:"user_id"`
	JobTitle          string    `json:"job_title"`
	YearsOfExperience int       `json:"years_of_experience"`
	KeySkills         []string  `json:"key_skills"`
	ProfessionalGoal  string    `json:"professional_goal"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProfile creates a Profile for the given user.
func NewProfile(
	userID uuid.UUID,
	jobTitle string,
	yearsOfExperience int,
	keySkills []string,
	professionalGoal string,
) (*Profile, error) {
	now := time.Now().UTC()
	p := &Profile{
		UserID:            userID,
		JobTitle:          jobTitle,
		YearsOfExperience: yearsOfExperience,
		KeySkills:         keySkills,
		ProfessionalGoal:  professionalGoal,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that the Profile has valid data.
func (p *Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProfileUserID
	}

	if strings.TrimSpace(p.JobTitle) == "" {
		return ErrEmptyJobTitle
	}

	if p.YearsOfExperience < 0 {
		return ErrNegativeExperience
	}

	if len(p.KeySkills) > 20 {
		return ErrTooManyKeySkills
	}

	for _, skill := range p.KeySkills {
		if strings.TrimSpace(skill) == "" {
			return ErrEmptyKeySkill
		}
	}

	return nil
}
