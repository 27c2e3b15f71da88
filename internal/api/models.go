// Package api implements the HTTP surface of the service.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
)

// RegisterRequest is the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse is the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken authorizes API requests.
	AccessToken string `json:"token"`

	// RefreshToken obtains new token pairs.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is when the access token expires, RFC 3339.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest is the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileRequest is the payload for the profile update endpoint.
type ProfileRequest struct {
	JobTitle          string   `json:"job_title"           validate:"required,max=200"`
	YearsOfExperience int      `json:"years_of_experience" validate:"gte=0,lte=80"`
	KeySkills         []string `json:"key_skills"          validate:"omitempty,dive,max=100"`
	ProfessionalGoal  string   `json:"professional_goal"   validate:"omitempty,max=1000"`
}

// GenerateResponse is the response for a generation request. Accepted is
// true when a new job was created and false when an active job for the
// caller already existed; JobID and Status describe that job either way.
type GenerateResponse struct {
	Accepted bool      `json:"accepted"`
	JobID    uuid.UUID `json:"job_id"`
	Status   string    `json:"status"`
}

// GenerationStatusResponse reports the caller's latest generation job.
// Status is "none" when the caller never requested a generation; all
// other fields are absent in that case.
type GenerationStatusResponse struct {
	Status      string                   `json:"status"`
	JobID       *uuid.UUID               `json:"job_id,omitempty"`
	Result      *domain.GenerationResult `json:"result,omitempty"`
	Error       string                   `json:"error,omitempty"`
	CreatedAt   *time.Time               `json:"created_at,omitempty"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
}

// QuestionListResponse is one page of the caller's questions.
type QuestionListResponse struct {
	Questions []*domain.Question `json:"questions"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

// BookmarkResponse reports the bookmark state after a toggle.
type BookmarkResponse struct {
	QuestionID uuid.UUID `json:"question_id"`
	Bookmarked bool      `json:"bookmarked"`
}
