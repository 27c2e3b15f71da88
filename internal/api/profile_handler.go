package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/prept/prept-api/internal/api/middleware"
	"github.com/prept/prept-api/internal/api/shared"
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/store"
)

// ProfileHandler handles profile API requests.
type ProfileHandler struct {
	profileService service.ProfileService
	validator      *validator.Validate
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		validator:      validator.New(),
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to get profile", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Update handles PUT /api/profile. The profile is created on first
// update and replaced on subsequent ones.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	profile, err := h.profileService.Update(
		r.Context(),
		userID,
		req.JobTitle,
		req.YearsOfExperience,
		req.KeySkills,
		req.ProfessionalGoal,
	)
	if err != nil {
		var svcErr *service.ServiceError
		if errors.As(err, &svcErr) {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to update profile", err)
			return
		}
		// Domain validation errors surface as 400s.
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid profile data: "+err.Error())
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
