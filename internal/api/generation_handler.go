package api

import (
	"errors"
	"net/http"

	"github.com/prept/prept-api/internal/api/middleware"
	"github.com/prept/prept-api/internal/api/shared"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/store"
)

// GenerationHandler handles question generation API requests.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate handles POST /api/questions/generate. Generation runs in the
// background; the response only acknowledges the job. When the caller
// already has an active job, the response is a 409 carrying that job's
// id and status so clients can resume polling it.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	job, err := h.generationService.RequestGeneration(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrActiveJobExists) && job != nil {
			shared.RespondWithJSON(w, r, http.StatusConflict, GenerateResponse{
				Accepted: false,
				JobID:    job.ID,
				Status:   string(job.Status),
			})
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to start question generation", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{
		Accepted: true,
		JobID:    job.ID,
		Status:   string(job.Status),
	})
}

// Status handles GET /api/questions/generate/status. It reports the
// caller's latest job of any status, or "none" when the caller never
// requested a generation.
func (h *GenerationHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	job, err := h.generationService.GetLatestJob(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			shared.RespondWithJSON(w, r, http.StatusOK, GenerationStatusResponse{Status: "none"})
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to get generation status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statusResponse(job))
}

func statusResponse(job *domain.GenerationJob) GenerationStatusResponse {
	resp := GenerationStatusResponse{
		Status:      string(job.Status),
		JobID:       &job.ID,
		Result:      job.Result,
		Error:       job.Error,
		CompletedAt: job.CompletedAt,
	}
	createdAt := job.CreatedAt
	resp.CreatedAt = &createdAt
	return resp
}
