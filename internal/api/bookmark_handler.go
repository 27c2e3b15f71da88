package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/api/middleware"
	"github.com/prept/prept-api/internal/api/shared"
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/store"
)

// BookmarkHandler handles bookmark API requests.
type BookmarkHandler struct {
	bookmarkService service.BookmarkService
}

// NewBookmarkHandler creates a BookmarkHandler.
func NewBookmarkHandler(bookmarkService service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// Toggle handles POST /api/questions/{id}/bookmark. It flips the
// bookmark state and reports the resulting one.
func (h *BookmarkHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	questionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid question ID")
		return
	}

	bookmarked, err := h.bookmarkService.Toggle(r.Context(), userID, questionID)
	if err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) || errors.Is(err, service.ErrNotOwned) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Question not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to toggle bookmark", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BookmarkResponse{
		QuestionID: questionID,
		Bookmarked: bookmarked,
	})
}
