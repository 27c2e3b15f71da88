package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/api/middleware"
	"github.com/prept/prept-api/internal/api/shared"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/store"
)

// QuestionHandler handles question API requests.
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List handles GET /api/questions. Supported query parameters:
// category, difficulty, bookmarked, search, sort (newest|oldest),
// page, limit.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	filters, err := parseQuestionFilters(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filters.Normalize()

	page, err := h.questionService.List(r.Context(), userID, filters)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to list questions", err)
		return
	}

	items := page.Items
	if items == nil {
		items = []*domain.Question{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuestionListResponse{
		Questions: items,
		Total:     page.Total,
		Page:      filters.Page,
		Limit:     filters.Limit,
	})
}

// Delete handles DELETE /api/questions/{id}. Questions are soft-deleted;
// the row stays but leaves the active corpus.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.questionService.Delete(r.Context(), questionID, userID); err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) || errors.Is(err, service.ErrNotOwned) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Question not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to delete question", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseQuestionFilters builds QuestionFilters from the request's query
// parameters. Unknown category, difficulty or sort values are rejected;
// paging defaults are left to the service.
func parseQuestionFilters(r *http.Request) (store.QuestionFilters, error) {
	var filters store.QuestionFilters
	q := r.URL.Query()

	if raw := q.Get("category"); raw != "" {
		category := domain.QuestionCategory(raw)
		if !domain.IsValidCategory(category) {
			return filters, errors.New("invalid category filter")
		}
		filters.Category = &category
	}

	if raw := q.Get("difficulty"); raw != "" {
		difficulty := domain.QuestionDifficulty(raw)
		if !domain.IsValidDifficulty(difficulty) {
			return filters, errors.New("invalid difficulty filter")
		}
		filters.Difficulty = &difficulty
	}

	if raw := q.Get("bookmarked"); raw != "" {
		bookmarked, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, errors.New("invalid bookmarked filter")
		}
		filters.BookmarkedOnly = bookmarked
	}

	filters.Search = q.Get("search")

	switch raw := q.Get("sort"); raw {
	case "":
	case string(store.SortNewestFirst):
		filters.Sort = store.SortNewestFirst
	case string(store.SortOldestFirst):
		filters.Sort = store.SortOldestFirst
	default:
		return filters, errors.New("invalid sort order")
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filters, errors.New("invalid page number")
		}
		filters.Page = page
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filters, errors.New("invalid page limit")
		}
		filters.Limit = limit
	}

	return filters, nil
}
