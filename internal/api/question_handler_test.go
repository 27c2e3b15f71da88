package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prept/prept-api/internal/api"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/store"
)

// fakeQuestionService records the filters it was called with and returns
// a canned page.
type fakeQuestionService struct {
	lastFilters store.QuestionFilters
	page        *store.QuestionPage
	listErr     error
	deleteErr   error
}

func (s *fakeQuestionService) List(_ context.Context, _ uuid.UUID, filters store.QuestionFilters) (*store.QuestionPage, error) {
	filters.Normalize()
	s.lastFilters = filters
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.page != nil {
		return s.page, nil
	}
	return &store.QuestionPage{}, nil
}

func (s *fakeQuestionService) Get(_ context.Context, _, _ uuid.UUID) (*domain.Question, error) {
	return nil, store.ErrQuestionNotFound
}

func (s *fakeQuestionService) Delete(_ context.Context, _, _ uuid.UUID) error {
	return s.deleteErr
}

func (s *fakeQuestionService) CleanupDuplicates(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

func (s *fakeQuestionService) SaveGenerated(_ context.Context, _ []*domain.Question) error {
	return nil
}

func newQuestionTestServer(t *testing.T, svc *fakeQuestionService) *httptest.Server {
	t.Helper()

	handler := api.NewQuestionHandler(svc)

	r := chi.NewRouter()
	r.Use(withUser(uuid.New()))
	r.Get("/api/questions", handler.List)
	r.Delete("/api/questions/{id}", handler.Delete)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestListQuestions_Defaults(t *testing.T) {
	svc := &fakeQuestionService{}
	server := newQuestionTestServer(t, svc)

	resp, err := http.Get(server.URL + "/api/questions")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.QuestionListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, store.DefaultPageSize, body.Limit)
	assert.NotNil(t, body.Questions)
	assert.Empty(t, body.Questions)
}

func TestListQuestions_ParsesFilters(t *testing.T) {
	svc := &fakeQuestionService{}
	server := newQuestionTestServer(t, svc)

	url := server.URL + "/api/questions" +
		"?category=Technical&difficulty=Hard&bookmarked=true" +
		"&search=rest&sort=oldest&page=3&limit=10"
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	filters := svc.lastFilters
	require.NotNil(t, filters.Category)
	assert.Equal(t, domain.CategoryTechnical, *filters.Category)
	require.NotNil(t, filters.Difficulty)
	assert.Equal(t, domain.DifficultyHard, *filters.Difficulty)
	assert.True(t, filters.BookmarkedOnly)
	assert.Equal(t, "rest", filters.Search)
	assert.Equal(t, store.SortOldestFirst, filters.Sort)
	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 10, filters.Limit)
}

func TestListQuestions_RejectsBadParams(t *testing.T) {
	server := newQuestionTestServer(t, &fakeQuestionService{})

	cases := []struct {
		name  string
		query string
	}{
		{"unknown category", "?category=Trivia"},
		{"unknown difficulty", "?difficulty=Impossible"},
		{"bad bookmarked flag", "?bookmarked=maybe"},
		{"unknown sort", "?sort=alphabetical"},
		{"zero page", "?page=0"},
		{"negative limit", "?limit=-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/api/questions" + tc.query)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDeleteQuestion_Success(t *testing.T) {
	server := newQuestionTestServer(t, &fakeQuestionService{})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/questions/"+uuid.NewString(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	server := newQuestionTestServer(t, &fakeQuestionService{deleteErr: store.ErrQuestionNotFound})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/questions/"+uuid.NewString(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteQuestion_InvalidID(t *testing.T) {
	server := newQuestionTestServer(t, &fakeQuestionService{})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/questions/not-a-uuid", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
