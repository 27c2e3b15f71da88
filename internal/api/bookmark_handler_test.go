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
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/store"
)

// fakeBookmarkService flips an in-memory bookmark state per question.
type fakeBookmarkService struct {
	state map[uuid.UUID]bool
	err   error
}

func (s *fakeBookmarkService) Toggle(_ context.Context, _, questionID uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.state == nil {
		s.state = make(map[uuid.UUID]bool)
	}
	s.state[questionID] = !s.state[questionID]
	return s.state[questionID], nil
}

func newBookmarkTestServer(t *testing.T, svc service.BookmarkService) *httptest.Server {
	t.Helper()

	handler := api.NewBookmarkHandler(svc)

	r := chi.NewRouter()
	r.Use(withUser(uuid.New()))
	r.Post("/api/questions/{id}/bookmark", handler.Toggle)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func toggle(t *testing.T, server *httptest.Server, questionID string) *http.Response {
	t.Helper()

	resp, err := http.Post(server.URL+"/api/questions/"+questionID+"/bookmark", "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestToggleBookmark_FlipsState(t *testing.T) {
	server := newBookmarkTestServer(t, &fakeBookmarkService{})
	questionID := uuid.New()

	resp := toggle(t, server, questionID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.BookmarkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, questionID, body.QuestionID)
	assert.True(t, body.Bookmarked)

	resp = toggle(t, server, questionID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Bookmarked)
}

func TestToggleBookmark_QuestionNotFound(t *testing.T) {
	server := newBookmarkTestServer(t, &fakeBookmarkService{err: store.ErrQuestionNotFound})

	resp := toggle(t, server, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleBookmark_NotOwned(t *testing.T) {
	server := newBookmarkTestServer(t, &fakeBookmarkService{err: service.ErrNotOwned})

	// Ownership failures read as not-found so the endpoint does not
	// reveal other users' question IDs.
	resp := toggle(t, server, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleBookmark_InvalidID(t *testing.T) {
	server := newBookmarkTestServer(t, &fakeBookmarkService{})

	resp := toggle(t, server, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
