package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/api/handlers"
	"docqa/internal/chunker"
	"docqa/internal/embedding/hashing"
	"docqa/internal/ranker"
	"docqa/internal/service"
	"docqa/internal/store/memory"
	"docqa/internal/summarizer"
)

func newTestRouter(maxBody int64) http.Handler {
	answerer := service.NewAnswerer(ranker.New(hashing.NewEmbedder(128), 3, 0.2, 2))
	notebooks := service.NewNotebooks(memory.NewStorage(), chunker.NewBoundaryChunker(1000, 100, false), summarizer.NewFrequencySummarizer(), 3, answerer)
	fetch := func(context.Context, string) ([]byte, error) { return nil, nil }
	return NewRouter(RouterConfig{
		NotebookHandler: handlers.NewNotebookHandler(notebooks, fetch),
		MaxBodyBytes:    maxBody,
	})
}

func TestRouter_HealthAndRoot(t *testing.T) {
	router := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","notebooks_count":0}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NotebookRoutes(t *testing.T) {
	router := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/notebooks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notebooks":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/notebooks/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/notebooks/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notebooks/query",
		strings.NewReader(`{"notebook_id":"unknown","question":"What is it?"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	router := newTestRouter(16)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notebooks/query",
		strings.NewReader(`{"notebook_id":"a-very-long-identifier","question":"q"}`)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
