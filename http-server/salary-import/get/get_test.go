package get

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salary-import/internal/salary"
	"salary-import/internal/storage"
)

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Session(id string) (*salary.SessionView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salary.SessionView), args.Error(1)
}

func (m *MockSessions) Progress(id string) (salary.Progress, error) {
	args := m.Called(id)
	return args.Get(0).(salary.Progress), args.Error(1)
}

func (m *MockSessions) Reference(ctx context.Context, id string) (*salary.Reference, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salary.Reference), args.Error(1)
}

func newRouter(sessions SessionReader) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Get("/api/salary-import/{id}", GetSession(log, sessions))
	r.Get("/api/salary-import/{id}/progress", GetProgress(log, sessions))
	r.Get("/api/salary-import/{id}/reference", GetReference(log, sessions))
	return r
}

func TestGetSession(t *testing.T) {
	m := new(MockSessions)
	m.On("Session", "s-1").Return(&salary.SessionView{ID: "s-1", Summary: salary.Summary{Total: 3, OK: 2, Pending: 1}}, nil)

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/salary-import/s-1", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var got salary.SessionView
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, salary.Summary{Total: 3, OK: 2, Pending: 1}, got.Summary)
}

func TestGetSession_NotFound(t *testing.T) {
	m := new(MockSessions)
	m.On("Session", "nope").Return(nil, salary.ErrSessionNotFound)

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/salary-import/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProgress(t *testing.T) {
	m := new(MockSessions)
	m.On("Progress", "s-1").Return(salary.Progress{Submitted: 500, Total: 1200, Chunk: 1, Chunks: 3}, nil)

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/salary-import/s-1/progress", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"submitted":500,"total":1200,"chunk":1,"chunks":3,"skipped_chunks":0}`, rr.Body.String())
}

func TestGetReference_WithWarnings(t *testing.T) {
	m := new(MockSessions)
	m.On("Reference", mock.Anything, "s-1").Return(&salary.Reference{
		Processes: []storage.ProcessRef{{ID: 7, Name: "铺板"}},
		Warnings:  []string{"failed to load workers"},
	}, nil)

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/salary-import/s-1/reference", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var got ReferenceResponse
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, 0, got.Workers)
	assert.Equal(t, 1, got.Processes)
	assert.Equal(t, []string{"failed to load workers"}, got.Warnings)
}

func TestGetReference_Failure(t *testing.T) {
	m := new(MockSessions)
	m.On("Reference", mock.Anything, "s-1").Return(nil, errors.New("boom"))

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/salary-import/s-1/reference", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
