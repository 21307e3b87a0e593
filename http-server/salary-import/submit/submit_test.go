package submit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salary-import/internal/backend"
	"salary-import/internal/salary"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, id string) (salary.SubmitResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(salary.SubmitResult), args.Error(1)
}

func newRouter(s ImportSubmitter) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Post("/api/salary-import/{id}/submit", Submit(log, s, time.Minute))
	return r
}

func post(h http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/salary-import/s-1/submit", nil))
	return rr
}

func TestSubmit_Success(t *testing.T) {
	m := new(MockSubmitter)
	res := salary.SubmitResult{ImportID: "imp", Total: 1200, Submitted: 1200, Chunks: 3, SkippedChunks: 1}
	m.On("Submit", mock.Anything, "s-1").Return(res, nil)

	rr := post(newRouter(m))
	require.Equal(t, http.StatusOK, rr.Code)

	var got Response
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, res, got.SubmitResult)
	assert.Empty(t, got.Error)
}

func TestSubmit_BackendFailureReportsPartialProgress(t *testing.T) {
	m := new(MockSubmitter)
	partial := salary.SubmitResult{ImportID: "imp", Total: 1200, Submitted: 500, Chunks: 3}
	err := fmt.Errorf("salary.Submit: chunk 2 of 3: %w", &backend.StatusError{Endpoint: "/api/wage_logs/batch", Code: 500, Body: "db down"})
	m.On("Submit", mock.Anything, "s-1").Return(partial, err)

	rr := post(newRouter(m))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var got Response
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, 500, got.Submitted)
	assert.Contains(t, got.Error, "chunk 2 of 3")
}

func TestSubmit_Refusals(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{salary.ErrSessionNotFound, http.StatusNotFound},
		{salary.ErrSubmitInProgress, http.StatusConflict},
		{fmt.Errorf("salary.Submit: 3 of 10 rows: %w", salary.ErrNotReconciled), http.StatusBadRequest},
		{fmt.Errorf("salary.Submit: %w", salary.ErrNothingToSubmit), http.StatusBadRequest},
		{fmt.Errorf("salary.Submit: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		m := new(MockSubmitter)
		m.On("Submit", mock.Anything, "s-1").Return(salary.SubmitResult{}, tc.err)

		assert.Equal(t, tc.code, post(newRouter(m)).Code, tc.err.Error())
	}
}
