package check

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
)

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) CheckWorkers(ctx context.Context, id string) (salary.CheckResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(salary.CheckResult), args.Error(1)
}

func (m *MockChecker) CheckPrices(ctx context.Context, id string) (salary.CheckResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(salary.CheckResult), args.Error(1)
}

func newRouter(c Checker) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Post("/api/salary-import/{id}/check-workers", CheckWorkers(log, c))
	r.Post("/api/salary-import/{id}/check-prices", CheckPrices(log, c))
	return r
}

func TestCheckWorkers(t *testing.T) {
	m := new(MockChecker)
	res := salary.CheckResult{Unmatched: 2, Summary: salary.Summary{Total: 5, UnmatchedWorkers: 2, Pending: 3}}
	m.On("CheckWorkers", mock.Anything, "s-1").Return(res, nil)

	rr := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/salary-import/s-1/check-workers", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var got salary.CheckResult
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, res, got)
	m.AssertNotCalled(t, "CheckPrices", mock.Anything, mock.Anything)
}

func TestCheckPrices_Errors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{salary.ErrSessionNotFound, http.StatusNotFound},
		{salary.ErrSubmitInProgress, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		m := new(MockChecker)
		m.On("CheckPrices", mock.Anything, "s-1").Return(salary.CheckResult{}, tc.err)

		rr := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/salary-import/s-1/check-prices", nil))

		assert.Equal(t, tc.code, rr.Code, tc.err.Error())
	}
}
