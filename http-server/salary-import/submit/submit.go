package submit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salary-import/internal/backend"
	"salary-import/internal/salary"
)

type ImportSubmitter interface {
	Submit(ctx context.Context, id string) (salary.SubmitResult, error)
}

type Response struct {
	salary.SubmitResult
	Error string `json:"error,omitempty"`
}

// Submit posts the session's rows to the backend. It blocks until every
// chunk is acknowledged or one fails; clients poll the progress route.
func Submit(log *slog.Logger, submitter ImportSubmitter, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.Submit"

		id := chi.URLParam(r, "id")
		log := log.With(slog.String("op", op), slog.String("session", id))

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := submitter.Submit(ctx, id)
		if err != nil {
			var statusErr *backend.StatusError

			switch {
			case errors.Is(err, salary.ErrSessionNotFound):
				http.Error(w, "Import session not found", http.StatusNotFound)
			case errors.Is(err, salary.ErrSubmitInProgress):
				http.Error(w, "Submission already in progress", http.StatusConflict)
			case errors.Is(err, salary.ErrNothingToSubmit), errors.Is(err, salary.ErrNotReconciled):
				log.Warn("submit refused", slog.String("error", err.Error()))
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.As(err, &statusErr):
				log.Error("backend rejected chunk", slog.Int("status", statusErr.Code), slog.String("error", err.Error()))
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, Response{SubmitResult: res, Error: err.Error()})
			case errors.Is(err, context.DeadlineExceeded):
				log.Error("submit timed out", slog.Int("submitted", res.Submitted))
				render.Status(r, http.StatusGatewayTimeout)
				render.JSON(w, r, Response{SubmitResult: res, Error: err.Error()})
			default:
				log.Error("submit failed", slog.String("error", err.Error()))
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, Response{SubmitResult: res, Error: err.Error()})
			}
			return
		}

		log.Info("import submitted",
			slog.String("import_id", res.ImportID),
			slog.Int("submitted", res.Submitted),
			slog.Int("skipped_chunks", res.SkippedChunks),
		)

		render.JSON(w, r, Response{SubmitResult: res})
	}
}
