package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salary-import/internal/salary"
)

type Checker interface {
	CheckWorkers(ctx context.Context, id string) (salary.CheckResult, error)
	CheckPrices(ctx context.Context, id string) (salary.CheckResult, error)
}

func CheckWorkers(log *slog.Logger, checker Checker) http.HandlerFunc {
	return handle(log, "handlers.salary_import.CheckWorkers", checker.CheckWorkers)
}

func CheckPrices(log *slog.Logger, checker Checker) http.HandlerFunc {
	return handle(log, "handlers.salary_import.CheckPrices", checker.CheckPrices)
}

func handle(log *slog.Logger, op string, pass func(context.Context, string) (salary.CheckResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		res, err := pass(ctx, id)
		if err != nil {
			switch {
			case errors.Is(err, salary.ErrSessionNotFound):
				log.With(slog.String("op", op), slog.String("session", id)).Warn("session not found")
				http.Error(w, "Import session not found", http.StatusNotFound)
			case errors.Is(err, salary.ErrSubmitInProgress):
				http.Error(w, "Submission in progress", http.StatusConflict)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("check failed")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("check done",
			slog.String("op", op),
			slog.String("session", id),
			slog.Int("unmatched", res.Unmatched),
			slog.Int("warnings", len(res.Warnings)),
		)

		render.JSON(w, r, res)
	}
}
