package get

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

type SessionReader interface {
	Session(id string) (*salary.SessionView, error)
	Progress(id string) (salary.Progress, error)
	Reference(ctx context.Context, id string) (*salary.Reference, error)
}

func GetSession(log *slog.Logger, sessions SessionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.GetSession"

		id := chi.URLParam(r, "id")

		view, err := sessions.Session(id)
		if err != nil {
			notFoundOrFail(w, log, op, id, err)
			return
		}

		render.JSON(w, r, view)
	}
}

func GetProgress(log *slog.Logger, sessions SessionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.GetProgress"

		id := chi.URLParam(r, "id")

		p, err := sessions.Progress(id)
		if err != nil {
			notFoundOrFail(w, log, op, id, err)
			return
		}

		render.JSON(w, r, p)
	}
}

type ReferenceResponse struct {
	Workers   int      `json:"workers"`
	Processes int      `json:"processes"`
	Prices    int      `json:"prices"`
	Warnings  []string `json:"warnings"`

	Reference *salary.Reference `json:"reference"`
}

// GetReference returns the session's reference snapshot, loading it if the
// upload warm-up has not finished.
func GetReference(log *slog.Logger, sessions SessionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.GetReference"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		ref, err := sessions.Reference(ctx, id)
		if err != nil {
			notFoundOrFail(w, log, op, id, err)
			return
		}

		render.JSON(w, r, ReferenceResponse{
			Workers:   len(ref.Workers),
			Processes: len(ref.Processes),
			Prices:    len(ref.Prices),
			Warnings:  ref.Warnings,
			Reference: ref,
		})
	}
}

func notFoundOrFail(w http.ResponseWriter, log *slog.Logger, op, id string, err error) {
	if errors.Is(err, salary.ErrSessionNotFound) {
		log.With(slog.String("op", op), slog.String("session", id)).Warn("session not found")
		http.Error(w, "Import session not found", http.StatusNotFound)
		return
	}

	log.With(slog.String("op", op), slog.String("session", id), slog.String("error", err.Error())).Error("failed to read session")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
