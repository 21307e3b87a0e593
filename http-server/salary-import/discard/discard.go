package discard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salary-import/internal/salary"
)

type SessionDiscarder interface {
	Discard(id string) error
}

// Discard drops the session; it does not touch anything already submitted.
func Discard(log *slog.Logger, sessions SessionDiscarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.Discard"

		id := chi.URLParam(r, "id")

		if err := sessions.Discard(id); err != nil {
			if errors.Is(err, salary.ErrSessionNotFound) {
				http.Error(w, "Import session not found", http.StatusNotFound)
				return
			}
			log.Error("failed to discard session", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("session discarded", slog.String("session", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
