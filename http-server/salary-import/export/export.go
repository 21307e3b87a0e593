package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"salary-import/internal/salary"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SessionReader interface {
	Session(id string) (*salary.SessionView, error)
}

// ExportSession streams the reconciled rows back as a workbook so the payroll
// office can fix unmatched names in the original file.
func ExportSession(log *slog.Logger, sessions SessionReader, export func(*salary.SessionView) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.ExportSession"

		id := chi.URLParam(r, "id")

		view, err := sessions.Session(id)
		if err != nil {
			if errors.Is(err, salary.ErrSessionNotFound) {
				http.Error(w, "Import session not found", http.StatusNotFound)
				return
			}
			log.Error("failed to read session", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := export(view)
		if err != nil {
			log.Error("failed to build workbook", slog.String("op", op), slog.String("session", id), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		base := strings.TrimSuffix(view.FileName, ".xlsx")
		base = strings.TrimSuffix(base, ".xls")
		fileName := fmt.Sprintf("%s_核对.xlsx", base)

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(fileName))
		w.Write(data)
	}
}
