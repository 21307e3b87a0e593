package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salary-import/internal/salary"
)

const formField = "file"

type SpreadsheetUploader interface {
	Upload(ctx context.Context, data []byte, fileName string) (*salary.SessionView, error)
}

// Upload accepts a multipart spreadsheet and opens an import session for it.
func Upload(log *slog.Logger, uploader SpreadsheetUploader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary_import.Upload"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile(formField)
		if err != nil {
			log.Warn("missing upload", slog.String("error", err.Error()))
			http.Error(w, "Bad request: multipart field 'file' is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			log.Warn("failed to read upload", slog.String("error", err.Error()))
			http.Error(w, "Bad request: cannot read file", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		view, err := uploader.Upload(ctx, data, header.Filename)
		if err != nil {
			if errors.Is(err, salary.ErrEmptySheet) || errors.Is(err, salary.ErrUnsupportedFormat) {
				log.Warn("spreadsheet rejected", slog.String("file", header.Filename), slog.String("error", err.Error()))
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			log.Error("failed to parse spreadsheet", slog.String("file", header.Filename), slog.String("error", err.Error()))
			http.Error(w, "Cannot parse spreadsheet", http.StatusUnprocessableEntity)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, view)
	}
}
