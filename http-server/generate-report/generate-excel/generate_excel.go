package generate_excel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	genexcel "salary-import/internal/service/generate-excel"
	"salary-import/internal/storage"
)

const dateLayout = "2006-01-02"

type WageReportGenerator interface {
	GenerateWageReport(ctx context.Context, filter storage.WageLogFilter, layout genexcel.Layout) ([]byte, error)
}

// GenerateWageReport serves the wage report workbook. from/to default to the
// current month; worker_id and process_id narrow the query.
func GenerateWageReport(log *slog.Logger, gen WageReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateWageReport"

		q := r.URL.Query()

		layout, err := genexcel.ParseLayout(q.Get("layout"))
		if err != nil {
			http.Error(w, "invalid layout", http.StatusBadRequest)
			return
		}

		now := time.Now()
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		fDate, err := parseDate(q.Get("from"), startOfMonth)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		tDate, err := parseDate(q.Get("to"), now)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		if tDate.Before(fDate) {
			http.Error(w, "to is before from", http.StatusBadRequest)
			return
		}

		filter := storage.WageLogFilter{
			StartDate: fDate.Format(dateLayout),
			EndDate:   tDate.Format(dateLayout),
		}
		if filter.WorkerID, err = parseID(q.Get("worker_id")); err != nil {
			http.Error(w, "invalid worker_id", http.StatusBadRequest)
			return
		}
		if filter.ProcessID, err = parseID(q.Get("process_id")); err != nil {
			http.Error(w, "invalid process_id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateWageReport(ctx, filter, layout)
		if err != nil {
			if errors.Is(err, genexcel.ErrNoWageLogs) {
				http.Error(w, "No wage logs for the selected range", http.StatusNotFound)
				return
			}
			log.Error("failed to generate excel", "op", op, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := genexcel.FileName(layout, filter)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(fileName))
		w.Write(excelBytes)
	}
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse(dateLayout, s)
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
