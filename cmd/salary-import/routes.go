package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	generate_excel "salary-import/http-server/generate-report/generate-excel"
	"salary-import/http-server/salary-import/check"
	"salary-import/http-server/salary-import/discard"
	"salary-import/http-server/salary-import/export"
	getimport "salary-import/http-server/salary-import/get"
	"salary-import/http-server/salary-import/submit"
	"salary-import/http-server/salary-import/upload"
	"salary-import/internal/config"
	"salary-import/internal/middleware/auth"
	"salary-import/internal/salary"
	genexcel "salary-import/internal/service/generate-excel"
)

func routes(cfg config.Config, log *slog.Logger, svc *salary.Service, genService *genexcel.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(auth.ForwardToken)

	maxUpload := cfg.Import.MaxUploadMB << 20

	router.Route("/api/salary-import", func(r chi.Router) {
		r.Post("/upload", upload.Upload(log, svc, maxUpload))

		r.Get("/{id}", getimport.GetSession(log, svc))
		r.Delete("/{id}", discard.Discard(log, svc))
		r.Get("/{id}/reference", getimport.GetReference(log, svc))
		r.Get("/{id}/progress", getimport.GetProgress(log, svc))

		r.Post("/{id}/check-workers", check.CheckWorkers(log, svc))
		r.Post("/{id}/check-prices", check.CheckPrices(log, svc))
		r.Post("/{id}/submit", submit.Submit(log, svc, cfg.HTTPServer.SubmitTimeout))

		r.Get("/{id}/export", export.ExportSession(log, svc, genexcel.ExportSession))
	})

	router.Get("/api/report/wages", generate_excel.GenerateWageReport(log, genService))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return router
}
