package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salary-import/internal/backend"
	"salary-import/internal/config"
	"salary-import/internal/salary"
	genexcel "salary-import/internal/service/generate-excel"
	"salary-import/internal/storage/journal"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, cfg.ErrorLog)

	chunks, closeJournal, err := journal.Open(*cfg)
	if err != nil {
		log.Error("failed to open chunk journal", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeJournal()

	client := backend.New(cfg.Backend)

	svc := salary.NewService(
		log,
		client,
		salary.NewSubmitter(log, client, chunks, cfg.Import.BatchSize),
		salary.NewSessions(salary.DefaultSessionTTL),
	)
	genService := genexcel.NewGenerateService(client)

	log.Info("server started",
		slog.String("address", cfg.Address),
		slog.String("backend", cfg.Backend.BaseURL),
		slog.String("journal", cfg.Journal.Driver),
	)

	srv := &http.Server{
		Addr:        cfg.Address,
		Handler:     routes(*cfg, log, svc, genService),
		ReadTimeout: cfg.HTTPServer.Timeout,
		// submit holds the connection for the whole chunk loop
		WriteTimeout: cfg.HTTPServer.SubmitTimeout + cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
