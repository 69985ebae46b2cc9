package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"codeduel/internal/api"
	"codeduel/internal/app/harness"
	"codeduel/internal/app/service"
	"codeduel/internal/app/worker"
	"codeduel/internal/domain/catalog"
	"codeduel/internal/domain/repository"
	"codeduel/internal/platform/config"
	"codeduel/internal/platform/sandbox"
)

func main() {
	config.Load()
	cfg := config.AppConfig

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	problems := catalog.New()
	sessions := repository.NewMemorySessionRepository()
	builder := harness.NewBuilder(problems)
	runner := sandbox.NewRunner(cfg.PythonBin, cfg.ExecutionTimeout, logger)
	pool := worker.NewExecutionPool(runner, cfg.MaxConcurrentExecutions, logger)

	matchService := service.NewMatchService(
		sessions, problems, builder, pool,
		cfg.RoundsTotal, cfg.RoundDuration, logger,
	)

	router := api.NewRouter(matchService, cfg.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort, "problems", problems.Count())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
