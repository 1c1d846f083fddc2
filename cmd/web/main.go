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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jaekwang-park/todo-client/internal/app"
	"github.com/jaekwang-park/todo-client/internal/config"
	todohttp "github.com/jaekwang-park/todo-client/internal/http"
	"github.com/jaekwang-park/todo-client/internal/http/handler"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"api_base_url", cfg.API.BaseURL,
		"auth_mode", cfg.Auth.Mode,
		"snapshots_enabled", cfg.SnapshotsEnabled,
		"log_level", cfg.LogLevel,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := app.New(ctx, app.Options{
		Config:     cfg,
		Logger:     logger,
		Registerer: reg,
		Snapshots:  true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	deps := todohttp.Deps{
		Todos:        a.Todos,
		Dashboard:    a.Dashboard,
		Gatherer:     reg,
		ListPageSize: cfg.ListPageSize,
	}
	if a.Snapshots != nil {
		deps.History = a.Snapshots
		deps.HealthChecks = append(deps.HealthChecks, handler.HealthCheck{
			Name:  "database",
			Check: a.DB.PingContext,
		})
	}

	srv := todohttp.NewServer(cfg.ServerPort, logger, deps)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
