package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/QuizImport/internal/config"
	"github.com/JonMunkholm/QuizImport/internal/core"
	"github.com/JonMunkholm/QuizImport/internal/logging"
	"github.com/JonMunkholm/QuizImport/internal/metrics"
	"github.com/JonMunkholm/QuizImport/internal/store"
	"github.com/JonMunkholm/QuizImport/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	questions := store.New(pool)
	if err := questions.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	service := core.NewService(questions, web.ResponseNotifier{Fallback: core.SlogNotifier{}}, core.Options{
		MaxFileBytes:       cfg.Import.MaxFileSize,
		EnforceAnswerRange: cfg.Import.EnforceAnswerRange,
		MaxConcurrent:      cfg.Import.MaxConcurrent,
		MaxWait:            cfg.Import.MaxWaitTime,
		Alert: core.AlertDefaults{
			Severity:   cfg.Notify.Severity,
			Duration:   cfg.Notify.Duration,
			Horizontal: cfg.Notify.Horizontal,
			Vertical:   cfg.Notify.Vertical,
		},
		Recorder: metrics.ImportRecorder{},
	})
	for _, def := range service.Formats() {
		slog.Debug("format registered", "format", def.Format, "extensions", def.Extensions)
	}

	server := web.NewServer(service, questions, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.LimiterStatus(); st.Active > 0 {
			slog.Info("waiting for imports to complete", "active", st.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
