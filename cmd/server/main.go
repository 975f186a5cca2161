package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/rowmap/internal/config"
	"github.com/JonMunkholm/rowmap/internal/core"
	_ "github.com/JonMunkholm/rowmap/internal/core/targets" // Register built-in targets and queries
	"github.com/JonMunkholm/rowmap/internal/logging"
	"github.com/JonMunkholm/rowmap/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"db_max_conns", cfg.Database.MaxConns,
		"query_timeout", cfg.Database.QueryTimeout,
		"require_api_key", cfg.Security.RequireAPIKey,
	)
	slog.Debug("configuration", "config", cfg.String())

	// Additional query definitions
	if cfg.Queries.File != "" {
		n, err := core.RegisterFile(cfg.Queries.File)
		if err != nil {
			slog.Error("failed to load query definitions", "file", cfg.Queries.File, "error", err)
			os.Exit(1)
		}
		slog.Info("query definitions loaded", "file", cfg.Queries.File, "count", n)
	}

	// Connect to database
	ctx := context.Background()
	src, closeSource, err := core.OpenSource(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeSource()
	slog.Info("connected to database", "driver", cfg.Database.Driver)

	limiter := core.NewLimiter(cfg.Database.MaxConcurrentQueries, cfg.Database.QueueWait)
	service, err := core.NewService(src, cfg.Database.QueryTimeout, core.WithLimiter(limiter))
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Log registered queries
	slog.Info("queries registered",
		"count", core.QueryCount(),
		"groups", len(core.Groups()),
		"targets", len(core.TargetNames()),
	)
	for _, group := range core.Groups() {
		slog.Debug("query group", "group", group, "queries", len(core.ByGroup(group)))
	}

	server := web.NewServer(service, cfg.Server, cfg.Security)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Let running queries finish before the source closes
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for queries to complete", "active", status.Active)
			if err := service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("queries did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		closeSource()
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
