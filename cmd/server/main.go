package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/iudanet/deltasync/internal/server/handlers"
	"github.com/iudanet/deltasync/internal/server/jwt"
	"github.com/iudanet/deltasync/internal/server/middleware"
	"github.com/iudanet/deltasync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

type config struct {
	addr            string
	dbPath          string
	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// parseConfig читает настройки из флагов с фолбэком на переменные окружения
func parseConfig() (config, error) {
	cfg := config{}

	flag.StringVar(&cfg.addr, "addr", envOr("DELTASYNC_ADDR", ":8080"), "Listen address")
	flag.StringVar(&cfg.dbPath, "db", envOr("DELTASYNC_DB", "deltasync-server.db"), "Path to SQLite database")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("DELTASYNC_JWT_SECRET"), "JWT signing secret")
	flag.DurationVar(&cfg.accessTokenTTL, "access-ttl", 15*time.Minute, "Access token TTL")
	flag.DurationVar(&cfg.refreshTokenTTL, "refresh-ttl", 30*24*time.Hour, "Refresh token TTL")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if cfg.jwtSecret == "" {
		return cfg, fmt.Errorf("jwt secret is required (flag -jwt-secret or env DELTASYNC_JWT_SECRET)")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.DateTime,
	}))

	cfg, err := parseConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	jwtService := jwt.NewService(cfg.jwtSecret, cfg.accessTokenTTL, cfg.refreshTokenTTL)

	authHandler := handlers.NewAuthHandler(logger, store, store, jwtService)
	syncHandler := handlers.NewSyncHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	authLimit := middleware.RateLimit(10, time.Minute, logger)
	requireAuth := middleware.Auth(logger, jwtService)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/auth/register", authLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("GET /api/v1/auth/salt/{username}", authLimit(http.HandlerFunc(authHandler.GetSalt)))
	mux.Handle("POST /api/v1/auth/login", authLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/auth/refresh", authLimit(http.HandlerFunc(authHandler.Refresh)))
	mux.Handle("POST /api/v1/sync/push", requireAuth(http.HandlerFunc(syncHandler.Push)))
	mux.Handle("GET /api/v1/sync/changes", requireAuth(http.HandlerFunc(syncHandler.Pull)))
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	handler := middleware.Recovery(logger)(
		middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(mux),
	)

	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Периодическая подчистка просроченных refresh-токенов
	go tokenJanitor(ctx, logger, store)

	errC := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// tokenJanitor удаляет просроченные refresh-токены до отмены контекста
func tokenJanitor(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("failed to delete expired tokens", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("expired refresh tokens deleted", "count", deleted)
			}
		}
	}
}

func printVersion() {
	fmt.Printf("DeltaSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
