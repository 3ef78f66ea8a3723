// Package cli consolidates the startup steps shared by cmd/pocketwise
// and cmd/sync-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pocketwise/internal/config"
	applog "pocketwise/internal/log"
	"pocketwise/internal/storage"
)

// LoadEnvFile loads .env for local development. Missing files are fine;
// containers set real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger and installs it as the default.
// Callers scope it per component with WithComponent.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, exiting the process when
// validation fails.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository, exiting the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
