// Package cli provides common initialization shared by the spendingtracker
// subcommands.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mikezucc/spendingtracker/internal/config"
	applog "github.com/mikezucc/spendingtracker/internal/log"
	"github.com/mikezucc/spendingtracker/internal/store"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenSlot builds the persistence slot for the configured backend.
// The returned close function is a no-op for backends without a handle.
func OpenSlot(logger *applog.Logger, cfg *config.Config) (store.Slot, func() error) {
	switch cfg.StoreBackend {
	case "sqlite":
		slot, err := store.NewSQLiteSlot(cfg.SQLiteDBPath, store.SlotName)
		if err != nil {
			logger.Error("Failed to initialize SQLite slot", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		return slot, slot.Close
	case "memory":
		return store.NewMemorySlot(), func() error { return nil }
	default:
		return store.NewJSONFileSlot(cfg.JSONSlotPath), func() error { return nil }
	}
}
