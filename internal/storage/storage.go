package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/wishpick/internal/config"
)

// Preference keys shared by the web page (localStorage) and the CLI.
const (
	KeyUserID = "doubanUserId"
	KeyTab    = "doubanTab"
)

// Preferences is a small client-owned key-value store.
type Preferences interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// All returns a copy of every stored pair.
	All(ctx context.Context) (map[string]string, error)

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// NewPreferences opens the backend selected by cfg.Backend.
func NewPreferences(cfg *config.PreferencesConfig, logger *slog.Logger) (Preferences, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryPreferences(), nil
	case "", "file":
		path := cfg.Path
		if path == "" {
			path = config.DefaultPreferencesPath()
		}
		return NewFilePreferences(path, logger)
	case "mongo":
		return NewMongoPreferences(cfg.MongoURI, cfg.Database, cfg.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown preferences backend %q", cfg.Backend)
	}
}
