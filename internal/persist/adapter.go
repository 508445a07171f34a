// Package persist is the durable key/value boundary the stores read and write through.
// Values are JSON encoded. Reads never fail: a missing, unreadable or corrupt value
// degrades to the caller's default, and a corrupt value is cleared so it does not fail again.
package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/storyverse/internal/repository"
)

// Keys used by the stores. Every component owns a distinct key.
const (
	KeyCurrentUser  = "storyverse.user"
	KeyFavorites    = "storyverse.favorites"
	KeyHighContrast = "storyverse.a11y.high_contrast"
	KeyReduceMotion = "storyverse.a11y.reduce_motion"
	KeyLargeText    = "storyverse.a11y.large_text"
	KeyScreenReader = "storyverse.a11y.screen_reader"
)

// Adapter reads and writes JSON values through a key/value backend.
type Adapter struct {
	backend repository.KeyValue
	logger  *slog.Logger
}

// New creates an adapter over backend.
func New(backend repository.KeyValue, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{backend: backend, logger: logger}
}

// Save encodes value and stores it under key.
func (a *Adapter) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := a.backend.Set(key, string(data)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (a *Adapter) Remove(key string) error {
	if err := a.backend.Remove(key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Load decodes the value stored under key, returning fallback when the key is
// absent, unreadable or malformed.
func Load[T any](a *Adapter, key string, fallback T) T {
	raw, ok, err := a.backend.Get(key)
	if err != nil {
		a.logger.Warn("persisted value unreadable", "key", key, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		a.logger.Warn("discarding malformed persisted value", "key", key, "error", err)
		if rmErr := a.backend.Remove(key); rmErr != nil {
			a.logger.Warn("failed to clear malformed value", "key", key, "error", rmErr)
		}
		return fallback
	}
	return value
}
