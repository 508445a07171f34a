package favorite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/persist"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/store"
)

// ActivityLog records favorite events.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Service manages the current user's favorites. The whole list is hydrated
// from and written back to durable storage.
type Service struct {
	store    *store.Store[Favorite]
	activity ActivityLog
	logger   *slog.Logger
}

// NewService creates a favorites service hydrated from adapter. adapter and
// activity may be nil.
func NewService(gw repository.Gateway, adapter *persist.Adapter, activity ActivityLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := store.Options[Favorite]{
		Name:    "favorites",
		Gateway: gw,
		Logger:  logger,
		Key:     func(f Favorite) string { return f.UniverseID },
		Prepare: func(f *Favorite, _ string, now time.Time) { f.AddedAt = now },
	}
	if adapter != nil {
		opts.Initial = persist.Load(adapter, persist.KeyFavorites, []Favorite{})
		opts.Persist = func(items []Favorite) error { return adapter.Save(persist.KeyFavorites, items) }
	}
	return &Service{store: store.New(opts), activity: activity, logger: logger}
}

// Add favorites a universe. Adding an existing favorite returns it unchanged.
func (s *Service) Add(ctx context.Context, f Favorite) (Favorite, error) {
	if strings.TrimSpace(f.UniverseID) == "" {
		return Favorite{}, fmt.Errorf("universe id is required: %w", ErrInvalidInput)
	}
	if existing, ok := s.store.Get(f.UniverseID); ok {
		return existing, nil
	}

	added, err := s.store.Create(ctx, Favorite{UniverseID: f.UniverseID, Title: f.Title, CreatorName: f.CreatorName})
	if errors.Is(err, repository.ErrConflict) {
		// Added concurrently.
		existing, _ := s.store.Get(f.UniverseID)
		return existing, nil
	}
	if err != nil {
		return Favorite{}, fmt.Errorf("adding favorite: %w", err)
	}
	s.record(ctx, activity.KindFavoriteAdded, added.UniverseID, "favorited "+added.Title)
	return added, nil
}

// Remove unfavorites a universe.
func (s *Service) Remove(ctx context.Context, universeID string) error {
	if err := s.store.Remove(ctx, universeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("removing favorite: %w", ErrFavoriteNotFound)
		}
		return fmt.Errorf("removing favorite: %w", err)
	}
	s.record(ctx, activity.KindFavoriteRemoved, universeID, "unfavorited")
	return nil
}

// Toggle adds the favorite when absent and removes it otherwise. It reports
// whether the universe is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, f Favorite) (bool, error) {
	if s.IsFavorite(f.UniverseID) {
		return false, s.Remove(ctx, f.UniverseID)
	}
	_, err := s.Add(ctx, f)
	return err == nil, err
}

// IsFavorite reports whether universeID is a favorite.
func (s *Service) IsFavorite(universeID string) bool {
	_, ok := s.store.Get(universeID)
	return ok
}

// List returns favorites in the order they were added.
func (s *Service) List() []Favorite {
	return s.store.List(nil)
}

// Clear removes every favorite.
func (s *Service) Clear() error {
	if err := s.store.Replace(nil); err != nil {
		return fmt.Errorf("clearing favorites: %w", err)
	}
	return nil
}

// IsLoading reports whether a favorites operation is in flight.
func (s *Service) IsLoading() bool {
	return s.store.IsLoading()
}

func (s *Service) record(ctx context.Context, kind activity.Kind, universeID, summary string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Log(ctx, &activity.Entry{Kind: kind, EntityID: universeID, Summary: summary}); err != nil {
		s.logger.Warn("failed to log activity", "kind", kind, "universe_id", universeID, "error", err)
	}
}
