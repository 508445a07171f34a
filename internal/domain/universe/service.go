package universe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/store"
)

// Service handles universe operations.
type Service struct {
	store    *store.Store[Universe]
	activity ActivityLog
	logger   *slog.Logger
}

// NewService creates a new universe service. activity may be nil.
func NewService(gw repository.Gateway, activity ActivityLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store: store.New(store.Options[Universe]{
			Name:    "universe",
			Gateway: gw,
			Logger:  logger,
			Key:     func(u Universe) string { return u.ID },
			Prepare: func(u *Universe, id string, now time.Time) {
				u.ID = id
				u.CreatedAt = now
				u.UpdatedAt = now
			},
			Touch: func(u *Universe, now time.Time) { u.UpdatedAt = now },
			Clone: Universe.clone,
		}),
		activity: activity,
		logger:   logger,
	}
}

// Create creates a new universe. New universes start as drafts unless a status is given.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Universe, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Universe{}, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return Universe{}, fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	u, err := s.store.Create(ctx, Universe{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
		Genre:       req.Genre,
		Thumbnail:   req.Thumbnail,
		Rating:      clampRating(req.Rating),
		Status:      status,
		Tags:        req.Tags,
	})
	if err != nil {
		return Universe{}, fmt.Errorf("creating universe: %w", err)
	}
	s.record(ctx, activity.KindUniverseCreated, u, "created "+u.Title)
	return u, nil
}

// Get fetches a universe by ID.
func (s *Service) Get(id string) (Universe, error) {
	u, ok := s.store.Get(id)
	if !ok {
		return Universe{}, ErrUniverseNotFound
	}
	return u, nil
}

// List returns the universes matching f in creation order.
func (s *Service) List(f Filter) []Universe {
	return s.store.List(f.match)
}

// Update applies patch to a universe.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Universe, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return Universe{}, fmt.Errorf("status %q: %w", *patch.Status, ErrInvalidInput)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Universe{}, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	u, err := s.mutate(ctx, id, patch.apply)
	if err != nil {
		return Universe{}, err
	}
	s.record(ctx, activity.KindUniverseUpdated, u, "updated "+u.Title)
	return u, nil
}

// Publish marks a universe as published.
func (s *Service) Publish(ctx context.Context, id string) (Universe, error) {
	status := StatusPublished
	return s.Update(ctx, id, Patch{Status: &status})
}

// Archive marks a universe as archived.
func (s *Service) Archive(ctx context.Context, id string) (Universe, error) {
	status := StatusArchived
	return s.Update(ctx, id, Patch{Status: &status})
}

// RecordView increments the view counter.
func (s *Service) RecordView(ctx context.Context, id, viewerID string) (Universe, error) {
	u, err := s.mutate(ctx, id, func(u *Universe) { u.Views++ })
	if err != nil {
		return Universe{}, err
	}
	s.recordBy(ctx, activity.KindUniverseViewed, u, viewerID, "viewed "+u.Title)
	return u, nil
}

// Like increments the like counter.
func (s *Service) Like(ctx context.Context, id, userID string) (Universe, error) {
	u, err := s.mutate(ctx, id, func(u *Universe) { u.Likes++ })
	if err != nil {
		return Universe{}, err
	}
	s.recordBy(ctx, activity.KindUniverseLiked, u, userID, "liked "+u.Title)
	return u, nil
}

// Delete removes a universe.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, known := s.store.Get(id)
	if err := s.store.Remove(ctx, id); err != nil {
		return mapError("deleting universe", err)
	}
	if known {
		s.record(ctx, activity.KindUniverseDeleted, u, "deleted "+u.Title)
	}
	return nil
}

// SetCurrent focuses a universe for detail views; nil clears the focus.
func (s *Service) SetCurrent(u *Universe) {
	s.store.SetCurrent(u)
}

// Current returns the focused universe.
func (s *Service) Current() (Universe, bool) {
	return s.store.Current()
}

// IsLoading reports whether a universe operation is in flight.
func (s *Service) IsLoading() bool {
	return s.store.IsLoading()
}

func (s *Service) mutate(ctx context.Context, id string, apply func(*Universe)) (Universe, error) {
	u, err := s.store.Update(ctx, id, apply)
	if err != nil {
		return Universe{}, mapError("updating universe", err)
	}
	return u, nil
}

func (s *Service) record(ctx context.Context, kind activity.Kind, u Universe, summary string) {
	s.recordBy(ctx, kind, u, u.CreatorID, summary)
}

func (s *Service) recordBy(ctx context.Context, kind activity.Kind, u Universe, actorID, summary string) {
	if s.activity == nil {
		return
	}
	entry := &activity.Entry{
		Kind:     kind,
		EntityID: u.ID,
		ActorID:  actorID,
		OwnerID:  u.CreatorID,
		Summary:  summary,
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "kind", kind, "universe_id", u.ID, "error", err)
	}
}

func mapError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUniverseNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
