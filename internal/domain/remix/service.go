package remix

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

// ActivityLog records remix events for analytics.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Service handles remix operations.
type Service struct {
	store    *store.Store[Version]
	activity ActivityLog
	logger   *slog.Logger
}

// NewService creates a new remix service. activity may be nil.
func NewService(gw repository.Gateway, activity ActivityLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store: store.New(store.Options[Version]{
			Name:    "remix",
			Gateway: gw,
			Logger:  logger,
			Key:     func(v Version) string { return v.ID },
			Prepare: func(v *Version, id string, now time.Time) {
				v.ID = id
				v.CreatedAt = now
				v.UpdatedAt = now
			},
			Touch: func(v *Version, now time.Time) { v.UpdatedAt = now },
		}),
		activity: activity,
		logger:   logger,
	}
}

// Create creates a draft remix of a parent universe.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Version, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ParentUniverseID) == "" {
		return Version{}, fmt.Errorf("title and parent universe are required: %w", ErrInvalidInput)
	}
	typ := req.Type
	if typ == "" {
		typ = TypeFull
	}
	if !typ.Valid() {
		return Version{}, fmt.Errorf("type %q: %w", typ, ErrInvalidInput)
	}

	v, err := s.store.Create(ctx, Version{
		UniverseID:        req.UniverseID,
		ParentUniverseID:  req.ParentUniverseID,
		ParentCreatorID:   req.ParentCreatorID,
		ParentCreatorName: req.ParentCreatorName,
		Title:             req.Title,
		Description:       req.Description,
		CreatorID:         req.CreatorID,
		CreatorName:       req.CreatorName,
		Type:              typ,
		ChangesSummary:    req.ChangesSummary,
		Status:            StatusDraft,
	})
	if err != nil {
		return Version{}, fmt.Errorf("creating remix: %w", err)
	}
	s.record(ctx, activity.KindRemixCreated, v, "remixed into "+v.Title)
	return v, nil
}

// Get fetches a remix by ID.
func (s *Service) Get(id string) (Version, error) {
	v, ok := s.store.Get(id)
	if !ok {
		return Version{}, ErrRemixNotFound
	}
	return v, nil
}

// List returns the remixes matching f in creation order.
func (s *Service) List(f Filter) []Version {
	return s.store.List(f.match)
}

// Update applies patch to a remix.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Version, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return Version{}, fmt.Errorf("type %q: %w", *patch.Type, ErrInvalidInput)
	}
	v, err := s.store.Update(ctx, id, patch.apply)
	if err != nil {
		return Version{}, mapError("updating remix", err)
	}
	return v, nil
}

// Publish marks a remix as published.
func (s *Service) Publish(ctx context.Context, id string) (Version, error) {
	v, err := s.store.Update(ctx, id, func(v *Version) { v.Status = StatusPublished })
	if err != nil {
		return Version{}, mapError("publishing remix", err)
	}
	s.record(ctx, activity.KindRemixPublished, v, "published "+v.Title)
	return v, nil
}

// GiveCredit marks that the remix credits its parent creator.
func (s *Service) GiveCredit(ctx context.Context, id string) (Version, error) {
	v, err := s.store.Update(ctx, id, func(v *Version) { v.CreditsGiven = true })
	if err != nil {
		return Version{}, mapError("crediting remix", err)
	}
	return v, nil
}

// Delete removes a remix.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return mapError("deleting remix", err)
	}
	return nil
}

// SetCurrent focuses a remix; nil clears the focus.
func (s *Service) SetCurrent(v *Version) {
	s.store.SetCurrent(v)
}

// Current returns the focused remix.
func (s *Service) Current() (Version, bool) {
	return s.store.Current()
}

// IsLoading reports whether a remix operation is in flight.
func (s *Service) IsLoading() bool {
	return s.store.IsLoading()
}

// record logs against the parent creator so remixes count toward their analytics.
func (s *Service) record(ctx context.Context, kind activity.Kind, v Version, summary string) {
	if s.activity == nil {
		return
	}
	entry := &activity.Entry{
		Kind:     kind,
		EntityID: v.ID,
		ActorID:  v.CreatorID,
		OwnerID:  v.ParentCreatorID,
		Summary:  summary,
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "kind", kind, "remix_id", v.ID, "error", err)
	}
}

func mapError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrRemixNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
