package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Log logs an activity entry with the current timestamp if missing.
func (s *Service) Log(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Kind == "" || strings.TrimSpace(entry.EntityID) == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Recent lists activity entries with filtering, newest first.
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, opts)
}

// DailyCounts returns per-day counts for an owner's entities since the given time.
func (s *Service) DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds ...Kind) ([]DayCount, error) {
	counts, err := s.repo.DailyCounts(ctx, ownerID, since.UTC(), kinds)
	if err != nil {
		return nil, fmt.Errorf("counting activity: %w", err)
	}
	return counts, nil
}
