package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/store"
	"golang.org/x/sync/errgroup"
)

const defaultDays = 7

// MaxDays is the longest daily series a report may cover.
const MaxDays = 366

// Service computes creator analytics from the universe store and the activity log.
type Service struct {
	gw        repository.Gateway
	universes UniverseLister
	activity  ActivityCounter
	followers FollowerCounter
	reports   *store.Store[Report]
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	inflight atomic.Int32
}

// Option customizes a Service.
type Option func(*Service)

// WithActivity sets the source of the daily series.
func WithActivity(a ActivityCounter) Option {
	return func(s *Service) { s.activity = a }
}

// WithFollowers sets the follower source.
func WithFollowers(f FollowerCounter) Option {
	return func(s *Service) { s.followers = f }
}

// WithNow overrides the clock used for the report window.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new analytics service.
func NewService(gw repository.Gateway, universes UniverseLister, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Days <= 0 {
		cfg.Days = defaultDays
	}
	cfg.Days = min(cfg.Days, MaxDays)
	s := &Service{
		gw:        gw,
		universes: universes,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		reports: store.New(store.Options[Report]{
			Name:   "analytics",
			Logger: logger,
			Key:    func(r Report) string { return r.CreatorID },
			Clone: func(r Report) Report {
				r.Daily = append([]DailyStats(nil), r.Daily...)
				return r
			},
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch recomputes the report for creatorID over the last days days (the
// configured window when days <= 0) and replaces the stored report.
func (s *Service) Fetch(ctx context.Context, creatorID string, days int) (Report, error) {
	if strings.TrimSpace(creatorID) == "" {
		return Report{}, fmt.Errorf("creator id is required: %w", ErrInvalidInput)
	}
	if days <= 0 {
		days = s.cfg.Days
	}
	if days > MaxDays {
		return Report{}, fmt.Errorf("days %d exceeds %d: %w", days, MaxDays, ErrInvalidInput)
	}
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	var (
		metrics   Metrics
		counts    []activity.DayCount
		followers int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.gw == nil {
			return gctx.Err()
		}
		return s.gw.Call(gctx, "analytics.fetch")
	})
	g.Go(func() error {
		metrics = s.aggregate(creatorID)
		return nil
	})
	if s.activity != nil {
		g.Go(func() error {
			var err error
			counts, err = s.activity.DailyCounts(gctx, creatorID, since,
				activity.KindUniverseViewed, activity.KindUniverseLiked)
			return err
		})
	}
	if s.followers != nil {
		g.Go(func() error {
			var err error
			followers, err = s.followers.Followers(gctx, creatorID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("fetching analytics: %w", err)
	}

	metrics.Followers = followers
	report := Report{
		CreatorID: creatorID,
		Metrics:   metrics,
		Daily:     s.series(since, days, counts),
		FetchedAt: now,
	}
	if err := s.reports.Put(report); err != nil {
		return Report{}, fmt.Errorf("storing analytics: %w", err)
	}
	s.logger.Debug("analytics fetched", "creator_id", creatorID, "days", days)
	return report, nil
}

// Report returns the last fetched report for creatorID.
func (s *Service) Report(creatorID string) (Report, error) {
	r, ok := s.reports.Get(creatorID)
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return r, nil
}

// IsLoading reports whether a fetch is in flight.
func (s *Service) IsLoading() bool {
	return s.inflight.Load() > 0
}

func (s *Service) aggregate(creatorID string) Metrics {
	var (
		m      Metrics
		rating float64
	)
	owned := s.universes.List(universe.Filter{CreatorID: creatorID})
	for _, u := range owned {
		m.TotalViews += u.Views
		m.TotalLikes += u.Likes
		rating += u.Rating
	}
	if len(owned) > 0 {
		m.AverageRating = round2(rating / float64(len(owned)))
	}
	if m.TotalViews > 0 {
		m.EngagementRate = round2(float64(m.TotalLikes) / float64(m.TotalViews) * 100)
	}
	m.Revenue = round2(float64(m.TotalViews) * s.cfg.RevenuePerView)
	return m
}

// series builds one entry per day from since, zero-filling days without events.
func (s *Service) series(since time.Time, days int, counts []activity.DayCount) []DailyStats {
	byDay := make(map[string]*DailyStats, days)
	out := make([]DailyStats, days)
	for i := range out {
		out[i].Date = since.AddDate(0, 0, i).Format(activity.DayLayout)
		byDay[out[i].Date] = &out[i]
	}
	for _, c := range counts {
		d, ok := byDay[c.Day]
		if !ok {
			continue
		}
		switch c.Kind {
		case activity.KindUniverseViewed:
			d.Views += c.Count
		case activity.KindUniverseLiked:
			d.Likes += c.Count
		}
	}
	for i := range out {
		out[i].Revenue = round2(float64(out[i].Views) * s.cfg.RevenuePerView)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
