package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/domain/analytics"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/stretchr/testify/require"
)

type universes []universe.Universe

func (u universes) List(f universe.Filter) []universe.Universe {
	var out []universe.Universe
	for _, x := range u {
		if f.CreatorID == "" || x.CreatorID == f.CreatorID {
			out = append(out, x)
		}
	}
	return out
}

type counter struct {
	counts []activity.DayCount
	since  time.Time
	err    error
}

func (c *counter) DailyCounts(_ context.Context, _ string, since time.Time, _ ...activity.Kind) ([]activity.DayCount, error) {
	c.since = since
	return c.counts, c.err
}

type followers int64

func (f followers) Followers(context.Context, string) (int64, error) { return int64(f), nil }

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func TestAnalyticsService_FetchAggregates(t *testing.T) {
	src := universes{
		{ID: "a", CreatorID: "c1", Views: 150, Likes: 15, Rating: 4},
		{ID: "b", CreatorID: "c1", Views: 50, Likes: 5, Rating: 5},
		{ID: "z", CreatorID: "other", Views: 1000},
	}
	cnt := &counter{counts: []activity.DayCount{
		{Day: "2026-03-09", Kind: activity.KindUniverseViewed, Count: 4},
		{Day: "2026-03-10", Kind: activity.KindUniverseViewed, Count: 2},
		{Day: "2026-03-10", Kind: activity.KindUniverseLiked, Count: 1},
		{Day: "2026-01-01", Kind: activity.KindUniverseViewed, Count: 99},
	}}

	svc := analytics.NewService(nil, src, analytics.Config{RevenuePerView: 0.01, Days: 3}, nil,
		analytics.WithActivity(cnt), analytics.WithFollowers(followers(42)),
		analytics.WithNow(func() time.Time { return fixedNow }))

	report, err := svc.Fetch(context.Background(), "c1", 0)
	require.NoError(t, err)
	require.Equal(t, analytics.Metrics{
		TotalViews:     200,
		TotalLikes:     20,
		Followers:      42,
		AverageRating:  4.5,
		EngagementRate: 10,
		Revenue:        2,
	}, report.Metrics)
	require.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), cnt.since)
	require.Equal(t, []analytics.DailyStats{
		{Date: "2026-03-08"},
		{Date: "2026-03-09", Views: 4, Revenue: 0.04},
		{Date: "2026-03-10", Views: 2, Likes: 1, Revenue: 0.02},
	}, report.Daily)

	stored, err := svc.Report("c1")
	require.NoError(t, err)
	require.Equal(t, report, stored)
}

func TestAnalyticsService_FetchReplacesWholesale(t *testing.T) {
	src := universes{{ID: "a", CreatorID: "c1", Views: 10}}
	svc := analytics.NewService(nil, &src, analytics.Config{}, nil,
		analytics.WithNow(func() time.Time { return fixedNow }))
	ctx := context.Background()

	first, err := svc.Fetch(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, first.Daily, 7)

	src = universes{}
	second, err := svc.Fetch(ctx, "c1", 2)
	require.NoError(t, err)
	require.Zero(t, second.Metrics.TotalViews)
	require.Len(t, second.Daily, 2)

	stored, err := svc.Report("c1")
	require.NoError(t, err)
	require.Len(t, stored.Daily, 2)
}

func TestAnalyticsService_FetchFailureKeepsPreviousReport(t *testing.T) {
	cnt := &counter{}
	svc := analytics.NewService(nil, universes{}, analytics.Config{}, nil, analytics.WithActivity(cnt))
	ctx := context.Background()

	_, err := svc.Fetch(ctx, "c1", 1)
	require.NoError(t, err)

	cnt.err = errors.New("db locked")
	_, err = svc.Fetch(ctx, "c1", 1)
	require.ErrorContains(t, err, "db locked")

	_, err = svc.Report("c1")
	require.NoError(t, err)
	require.False(t, svc.IsLoading())
}

func TestAnalyticsService_Validation(t *testing.T) {
	svc := analytics.NewService(nil, universes{}, analytics.Config{}, nil)
	_, err := svc.Fetch(context.Background(), " ", 0)
	require.ErrorIs(t, err, analytics.ErrInvalidInput)
	_, err = svc.Report("nobody")
	require.ErrorIs(t, err, analytics.ErrReportNotFound)
}

func TestAnalyticsService_DaysCapped(t *testing.T) {
	ctx := context.Background()
	svc := analytics.NewService(nil, universes{}, analytics.Config{}, nil, analytics.WithNow(func() time.Time { return fixedNow }))

	_, err := svc.Fetch(ctx, "creator-1", 1<<40)
	require.ErrorIs(t, err, analytics.ErrInvalidInput)
	_, err = svc.Fetch(ctx, "creator-1", analytics.MaxDays+1)
	require.ErrorIs(t, err, analytics.ErrInvalidInput)
	_, err = svc.Report("creator-1")
	require.ErrorIs(t, err, analytics.ErrReportNotFound)

	report, err := svc.Fetch(ctx, "creator-1", analytics.MaxDays)
	require.NoError(t, err)
	require.Len(t, report.Daily, analytics.MaxDays)
}

func TestAnalyticsService_ConfiguredWindowCapped(t *testing.T) {
	svc := analytics.NewService(nil, universes{}, analytics.Config{Days: 10_000}, nil, analytics.WithNow(func() time.Time { return fixedNow }))

	report, err := svc.Fetch(context.Background(), "creator-1", 0)
	require.NoError(t, err)
	require.Len(t, report.Daily, analytics.MaxDays)
}
