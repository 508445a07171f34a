package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.Entry{
		Kind:     activity.KindUniverseCreated,
		EntityID: "u1",
		Summary:  "created",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListOptions{EntityID: "u1"}).Return([]activity.Entry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.Log(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.Recent(ctx, activity.ListOptions{EntityID: "u1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestActivityService_LogValidation(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.Log(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.Log(context.Background(), &activity.Entry{Kind: activity.KindUniverseLiked}), activity.ErrInvalidInput)
}

func TestActivityService_DailyCountsUsesUTC(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	repo.On("DailyCounts", ctx, "creator", since.UTC(), []activity.Kind{activity.KindUniverseViewed}).
		Return([]activity.DayCount{{Day: "2026-03-01", Kind: activity.KindUniverseViewed, Count: 2}}, nil)

	svc := activity.NewService(repo, nil)
	counts, err := svc.DailyCounts(ctx, "creator", since, activity.KindUniverseViewed)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[0].Count)
	repo.AssertCalled(t, "DailyCounts", ctx, "creator", mock.Anything, mock.Anything)
}
