package analytics

import (
	"context"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/domain/universe"
)

// UniverseLister lists universes for aggregation.
type UniverseLister interface {
	List(f universe.Filter) []universe.Universe
}

// ActivityCounter reports per-day event counts for a creator's entities.
type ActivityCounter interface {
	DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds ...activity.Kind) ([]activity.DayCount, error)
}

// FollowerCounter reports a creator's follower count.
type FollowerCounter interface {
	Followers(ctx context.Context, creatorID string) (int64, error)
}
