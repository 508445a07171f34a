package repository

import (
	"context"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
)

// Gateway is the asynchronous data-access boundary every store calls through.
// Call returns once the simulated round trip for op has settled.
type Gateway interface {
	Call(ctx context.Context, op string) error
}

// KeyValue is the synchronous durable storage behind the persistence adapter
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
	List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
	DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds []activity.Kind) ([]activity.DayCount, error)
}
