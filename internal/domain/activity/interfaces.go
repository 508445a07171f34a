package activity

import (
	"context"
	"time"
)

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds []Kind) ([]DayCount, error)
}
