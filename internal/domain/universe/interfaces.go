package universe

import (
	"context"

	"github.com/rpggio/storyverse/internal/domain/activity"
)

// ActivityLog records universe events for analytics.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
