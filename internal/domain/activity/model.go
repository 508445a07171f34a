package activity

import "time"

// Kind represents the type of activity event
type Kind string

const (
	KindUniverseCreated     Kind = "universe_created"
	KindUniverseUpdated     Kind = "universe_updated"
	KindUniverseDeleted     Kind = "universe_deleted"
	KindUniverseViewed      Kind = "universe_viewed"
	KindUniverseLiked       Kind = "universe_liked"
	KindRemixCreated        Kind = "remix_created"
	KindRemixPublished      Kind = "remix_published"
	KindFavoriteAdded       Kind = "favorite_added"
	KindFavoriteRemoved     Kind = "favorite_removed"
	KindProjectCreated      Kind = "project_created"
	KindCollaboratorInvited Kind = "collaborator_invited"
	KindCommentAdded        Kind = "comment_added"
)

// Entry represents an event in the activity log
type Entry struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	EntityID  string    `json:"entity_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"` // creator of the entity acted upon
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	EntityID string
	OwnerID  string
	Kinds    []Kind
	Limit    int
	Offset   int
}

// DayCount is the number of entries of one kind logged on one UTC day.
type DayCount struct {
	Day   string `json:"day"` // 2006-01-02
	Kind  Kind   `json:"kind"`
	Count int64  `json:"count"`
}

// DayLayout formats the day bucket of an entry.
const DayLayout = "2006-01-02"
