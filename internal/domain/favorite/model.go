package favorite

import "time"

// Favorite bookmarks a universe. UniverseID is the key; a universe is
// favorited at most once.
type Favorite struct {
	UniverseID  string    `json:"universe_id"`
	Title       string    `json:"title"`
	CreatorName string    `json:"creator_name"`
	AddedAt     time.Time `json:"added_at"`
}
