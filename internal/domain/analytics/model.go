package analytics

import "time"

// Metrics are a creator's aggregate counters.
type Metrics struct {
	TotalViews     int64   `json:"total_views"`
	TotalLikes     int64   `json:"total_likes"`
	Followers      int64   `json:"followers"`
	AverageRating  float64 `json:"average_rating"`
	EngagementRate float64 `json:"engagement_rate"` // likes per 100 views
	Revenue        float64 `json:"revenue"`
}

// DailyStats is one day of the time series.
type DailyStats struct {
	Date    string  `json:"date"` // 2006-01-02, UTC
	Views   int64   `json:"views"`
	Likes   int64   `json:"likes"`
	Revenue float64 `json:"revenue"`
}

// Report is everything fetched for one creator. Each fetch replaces the
// previous report wholesale.
type Report struct {
	CreatorID string       `json:"creator_id"`
	Metrics   Metrics      `json:"metrics"`
	Daily     []DailyStats `json:"daily"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Config tunes report computation.
type Config struct {
	RevenuePerView float64
	Days           int
}
