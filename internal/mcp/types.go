package mcp

import (
	"time"

	"github.com/rpggio/storyverse/internal/companion"
	"github.com/rpggio/storyverse/internal/domain/analytics"
	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/notify"
	"github.com/rpggio/storyverse/internal/search"
)

type CreateUniverseInput struct {
	Title       string   `json:"title" jsonschema:"universe title"`
	Description string   `json:"description,omitempty" jsonschema:"short pitch of the universe"`
	CreatorID   string   `json:"creator_id,omitempty" jsonschema:"creator user identifier"`
	CreatorName string   `json:"creator_name,omitempty" jsonschema:"creator display name"`
	Genre       string   `json:"genre,omitempty" jsonschema:"genre, e.g. Sci-Fi"`
	Rating      float64  `json:"rating,omitempty" jsonschema:"initial rating, clamped to 0..5"`
	Status      string   `json:"status,omitempty" jsonschema:"draft, published or archived (default draft)"`
	Tags        []string `json:"tags,omitempty" jsonschema:"free-form tags"`
}

type ListUniversesInput struct {
	CreatorID string `json:"creator_id,omitempty" jsonschema:"only universes of this creator"`
	Genre     string `json:"genre,omitempty" jsonschema:"only universes of this genre"`
	Status    string `json:"status,omitempty" jsonschema:"only universes in this status"`
}

type UpdateUniverseInput struct {
	ID          string   `json:"id" jsonschema:"universe identifier"`
	Title       *string  `json:"title,omitempty" jsonschema:"new title"`
	Description *string  `json:"description,omitempty" jsonschema:"new description"`
	Genre       *string  `json:"genre,omitempty" jsonschema:"new genre"`
	Rating      *float64 `json:"rating,omitempty" jsonschema:"new rating, clamped to 0..5"`
	Status      *string  `json:"status,omitempty" jsonschema:"new status"`
	Tags        []string `json:"tags,omitempty" jsonschema:"replacement tags; omit to keep"`
}

type IDInput struct {
	ID string `json:"id" jsonschema:"entity identifier"`
}

type SearchInput struct {
	Query     string   `json:"query" jsonschema:"case-insensitive substring to match"`
	Types     []string `json:"types,omitempty" jsonschema:"result types: universe, creator, story, tag"`
	Genre     string   `json:"genre,omitempty" jsonschema:"universe genre filter"`
	MinRating float64  `json:"min_rating,omitempty" jsonschema:"minimum universe rating"`
	SortBy    string   `json:"sort_by,omitempty" jsonschema:"relevance, views, rating or new"`
}

type AddFavoriteInput struct {
	UniverseID  string `json:"universe_id" jsonschema:"universe identifier"`
	Title       string `json:"title,omitempty" jsonschema:"universe title"`
	CreatorName string `json:"creator_name,omitempty" jsonschema:"creator display name"`
}

type RemoveFavoriteInput struct {
	UniverseID string `json:"universe_id" jsonschema:"universe identifier"`
}

type EmptyInput struct{}

type GetTipInput struct {
	Context string `json:"context,omitempty" jsonschema:"screen context: create, dashboard, remix, collaborate, explore, analytics"`
}

type FetchAnalyticsInput struct {
	CreatorID string `json:"creator_id" jsonschema:"creator user identifier"`
	Days      int    `json:"days,omitempty" jsonschema:"length of the daily series (default from config)"`
}

type CreateRemixInput struct {
	ParentUniverseID  string `json:"parent_universe_id" jsonschema:"universe being remixed"`
	ParentCreatorID   string `json:"parent_creator_id,omitempty" jsonschema:"creator of the parent universe"`
	ParentCreatorName string `json:"parent_creator_name,omitempty" jsonschema:"display name of the parent creator"`
	UniverseID        string `json:"universe_id,omitempty" jsonschema:"universe holding the remix, if any"`
	Title             string `json:"title" jsonschema:"remix title"`
	Description       string `json:"description,omitempty" jsonschema:"remix description"`
	CreatorID         string `json:"creator_id,omitempty" jsonschema:"remixing user identifier"`
	CreatorName       string `json:"creator_name,omitempty" jsonschema:"remixing user display name"`
	Type              string `json:"type,omitempty" jsonschema:"scene, character, story, visual, audio or full (default full)"`
	ChangesSummary    string `json:"changes_summary,omitempty" jsonschema:"what the remix changes"`
}

type ListRemixesInput struct {
	ParentUniverseID string `json:"parent_universe_id,omitempty" jsonschema:"only remixes of this universe"`
	CreatorID        string `json:"creator_id,omitempty" jsonschema:"only remixes by this creator"`
	Type             string `json:"type,omitempty" jsonschema:"only remixes of this type"`
}

type UniverseView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CreatorID   string   `json:"creator_id,omitempty"`
	CreatorName string   `json:"creator_name,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Views       int64    `json:"views"`
	Likes       int64    `json:"likes"`
	Rating      float64  `json:"rating"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type UniverseListResult struct {
	Universes []UniverseView `json:"universes"`
}

type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type SearchResultView struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Views       int64   `json:"views,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Creator     string  `json:"creator,omitempty"`
	Genre       string  `json:"genre,omitempty"`
}

type SearchResult struct {
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type FavoriteView struct {
	UniverseID  string `json:"universe_id"`
	Title       string `json:"title,omitempty"`
	CreatorName string `json:"creator_name,omitempty"`
	AddedAt     string `json:"added_at"`
}

type FavoriteListResult struct {
	Favorites []FavoriteView `json:"favorites"`
}

type RemoveFavoriteResult struct {
	UniverseID string `json:"universe_id"`
	Removed    bool   `json:"removed"`
}

type NotificationView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
	Dismissible bool   `json:"dismissible"`
	CreatedAt   string `json:"created_at"`
}

type NotificationListResult struct {
	Notifications []NotificationView `json:"notifications"`
}

type DismissResult struct {
	ID        string `json:"id"`
	Dismissed bool   `json:"dismissed"`
}

type TipResult struct {
	Context string `json:"context"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type DailyStatsView struct {
	Date    string  `json:"date"`
	Views   int64   `json:"views"`
	Likes   int64   `json:"likes"`
	Revenue float64 `json:"revenue"`
}

type AnalyticsResult struct {
	CreatorID      string           `json:"creator_id"`
	TotalViews     int64            `json:"total_views"`
	TotalLikes     int64            `json:"total_likes"`
	Followers      int64            `json:"followers"`
	AverageRating  float64          `json:"average_rating"`
	EngagementRate float64          `json:"engagement_rate"`
	Revenue        float64          `json:"revenue"`
	Daily          []DailyStatsView `json:"daily"`
	FetchedAt      string           `json:"fetched_at"`
}

type RemixView struct {
	ID                string `json:"id"`
	UniverseID        string `json:"universe_id,omitempty"`
	ParentUniverseID  string `json:"parent_universe_id"`
	ParentCreatorName string `json:"parent_creator_name,omitempty"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	CreatorID         string `json:"creator_id,omitempty"`
	CreatorName       string `json:"creator_name,omitempty"`
	Type              string `json:"type"`
	ChangesSummary    string `json:"changes_summary,omitempty"`
	Status            string `json:"status"`
	CreditsGiven      bool   `json:"credits_given"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type RemixListResult struct {
	Remixes []RemixView `json:"remixes"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func universeView(u universe.Universe) UniverseView {
	return UniverseView{
		ID:          u.ID,
		Title:       u.Title,
		Description: u.Description,
		CreatorID:   u.CreatorID,
		CreatorName: u.CreatorName,
		Genre:       u.Genre,
		Views:       u.Views,
		Likes:       u.Likes,
		Rating:      u.Rating,
		Status:      string(u.Status),
		Tags:        u.Tags,
		CreatedAt:   formatTime(u.CreatedAt),
		UpdatedAt:   formatTime(u.UpdatedAt),
	}
}

func searchResultView(r search.Result) SearchResultView {
	v := SearchResultView{
		ID:          r.ID,
		Type:        string(r.Type),
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Metadata != nil {
		v.Views = r.Metadata.Views
		v.Rating = r.Metadata.Rating
		v.Creator = r.Metadata.Creator
		v.Genre = r.Metadata.Genre
	}
	return v
}

func favoriteView(f favorite.Favorite) FavoriteView {
	return FavoriteView{
		UniverseID:  f.UniverseID,
		Title:       f.Title,
		CreatorName: f.CreatorName,
		AddedAt:     formatTime(f.AddedAt),
	}
}

func notificationView(n notify.Notification) NotificationView {
	v := NotificationView{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		DurationMs:  n.Duration.Milliseconds(),
		Dismissible: n.Dismissible,
		CreatedAt:   formatTime(n.CreatedAt),
	}
	if n.Action != nil {
		v.ActionLabel = n.Action.Label
	}
	return v
}

func tipResult(context string, t companion.Tip) TipResult {
	return TipResult{Context: context, Title: t.Title, Message: t.Message}
}

func analyticsResult(r analytics.Report) AnalyticsResult {
	daily := make([]DailyStatsView, 0, len(r.Daily))
	for _, d := range r.Daily {
		daily = append(daily, DailyStatsView(d))
	}
	return AnalyticsResult{
		CreatorID:      r.CreatorID,
		TotalViews:     r.Metrics.TotalViews,
		TotalLikes:     r.Metrics.TotalLikes,
		Followers:      r.Metrics.Followers,
		AverageRating:  r.Metrics.AverageRating,
		EngagementRate: r.Metrics.EngagementRate,
		Revenue:        r.Metrics.Revenue,
		Daily:          daily,
		FetchedAt:      formatTime(r.FetchedAt),
	}
}

func remixView(v remix.Version) RemixView {
	return RemixView{
		ID:                v.ID,
		UniverseID:        v.UniverseID,
		ParentUniverseID:  v.ParentUniverseID,
		ParentCreatorName: v.ParentCreatorName,
		Title:             v.Title,
		Description:       v.Description,
		CreatorID:         v.CreatorID,
		CreatorName:       v.CreatorName,
		Type:              string(v.Type),
		ChangesSummary:    v.ChangesSummary,
		Status:            string(v.Status),
		CreditsGiven:      v.CreditsGiven,
		CreatedAt:         formatTime(v.CreatedAt),
		UpdatedAt:         formatTime(v.UpdatedAt),
	}
}
