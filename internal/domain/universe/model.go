package universe

import (
	"slices"
	"time"
)

// Status is the publication state of a universe.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// MaxRating is the top of the rating scale.
const MaxRating = 5.0

// Universe is a story world owned by a creator.
type Universe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	Genre       string    `json:"genre"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Rating      float64   `json:"rating"`
	Status      Status    `json:"status"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u Universe) clone() Universe {
	u.Tags = slices.Clone(u.Tags)
	return u
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	CreatorID string
	Genre     string
	Status    Status
}

func (f Filter) match(u Universe) bool {
	if f.CreatorID != "" && u.CreatorID != f.CreatorID {
		return false
	}
	if f.Genre != "" && u.Genre != f.Genre {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	return true
}

// CreateRequest defines universe creation inputs.
type CreateRequest struct {
	Title       string
	Description string
	CreatorID   string
	CreatorName string
	Genre       string
	Thumbnail   string
	Rating      float64
	Status      Status
	Tags        []string
}

// Patch replaces the top-level fields that are set. A nil Tags leaves tags unchanged.
type Patch struct {
	Title       *string
	Description *string
	Genre       *string
	Thumbnail   *string
	Rating      *float64
	Status      *Status
	Tags        []string
}

func (p Patch) apply(u *Universe) {
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.Genre != nil {
		u.Genre = *p.Genre
	}
	if p.Thumbnail != nil {
		u.Thumbnail = *p.Thumbnail
	}
	if p.Rating != nil {
		u.Rating = clampRating(*p.Rating)
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Tags != nil {
		u.Tags = slices.Clone(p.Tags)
	}
}

func clampRating(r float64) float64 {
	return min(max(r, 0), MaxRating)
}
