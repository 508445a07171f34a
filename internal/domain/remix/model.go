package remix

import "time"

// Type is the kind of change a remix makes to its parent universe.
type Type string

const (
	TypeScene     Type = "scene"
	TypeCharacter Type = "character"
	TypeStory     Type = "story"
	TypeVisual    Type = "visual"
	TypeAudio     Type = "audio"
	TypeFull      Type = "full"
)

// Valid reports whether t is a known remix type.
func (t Type) Valid() bool {
	switch t {
	case TypeScene, TypeCharacter, TypeStory, TypeVisual, TypeAudio, TypeFull:
		return true
	}
	return false
}

// Status is the publication state of a remix.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Version is a derivative of another creator's universe. ParentUniverseID is
// a soft reference: it is never validated and may outlive the parent.
type Version struct {
	ID                string    `json:"id"`
	UniverseID        string    `json:"universe_id"`
	ParentUniverseID  string    `json:"parent_universe_id"`
	ParentCreatorID   string    `json:"parent_creator_id"`
	ParentCreatorName string    `json:"parent_creator_name"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	CreatorID         string    `json:"creator_id"`
	CreatorName       string    `json:"creator_name"`
	Type              Type      `json:"type"`
	ChangesSummary    string    `json:"changes_summary"`
	Status            Status    `json:"status"`
	Views             int64     `json:"views"`
	Likes             int64     `json:"likes"`
	CreditsGiven      bool      `json:"credits_given"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	UniverseID       string
	ParentUniverseID string
	CreatorID        string
	Type             Type
}

func (f Filter) match(v Version) bool {
	switch {
	case f.UniverseID != "" && v.UniverseID != f.UniverseID:
		return false
	case f.ParentUniverseID != "" && v.ParentUniverseID != f.ParentUniverseID:
		return false
	case f.CreatorID != "" && v.CreatorID != f.CreatorID:
		return false
	case f.Type != "" && v.Type != f.Type:
		return false
	}
	return true
}

// CreateRequest defines remix creation inputs.
type CreateRequest struct {
	UniverseID        string
	ParentUniverseID  string
	ParentCreatorID   string
	ParentCreatorName string
	Title             string
	Description       string
	CreatorID         string
	CreatorName       string
	Type              Type
	ChangesSummary    string
}

// Patch replaces the top-level fields that are set.
type Patch struct {
	Title          *string
	Description    *string
	ChangesSummary *string
	Type           *Type
}

func (p Patch) apply(v *Version) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.ChangesSummary != nil {
		v.ChangesSummary = *p.ChangesSummary
	}
	if p.Type != nil {
		v.Type = *p.Type
	}
}
