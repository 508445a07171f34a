package search

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFilter indicates a filter outside the supported vocabulary.
var ErrInvalidFilter = errors.New("invalid search filter")

// ResultType is the entity space a result comes from.
type ResultType string

const (
	TypeUniverse ResultType = "universe"
	TypeCreator  ResultType = "creator"
	TypeStory    ResultType = "story"
	TypeTag      ResultType = "tag"
)

// SortBy orders results.
type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortViews     SortBy = "views"
	SortRating    SortBy = "rating"
	SortNew       SortBy = "new"
)

// Metadata carries the ranking fields of a result.
type Metadata struct {
	Views     int64     `json:"views,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	Creator   string    `json:"creator,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Result is one match. Results are recomputed on every search.
type Result struct {
	ID          string     `json:"id"`
	Type        ResultType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Metadata    *Metadata  `json:"metadata,omitempty"`
}

// Creator is an entry of the creator directory.
type Creator struct {
	ID        string
	Name      string
	Specialty string
	Followers int64
	Rating    float64
}

// Filters constrain a search. Genre and MinRating apply to universe results only.
type Filters struct {
	Types     []ResultType `json:"types,omitempty"` // empty means every type
	Genre     string       `json:"genre,omitempty"`
	MinRating float64      `json:"min_rating,omitempty"`
	SortBy    SortBy       `json:"sort_by,omitempty"`
}

// Validate checks f against the filter vocabulary.
func (f Filters) Validate() error {
	for _, t := range f.Types {
		switch t {
		case TypeUniverse, TypeCreator, TypeStory, TypeTag:
		default:
			return fmt.Errorf("type %q: %w", t, ErrInvalidFilter)
		}
	}
	if f.MinRating < 0 || f.MinRating > 5 {
		return fmt.Errorf("min rating %v: %w", f.MinRating, ErrInvalidFilter)
	}
	switch f.SortBy {
	case "", SortRelevance, SortViews, SortRating, SortNew:
	default:
		return fmt.Errorf("sort %q: %w", f.SortBy, ErrInvalidFilter)
	}
	return nil
}

func (f Filters) wants(t ResultType) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}

// FilterPatch updates the fields that are set. A nil Types leaves types unchanged.
type FilterPatch struct {
	Types     []ResultType
	Genre     *string
	MinRating *float64
	SortBy    *SortBy
}

func (p FilterPatch) apply(f Filters) Filters {
	if p.Types != nil {
		f.Types = append([]ResultType(nil), p.Types...)
	}
	if p.Genre != nil {
		f.Genre = *p.Genre
	}
	if p.MinRating != nil {
		f.MinRating = *p.MinRating
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	return f
}
