package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
)

const (
	minSuggestLen  = 2
	maxSuggestions = 5
)

// Sources reads the entity spaces lazily at query time.
type Sources struct {
	Universes func() []universe.Universe
	Creators  func() []Creator
	Stories   func() []remix.Version
}

func (s Sources) universes() []universe.Universe {
	if s.Universes == nil {
		return nil
	}
	return s.Universes()
}

func (s Sources) creators() []Creator {
	if s.Creators == nil {
		return nil
	}
	return s.Creators()
}

func (s Sources) stories() []remix.Version {
	if s.Stories == nil {
		return nil
	}
	var out []remix.Version
	for _, v := range s.Stories() {
		if v.Type == remix.TypeStory {
			out = append(out, v)
		}
	}
	return out
}

func contains(text, needle string) bool {
	return strings.Contains(strings.ToLower(text), needle)
}

// Match scans universes, creators, tags and stories in that order and ranks
// the hits by f.SortBy. Ties keep scan order. q is matched case-insensitively
// but otherwise verbatim, surrounding whitespace included.
func Match(src Sources, q string, f Filters) []Result {
	needle := strings.ToLower(q)
	if needle == "" {
		return nil
	}
	universes := src.universes()

	var results []Result
	if f.wants(TypeUniverse) {
		for _, u := range universes {
			if !universeMatches(u, needle) {
				continue
			}
			if f.Genre != "" && u.Genre != f.Genre {
				continue
			}
			if u.Rating < f.MinRating {
				continue
			}
			results = append(results, Result{
				ID:          u.ID,
				Type:        TypeUniverse,
				Title:       u.Title,
				Description: u.Description,
				Metadata: &Metadata{
					Views:     u.Views,
					Rating:    u.Rating,
					Creator:   u.CreatorName,
					Genre:     u.Genre,
					CreatedAt: u.CreatedAt,
				},
			})
		}
	}
	if f.wants(TypeCreator) {
		for _, c := range src.creators() {
			if !contains(c.Name, needle) && !contains(c.Specialty, needle) {
				continue
			}
			results = append(results, Result{
				ID:          c.ID,
				Type:        TypeCreator,
				Title:       c.Name,
				Description: c.Specialty,
				Metadata:    &Metadata{Views: c.Followers, Rating: c.Rating},
			})
		}
	}
	if f.wants(TypeTag) {
		results = append(results, matchTags(universes, needle)...)
	}
	if f.wants(TypeStory) {
		for _, v := range src.stories() {
			if !contains(v.Title, needle) && !contains(v.Description, needle) {
				continue
			}
			results = append(results, Result{
				ID:          v.ID,
				Type:        TypeStory,
				Title:       v.Title,
				Description: v.Description,
				Metadata: &Metadata{
					Views:     v.Views,
					Creator:   v.CreatorName,
					CreatedAt: v.CreatedAt,
				},
			})
		}
	}

	rank(results, f.SortBy)
	return results
}

func universeMatches(u universe.Universe, needle string) bool {
	if contains(u.Title, needle) || contains(u.Description, needle) {
		return true
	}
	return slices.ContainsFunc(u.Tags, func(tag string) bool { return contains(tag, needle) })
}

// matchTags returns one result per distinct matching tag, in first-seen order.
func matchTags(universes []universe.Universe, needle string) []Result {
	var (
		order []string
		uses  = map[string]int{}
	)
	for _, u := range universes {
		for _, tag := range u.Tags {
			key := strings.ToLower(tag)
			if !strings.Contains(key, needle) {
				continue
			}
			if _, seen := uses[key]; !seen {
				order = append(order, tag)
			}
			uses[key]++
		}
	}
	results := make([]Result, 0, len(order))
	for _, tag := range order {
		n := uses[strings.ToLower(tag)]
		results = append(results, Result{
			ID:          "tag:" + strings.ToLower(tag),
			Type:        TypeTag,
			Title:       tag,
			Description: fmt.Sprintf("%d universes", n),
		})
	}
	return results
}

func rank(results []Result, by SortBy) {
	switch by {
	case SortViews:
		slices.SortStableFunc(results, func(a, b Result) int {
			return cmp.Compare(b.views(), a.views())
		})
	case SortRating:
		slices.SortStableFunc(results, func(a, b Result) int {
			return cmp.Compare(b.rating(), a.rating())
		})
	case SortNew:
		slices.SortStableFunc(results, func(a, b Result) int {
			ta, tb := a.createdAt(), b.createdAt()
			switch {
			case ta == nil && tb == nil:
				return 0
			case ta == nil:
				return 1
			case tb == nil:
				return -1
			}
			return tb.Compare(*ta)
		})
	}
}

func (r Result) views() int64 {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.Views
}

func (r Result) rating() float64 {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.Rating
}

func (r Result) createdAt() *time.Time {
	if r.Metadata == nil || r.Metadata.CreatedAt.IsZero() {
		return nil
	}
	return &r.Metadata.CreatedAt
}

// Suggest returns up to five distinct universe titles and creator names
// containing q. Queries shorter than two characters suggest nothing.
func Suggest(src Sources, q string) []string {
	needle := strings.ToLower(q)
	if utf8.RuneCountInString(needle) < minSuggestLen {
		return nil
	}
	var (
		out  []string
		seen = map[string]bool{}
	)
	add := func(s string) bool {
		key := strings.ToLower(s)
		if !seen[key] && strings.Contains(key, needle) {
			seen[key] = true
			out = append(out, s)
		}
		return len(out) >= maxSuggestions
	}
	for _, u := range src.universes() {
		if add(u.Title) {
			return out
		}
	}
	for _, c := range src.creators() {
		if add(c.Name) {
			return out
		}
	}
	return out
}
