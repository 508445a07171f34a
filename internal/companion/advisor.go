// Package companion publishes context-aware tips through the notification bus
// and keeps a short list of longer-lived recommendations.
package companion

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"sync"

	"github.com/rpggio/storyverse/internal/notify"
)

// ErrRecommendationNotFound indicates an unknown recommendation id.
var ErrRecommendationNotFound = errors.New("recommendation not found")

// Publisher is the part of the notification bus the advisor uses.
type Publisher interface {
	Recommend(title, message string, action *notify.Action) (string, error)
}

// Tip is one entry of a context pool.
type Tip struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Recommendation is a standing suggestion, independent of the tip of the moment.
type Recommendation struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Read    bool   `json:"read"`
}

var tipPools = map[string][]Tip{
	"create": {
		{"Start with a hook", "Open your universe with a single striking image or question."},
		{"Name your rules", "Write down three laws your world never breaks."},
		{"Tag generously", "Tags make your universe discoverable in search."},
	},
	"dashboard": {
		{"Check your trends", "Views spike after publishing; compare the last seven days."},
		{"Finish a draft", "Drafts are invisible to readers until you publish them."},
	},
	"remix": {
		{"Credit the original", "Giving credit keeps the remix chain healthy."},
		{"Change one thing", "The best remixes alter a single element and follow the consequences."},
	},
	"collaborate": {
		{"Assign roles", "Give reviewers the comment role so drafts stay stable."},
		{"Resolve threads", "Resolved comments keep the discussion focused."},
	},
	"explore": {
		{"Filter by genre", "Narrow results with a genre and a minimum rating."},
		{"Sort by new", "Fresh universes often need their first readers."},
	},
	"analytics": {
		{"Engagement matters", "Likes per view says more than raw views."},
	},
}

var defaultPool = []Tip{
	{"Welcome back", "Pick up where you left off or explore something new."},
	{"Save favorites", "Favorite universes to find them again quickly."},
}

func seedRecommendations() []Recommendation {
	return []Recommendation{
		{ID: "rec-1", Type: "feature", Title: "Try remixing", Message: "Remix a trending universe to reach its audience.", Action: "explore"},
		{ID: "rec-2", Type: "tip", Title: "Complete your profile", Message: "Creators with a bio get more followers.", Action: "profile"},
		{ID: "rec-3", Type: "insight", Title: "Your readers are active at night", Message: "Publishing in the evening may improve reach."},
	}
}

// Advisor is safe for concurrent use.
type Advisor struct {
	bus    Publisher
	logger *slog.Logger
	pick   func(n int) int

	mu      sync.Mutex
	enabled bool
	recs    []Recommendation
}

// Option customizes an Advisor.
type Option func(*Advisor)

// WithPicker replaces the pseudo-random tip selection.
func WithPicker(pick func(n int) int) Option {
	return func(a *Advisor) { a.pick = pick }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Advisor) { a.logger = l }
}

// New creates an enabled advisor publishing through bus.
func New(bus Publisher, opts ...Option) *Advisor {
	a := &Advisor{
		bus:     bus,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		pick:    rand.Intn,
		enabled: true,
		recs:    seedRecommendations(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SmartTip picks a tip for context without publishing it. Unknown contexts
// draw from the default pool.
func (a *Advisor) SmartTip(context string) Tip {
	pool, ok := tipPools[context]
	if !ok {
		pool = defaultPool
	}
	return pool[a.pick(len(pool))]
}

// ShowRecommendations publishes one tip for context. It reports whether a tip
// was published; nothing is published while the advisor is disabled.
func (a *Advisor) ShowRecommendations(context string) (bool, error) {
	if !a.Enabled() {
		return false, nil
	}
	tip := a.SmartTip(context)
	if _, err := a.bus.Recommend(tip.Title, tip.Message, nil); err != nil {
		return false, err
	}
	a.logger.Debug("tip published", "context", context, "title", tip.Title)
	return true, nil
}

func (a *Advisor) SetEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = on
}

func (a *Advisor) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Recommendations returns the standing recommendations.
func (a *Advisor) Recommendations() []Recommendation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.recs)
}

func (a *Advisor) MarkAsRead(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexLocked(id)
	if i < 0 {
		return ErrRecommendationNotFound
	}
	a.recs[i].Read = true
	return nil
}

func (a *Advisor) Dismiss(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexLocked(id)
	if i < 0 {
		return ErrRecommendationNotFound
	}
	a.recs = slices.Delete(a.recs, i, i+1)
	return nil
}

// UnreadCount returns the number of unread recommendations.
func (a *Advisor) UnreadCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.recs {
		if !r.Read {
			n++
		}
	}
	return n
}

func (a *Advisor) indexLocked(id string) int {
	return slices.IndexFunc(a.recs, func(r Recommendation) bool { return r.ID == id })
}
