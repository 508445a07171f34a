// Package search answers "what matches this query under these filters"
// across universes, creators, tags and stories, and keeps the query state of
// one search box: the live query, active filters, results, suggestions and a
// bounded list of recent searches.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rpggio/storyverse/internal/repository"
)

// MaxRecent bounds the recent-search list.
const MaxRecent = 10

// Engine is safe for concurrent use.
type Engine struct {
	src      Sources
	gw       repository.Gateway
	clock    clock.Clock
	debounce time.Duration
	logger   *slog.Logger

	recent *lru.Cache[string, struct{}]

	mu          sync.Mutex
	query       string
	filters     Filters
	results     []Result
	suggestions []string
	// generation identifies the latest issued search; older searches
	// settle without publishing.
	generation uint64
	pending    *clock.Timer

	searching atomic.Int32
}

// Option customizes an Engine.
type Option func(*Engine)

// WithGateway routes every search through gw.
func WithGateway(gw repository.Gateway) Option {
	return func(e *Engine) { e.gw = gw }
}

// WithClock sets the clock driving the debounce.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithDebounce delays SetQuery searches until the query has been stable for d.
// Zero searches on every call.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over src.
func NewEngine(src Sources, opts ...Option) *Engine {
	recent, err := lru.New[string, struct{}](MaxRecent)
	if err != nil {
		panic(fmt.Sprintf("search: recent cache: %v", err))
	}
	e := &Engine{
		src:    src,
		clock:  clock.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		recent: recent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetQuery stores q and refreshes suggestions synchronously. An empty q
// clears the results at once and abandons any pending search; otherwise a
// search runs, after the debounce delay when one is configured.
func (e *Engine) SetQuery(ctx context.Context, q string) error {
	e.mu.Lock()
	e.query = q
	e.suggestions = Suggest(e.src, q)
	gen := e.bumpLocked()
	if q == "" {
		e.results = nil
		e.mu.Unlock()
		return nil
	}
	filters := e.filters
	if e.debounce > 0 {
		detached := context.WithoutCancel(ctx)
		e.pending = e.clock.AfterFunc(e.debounce, func() {
			if _, err := e.run(detached, gen, q, filters); err != nil {
				e.logger.Warn("debounced search failed", "query", q, "error", err)
			}
		})
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	_, err := e.run(ctx, gen, q, filters)
	return err
}

// Search runs q immediately with f, or with the active filters when f is nil,
// publishes the results and returns them.
func (e *Engine) Search(ctx context.Context, q string, f *Filters) ([]Result, error) {
	if f != nil {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	e.mu.Lock()
	filters := e.filters
	if f != nil {
		filters = *f
	}
	gen := e.bumpLocked()
	e.mu.Unlock()

	return e.run(ctx, gen, q, filters)
}

// Submit records q as a recent search, makes it the live query and searches
// without waiting for the debounce.
func (e *Engine) Submit(ctx context.Context, q string) ([]Result, error) {
	e.AddRecent(q)

	e.mu.Lock()
	e.query = q
	e.suggestions = Suggest(e.src, q)
	filters := e.filters
	gen := e.bumpLocked()
	e.mu.Unlock()

	return e.run(ctx, gen, q, filters)
}

// UpdateFilters merges patch into the active filters. When a query is live
// the search re-runs at once with the merged filters.
func (e *Engine) UpdateFilters(ctx context.Context, patch FilterPatch) error {
	e.mu.Lock()
	merged := patch.apply(e.filters)
	if err := merged.Validate(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.filters = merged
	q := e.query
	if q == "" {
		e.mu.Unlock()
		return nil
	}
	gen := e.bumpLocked()
	e.mu.Unlock()

	_, err := e.run(ctx, gen, q, merged)
	return err
}

// ClearSearch resets the query, results and suggestions. Filters and recent
// searches are kept.
func (e *Engine) ClearSearch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bumpLocked()
	e.query = ""
	e.results = nil
	e.suggestions = nil
}

// Close abandons any pending debounced search.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bumpLocked()
}

// Query returns the live query.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Filters returns a copy of the active filters.
func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.filters
	f.Types = slices.Clone(f.Types)
	return f
}

// Results returns the results of the latest settled search.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.results)
}

// Suggestions returns the autocomplete titles for the live query.
func (e *Engine) Suggestions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.suggestions)
}

// IsSearching reports whether a search is waiting on the gateway.
func (e *Engine) IsSearching() bool {
	return e.searching.Load() > 0
}

// AddRecent moves q to the front of the recent searches.
func (e *Engine) AddRecent(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	e.recent.Add(q, struct{}{})
}

// Recent returns recent searches, most recent first.
func (e *Engine) Recent() []string {
	keys := e.recent.Keys()
	slices.Reverse(keys)
	return keys
}

// ClearRecent forgets every recent search.
func (e *Engine) ClearRecent() {
	e.recent.Purge()
}

// bumpLocked starts a new generation and cancels the pending debounce.
func (e *Engine) bumpLocked() uint64 {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.generation++
	return e.generation
}

func (e *Engine) run(ctx context.Context, gen uint64, q string, f Filters) ([]Result, error) {
	e.searching.Add(1)
	defer e.searching.Add(-1)

	if e.gw != nil {
		if err := e.gw.Call(ctx, "search.query"); err != nil {
			return nil, fmt.Errorf("searching %q: %w", q, err)
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := Match(e.src, q, f)
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.generation {
		e.results = results
	} else {
		e.logger.Debug("discarding superseded search", "query", q)
	}
	return slices.Clone(results), nil
}
