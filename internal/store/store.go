// Package store implements the generic entity store every domain family is
// built on: an owned in-memory collection whose mutations settle through the
// data-access gateway and are optionally mirrored to durable storage.
//
// Operations are not serialized against each other. Each mutation is applied
// under the store lock at the moment its gateway call settles, so overlapping
// operations resolve last-write-wins in settle order.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/storyverse/internal/repository"
)

// Options configures a Store.
type Options[E any] struct {
	// Name prefixes gateway operations and error messages, e.g. "universe".
	Name    string
	Gateway repository.Gateway
	Logger  *slog.Logger

	// Key returns the identity of an entity.
	Key func(E) string
	// Prepare assigns the id and creation stamps of a new entity.
	Prepare func(e *E, id string, now time.Time)
	// Touch re-stamps the update time of a mutated entity. Optional.
	Touch func(e *E, now time.Time)
	// Clone deep-copies an entity. Defaults to a shallow copy.
	Clone func(E) E

	// Persist receives the full collection after each mutation. Optional.
	Persist func([]E) error
	// Initial hydrates the collection at construction.
	Initial []E

	NewID func() string
	Now   func() time.Time
}

// Store owns one entity collection.
type Store[E any] struct {
	opts   Options[E]
	logger *slog.Logger

	mu        sync.RWMutex
	items     []E
	currentID string
	hasCur    bool
	last      time.Time

	inflight atomic.Int32
}

// New creates a store hydrated from opts.Initial. Initial entries without a key
// or repeating an earlier key are dropped; the first occurrence wins.
func New[E any](opts Options[E]) *Store[E] {
	if opts.Clone == nil {
		opts.Clone = func(e E) E { return e }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store[E]{opts: opts, logger: logger.With("store", opts.Name)}
	s.items = make([]E, 0, len(opts.Initial))
	seen := make(map[string]bool, len(opts.Initial))
	for _, e := range opts.Initial {
		key := opts.Key(e)
		if key == "" || seen[key] {
			s.logger.Warn("dropping hydrated entity", "key", key, "reason", dropReason(key))
			continue
		}
		seen[key] = true
		s.items = append(s.items, opts.Clone(e))
	}
	return s
}

// List returns a snapshot of the entities accepted by filter, in insertion order.
// A nil filter accepts everything.
func (s *Store[E]) List(filter func(E) bool) []E {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]E, 0, len(s.items))
	for _, e := range s.items {
		if filter == nil || filter(e) {
			out = append(out, s.opts.Clone(e))
		}
	}
	return out
}

// Get returns the entity with id.
func (s *Store[E]) Get(id string) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.opts.Clone(s.items[i]), true
	}
	var zero E
	return zero, false
}

// Len returns the collection size.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Create materializes e and appends it once the gateway settles. A key already
// set on e is kept; otherwise a fresh id is minted.
func (s *Store[E]) Create(ctx context.Context, e E) (E, error) {
	defer s.begin()()

	id := s.opts.Key(e)
	if id == "" {
		id = s.opts.NewID()
	}
	e = s.opts.Clone(e)
	s.mu.Lock()
	now := s.tick()
	s.mu.Unlock()
	s.opts.Prepare(&e, id, now)

	var zero E
	if err := s.call(ctx, "create"); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(id) >= 0 {
		return zero, fmt.Errorf("%s %s: %w", s.opts.Name, id, repository.ErrConflict)
	}
	s.items = append(s.items, e)
	s.logger.Debug("entity created", "id", id)
	if err := s.persist(); err != nil {
		return s.opts.Clone(e), err
	}
	return s.opts.Clone(e), nil
}

// Update applies apply to the entity present when the gateway settles and
// re-stamps its update time.
func (s *Store[E]) Update(ctx context.Context, id string, apply func(*E)) (E, error) {
	return s.Modify(ctx, id, func(e *E) error {
		if apply != nil {
			apply(e)
		}
		return nil
	})
}

// Modify is Update with a fallible apply. When apply returns an error the
// entity is left unchanged and the error is returned as is.
func (s *Store[E]) Modify(ctx context.Context, id string, apply func(*E) error) (E, error) {
	defer s.begin()()

	var zero E
	if err := s.call(ctx, "update"); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", s.opts.Name, id, repository.ErrNotFound)
	}
	e := s.opts.Clone(s.items[i])
	if err := apply(&e); err != nil {
		return zero, err
	}
	if s.opts.Touch != nil {
		s.opts.Touch(&e, s.tick())
	}
	s.items[i] = e
	s.logger.Debug("entity updated", "id", id)
	if err := s.persist(); err != nil {
		return s.opts.Clone(e), err
	}
	return s.opts.Clone(e), nil
}

// Remove deletes the entity with id once the gateway settles. A focused
// entity with that id is cleared.
func (s *Store[E]) Remove(ctx context.Context, id string) error {
	defer s.begin()()

	if err := s.call(ctx, "remove"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", s.opts.Name, id, repository.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	if s.hasCur && s.currentID == id {
		s.hasCur = false
		s.currentID = ""
	}
	s.logger.Debug("entity removed", "id", id)
	return s.persist()
}

// Put inserts or replaces e without a gateway round trip.
func (s *Store[E]) Put(e E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = s.opts.Clone(e)
	if i := s.index(s.opts.Key(e)); i >= 0 {
		s.items[i] = e
	} else {
		s.items = append(s.items, e)
	}
	return s.persist()
}

// Replace swaps the whole collection. The focused entity is cleared when it
// is not part of items.
func (s *Store[E]) Replace(items []E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]E, 0, len(items))
	for _, e := range items {
		s.items = append(s.items, s.opts.Clone(e))
	}
	if s.hasCur && s.index(s.currentID) < 0 {
		s.hasCur = false
		s.currentID = ""
	}
	return s.persist()
}

// SetCurrent focuses e, or clears the focus when e is nil. The focused
// entity always reflects the collection: it follows updates and is cleared
// on removal.
func (s *Store[E]) SetCurrent(e *E) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e == nil {
		s.hasCur = false
		s.currentID = ""
		return
	}
	s.currentID = s.opts.Key(*e)
	s.hasCur = true
}

// Current returns the focused entity.
func (s *Store[E]) Current() (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero E
	if !s.hasCur {
		return zero, false
	}
	i := s.index(s.currentID)
	if i < 0 {
		return zero, false
	}
	return s.opts.Clone(s.items[i]), true
}

// IsLoading reports whether any operation is in flight.
func (s *Store[E]) IsLoading() bool {
	return s.inflight.Load() > 0
}

func (s *Store[E]) begin() func() {
	s.inflight.Add(1)
	return func() { s.inflight.Add(-1) }
}

func (s *Store[E]) call(ctx context.Context, op string) error {
	if s.opts.Gateway == nil {
		return ctx.Err()
	}
	if err := s.opts.Gateway.Call(ctx, s.opts.Name+"."+op); err != nil {
		return fmt.Errorf("%s %s: %w", s.opts.Name, op, err)
	}
	return nil
}

// tick returns a timestamp strictly after every previous one. Callers hold mu.
func (s *Store[E]) tick() time.Time {
	now := s.opts.Now()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

func (s *Store[E]) index(id string) int {
	for i, e := range s.items {
		if s.opts.Key(e) == id {
			return i
		}
	}
	return -1
}

func (s *Store[E]) persist() error {
	if s.opts.Persist == nil {
		return nil
	}
	snapshot := make([]E, len(s.items))
	for i, e := range s.items {
		snapshot[i] = s.opts.Clone(e)
	}
	if err := s.opts.Persist(snapshot); err != nil {
		s.logger.Error("failed to persist collection", "error", err)
		return fmt.Errorf("persisting %s: %w", s.opts.Name, err)
	}
	return nil
}

func dropReason(key string) string {
	if key == "" {
		return "missing key"
	}
	return "duplicate key"
}
