package store_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/repository/mocks"
	"github.com/rpggio/storyverse/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID        string
	Name      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func options() store.Options[item] {
	return store.Options[item]{
		Name: "item",
		Key:  func(e item) string { return e.ID },
		Prepare: func(e *item, id string, now time.Time) {
			e.ID = id
			e.CreatedAt = now
			e.UpdatedAt = now
		},
		Touch: func(e *item, now time.Time) { e.UpdatedAt = now },
		Clone: func(e item) item {
			e.Tags = slices.Clone(e.Tags)
			return e
		},
	}
}

// gate holds every gateway call until the test releases it.
type gate struct {
	arrivals chan chan error
}

func newGate() *gate {
	return &gate{arrivals: make(chan chan error, 16)}
}

func (g *gate) Call(ctx context.Context, op string) error {
	release := make(chan error)
	g.arrivals <- release
	select {
	case err := <-release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) next(t *testing.T) chan error {
	t.Helper()
	select {
	case r := <-g.arrivals:
		return r
	case <-time.After(time.Second):
		t.Fatal("no gateway call arrived")
		return nil
	}
}

func TestStore_CreateAssignsUniqueIDs(t *testing.T) {
	s := store.New(options())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		e, err := s.Create(ctx, item{Name: fmt.Sprintf("n%d", i)})
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
		require.Equal(t, e.CreatedAt, e.UpdatedAt)
	}
	require.Equal(t, 100, s.Len())
}

func TestStore_HydrationDropsDuplicateKeys(t *testing.T) {
	opts := options()
	opts.Initial = []item{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}, {ID: ""}}
	s := store.New(opts)

	require.Equal(t, 2, s.Len())
	got, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, "first", got.Name)

	require.NoError(t, s.Remove(context.Background(), "a"))
	_, ok = s.Get("a")
	require.False(t, ok)
}

func TestStore_CreateKeepsPresetKeyAndRejectsDuplicate(t *testing.T) {
	s := store.New(options())
	ctx := context.Background()

	e, err := s.Create(ctx, item{ID: "fixed", Name: "a"})
	require.NoError(t, err)
	require.Equal(t, "fixed", e.ID)

	_, err = s.Create(ctx, item{ID: "fixed", Name: "b"})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.Equal(t, 1, s.Len())
}

func TestStore_EmptyUpdateAdvancesOnlyUpdatedAt(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	opts := options()
	opts.Now = func() time.Time { return fixed }
	s := store.New(opts)
	ctx := context.Background()

	created, err := s.Create(ctx, item{Name: "a", Tags: []string{"x"}})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, func(*item) {})
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	updated.UpdatedAt = created.UpdatedAt
	require.Empty(t, cmp.Diff(created, updated))
}

func TestStore_UpdateAndRemoveMissing(t *testing.T) {
	s := store.New(options())
	ctx := context.Background()

	_, err := s.Update(ctx, "missing", func(e *item) { e.Name = "x" })
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.Remove(ctx, "missing"), repository.ErrNotFound)
}

func TestStore_ListFiltersAndCopies(t *testing.T) {
	s := store.New(options())
	ctx := context.Background()

	a, err := s.Create(ctx, item{Name: "a", Tags: []string{"t"}})
	require.NoError(t, err)
	_, err = s.Create(ctx, item{Name: "b"})
	require.NoError(t, err)

	all := s.List(nil)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].Name)

	only := s.List(func(e item) bool { return e.Name == "b" })
	require.Len(t, only, 1)

	all[0].Tags[0] = "mutated"
	got, ok := s.Get(a.ID)
	require.True(t, ok)
	require.Equal(t, []string{"t"}, got.Tags)
}

func TestStore_CurrentFollowsUpdatesAndRemoval(t *testing.T) {
	s := store.New(options())
	ctx := context.Background()

	e, err := s.Create(ctx, item{Name: "a"})
	require.NoError(t, err)
	s.SetCurrent(&e)

	_, err = s.Update(ctx, e.ID, func(x *item) { x.Name = "renamed" })
	require.NoError(t, err)
	cur, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "renamed", cur.Name)

	require.NoError(t, s.Remove(ctx, e.ID))
	_, ok = s.Current()
	require.False(t, ok)

	s.SetCurrent(nil)
	_, ok = s.Current()
	require.False(t, ok)
}

func TestStore_LastSettledWriteWins(t *testing.T) {
	g := newGate()
	opts := options()
	opts.Initial = []item{{ID: "x", Name: "start"}}
	opts.Gateway = g
	s := store.New(opts)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = s.Update(ctx, "x", func(e *item) { e.Name = "first" })
	}()
	first := g.next(t)
	go func() {
		defer wg.Done()
		_, _ = s.Update(ctx, "x", func(e *item) { e.Name = "second" })
	}()
	second := g.next(t)
	require.True(t, s.IsLoading())

	// Settle in reverse issue order.
	second <- nil
	first <- nil
	wg.Wait()

	got, ok := s.Get("x")
	require.True(t, ok)
	require.Equal(t, "first", got.Name)
	require.False(t, s.IsLoading())
}

func TestStore_OverlappingUpdateThenRemove(t *testing.T) {
	g := newGate()
	opts := options()
	opts.Initial = []item{{ID: "x", Name: "start"}}
	opts.Gateway = g
	s := store.New(opts)
	ctx := context.Background()

	updateErr := make(chan error, 1)
	removeErr := make(chan error, 1)
	go func() {
		_, err := s.Update(ctx, "x", func(e *item) { e.Name = "late" })
		updateErr <- err
	}()
	upd := g.next(t)
	go func() { removeErr <- s.Remove(ctx, "x") }()
	rm := g.next(t)

	rm <- nil
	require.NoError(t, <-removeErr)
	require.True(t, s.IsLoading())

	upd <- nil
	require.ErrorIs(t, <-updateErr, repository.ErrNotFound)
	require.Equal(t, 0, s.Len())
	require.False(t, s.IsLoading())
}

func TestStore_GatewayFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("boom")
	gw := &mocks.Gateway{}
	gw.On("Call", mock.Anything, "item.create").Return(boom)

	opts := options()
	opts.Gateway = gw
	s := store.New(opts)

	_, err := s.Create(context.Background(), item{Name: "a"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, s.Len())
	gw.AssertExpectations(t)
}

func TestStore_CanceledBeforeSettle(t *testing.T) {
	g := newGate()
	opts := options()
	opts.Gateway = g
	s := store.New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Create(ctx, item{Name: "a"})
		done <- err
	}()
	g.next(t)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, 0, s.Len())
}

func TestStore_PersistsFullCollection(t *testing.T) {
	var saved [][]item
	opts := options()
	opts.Persist = func(items []item) error {
		saved = append(saved, items)
		return nil
	}
	s := store.New(opts)
	ctx := context.Background()

	a, err := s.Create(ctx, item{Name: "a"})
	require.NoError(t, err)
	_, err = s.Create(ctx, item{Name: "b"})
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, a.ID))

	require.Len(t, saved, 3)
	require.Len(t, saved[1], 2)
	require.Len(t, saved[2], 1)
	require.Equal(t, "b", saved[2][0].Name)
}

func TestStore_PersistFailureKeepsMutation(t *testing.T) {
	opts := options()
	opts.Persist = func([]item) error { return errors.New("disk full") }
	s := store.New(opts)

	_, err := s.Create(context.Background(), item{Name: "a"})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 1, s.Len())
}

func TestStore_PutAndReplace(t *testing.T) {
	s := store.New(options())

	require.NoError(t, s.Put(item{ID: "a", Name: "one"}))
	require.NoError(t, s.Put(item{ID: "a", Name: "two"}))
	require.Equal(t, 1, s.Len())

	a, _ := s.Get("a")
	s.SetCurrent(&a)
	require.NoError(t, s.Replace([]item{{ID: "b"}}))
	_, ok := s.Current()
	require.False(t, ok)
	require.Equal(t, []string{"b"}, ids(s.List(nil)))
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}

func TestStore_ModifyAbortLeavesEntity(t *testing.T) {
	opts := options()
	opts.Initial = []item{{ID: "x", Name: "keep"}}
	s := store.New(opts)
	rejected := errors.New("rejected")

	_, err := s.Modify(context.Background(), "x", func(e *item) error {
		e.Name = "changed"
		return rejected
	})
	require.ErrorIs(t, err, rejected)

	got, _ := s.Get("x")
	require.Equal(t, "keep", got.Name)
	require.True(t, got.UpdatedAt.IsZero())
}
