package search_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rpggio/storyverse/internal/search"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingGateway struct{ calls atomic.Int32 }

func (g *countingGateway) Call(ctx context.Context, _ string) error {
	g.calls.Add(1)
	return ctx.Err()
}

type gatedGateway struct{ arrivals chan chan struct{} }

func (g *gatedGateway) Call(ctx context.Context, _ string) error {
	release := make(chan struct{})
	g.arrivals <- release
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestEngine_SetQueryInline(t *testing.T) {
	ctx := context.Background()
	e := search.NewEngine(fixtures())

	require.NoError(t, e.SetQuery(ctx, "neural"))
	require.Equal(t, "neural", e.Query())
	require.Equal(t, []string{"u1", "u2", "c1", "r1"}, ids(e.Results()))
	require.Equal(t, []string{"Neural Dawn"}, e.Suggestions())

	require.NoError(t, e.SetQuery(ctx, ""))
	require.Empty(t, e.Results())
	require.Empty(t, e.Suggestions())
}

func TestEngine_WhitespaceQuerySearches(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}
	e := search.NewEngine(fixtures(), search.WithGateway(gw))

	require.NoError(t, e.SetQuery(ctx, "  "))
	require.Equal(t, "  ", e.Query())
	require.Equal(t, int32(1), gw.calls.Load())

	require.NoError(t, e.SetQuery(ctx, ""))
	require.Equal(t, int32(1), gw.calls.Load())
}

func TestEngine_DebounceCoalescesKeystrokes(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	gw := &countingGateway{}
	e := search.NewEngine(fixtures(), search.WithClock(mock), search.WithGateway(gw),
		search.WithDebounce(300*time.Millisecond))
	defer e.Close()

	for _, q := range []string{"n", "ne", "neu", "neural"} {
		require.NoError(t, e.SetQuery(ctx, q))
		mock.Add(100 * time.Millisecond)
	}
	require.Equal(t, []string{"Neural Dawn"}, e.Suggestions())
	require.Empty(t, e.Results())
	require.Zero(t, gw.calls.Load())

	mock.Add(200 * time.Millisecond)
	require.Eventually(t, func() bool { return len(e.Results()) == 4 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), gw.calls.Load())
}

func TestEngine_EmptyQueryCancelsPendingSearch(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	gw := &countingGateway{}
	e := search.NewEngine(fixtures(), search.WithClock(mock), search.WithGateway(gw),
		search.WithDebounce(300*time.Millisecond))

	require.NoError(t, e.SetQuery(ctx, "neural"))
	require.NoError(t, e.SetQuery(ctx, ""))
	mock.Add(time.Second)

	require.Never(t, func() bool { return gw.calls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	require.Empty(t, e.Results())
}

func TestEngine_SupersededSearchDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	gw := &gatedGateway{arrivals: make(chan chan struct{}, 2)}
	e := search.NewEngine(fixtures(), search.WithGateway(gw))

	stale := make(chan []search.Result, 1)
	go func() {
		results, _ := e.Search(ctx, "neural", nil)
		stale <- results
	}()
	first := <-gw.arrivals
	require.True(t, e.IsSearching())

	fresh := make(chan []search.Result, 1)
	go func() {
		results, _ := e.Search(ctx, "orbit", nil)
		fresh <- results
	}()
	second := <-gw.arrivals

	close(second)
	require.Equal(t, []string{"u3"}, ids(<-fresh))
	close(first)
	require.Len(t, <-stale, 4)

	require.Equal(t, []string{"u3"}, ids(e.Results()))
	require.False(t, e.IsSearching())
}

func TestEngine_UpdateFiltersRerunsActiveQuery(t *testing.T) {
	ctx := context.Background()
	e := search.NewEngine(fixtures())

	genre := "Fantasy"
	require.NoError(t, e.UpdateFilters(ctx, search.FilterPatch{Genre: &genre}))
	require.Empty(t, e.Results())

	require.NoError(t, e.SetQuery(ctx, "neural"))
	require.Equal(t, []string{"u2", "c1", "r1"}, ids(e.Results()))

	sortBy := search.SortViews
	require.NoError(t, e.UpdateFilters(ctx, search.FilterPatch{
		Types:  []search.ResultType{search.TypeUniverse, search.TypeCreator},
		SortBy: &sortBy,
	}))
	require.Equal(t, []string{"c1", "u2"}, ids(e.Results()))
	require.Equal(t, "Fantasy", e.Filters().Genre)

	bad := 7.0
	require.ErrorIs(t, e.UpdateFilters(ctx, search.FilterPatch{MinRating: &bad}), search.ErrInvalidFilter)
	require.Zero(t, e.Filters().MinRating)
}

func TestEngine_SearchWithExplicitFilters(t *testing.T) {
	e := search.NewEngine(fixtures())
	results, err := e.Search(context.Background(), "neural", &search.Filters{Types: []search.ResultType{search.TypeStory}})
	require.NoError(t, err)
	require.Equal(t, []string{"r1"}, ids(results))

	_, err = e.Search(context.Background(), "neural", &search.Filters{SortBy: "oldest"})
	require.ErrorIs(t, err, search.ErrInvalidFilter)
}

func TestEngine_RecentSearchesRecency(t *testing.T) {
	e := search.NewEngine(fixtures())

	e.AddRecent("a")
	e.AddRecent("b")
	e.AddRecent("a")
	e.AddRecent("  ")
	require.Equal(t, []string{"a", "b"}, e.Recent())

	for i := 0; i < 12; i++ {
		e.AddRecent(fmt.Sprintf("q%d", i))
	}
	recent := e.Recent()
	require.Len(t, recent, search.MaxRecent)
	require.Equal(t, "q11", recent[0])
	require.NotContains(t, recent, "a")

	e.ClearRecent()
	require.Empty(t, e.Recent())
}

func TestEngine_SubmitRecordsAndSearches(t *testing.T) {
	e := search.NewEngine(fixtures())

	results, err := e.Submit(context.Background(), "orbit")
	require.NoError(t, err)
	require.Equal(t, []string{"u3"}, ids(results))
	require.Equal(t, []string{"orbit"}, e.Recent())

	e.ClearSearch()
	require.Empty(t, e.Query())
	require.Empty(t, e.Results())
	require.Equal(t, []string{"orbit"}, e.Recent())
}
