package favorite_test

import (
	"context"
	"testing"

	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/persist"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_SetSemantics(t *testing.T) {
	ctx := context.Background()
	svc := favorite.NewService(nil, nil, nil, nil)
	x := favorite.Favorite{UniverseID: "u1", Title: "Neural Dawn", CreatorName: "Ada"}

	first, err := svc.Add(ctx, x)
	require.NoError(t, err)
	second, err := svc.Add(ctx, x)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, svc.List(), 1)
	require.True(t, svc.IsFavorite("u1"))

	require.NoError(t, svc.Remove(ctx, "u1"))
	require.Empty(t, svc.List())
	require.False(t, svc.IsFavorite("u1"))

	require.ErrorIs(t, svc.Remove(ctx, "u1"), favorite.ErrFavoriteNotFound)
}

func TestFavoriteService_InsertionOrderAndToggle(t *testing.T) {
	ctx := context.Background()
	svc := favorite.NewService(nil, nil, nil, nil)

	for _, id := range []string{"c", "a", "b"} {
		_, err := svc.Add(ctx, favorite.Favorite{UniverseID: id})
		require.NoError(t, err)
	}
	var order []string
	for _, f := range svc.List() {
		order = append(order, f.UniverseID)
	}
	require.Equal(t, []string{"c", "a", "b"}, order)

	on, err := svc.Toggle(ctx, favorite.Favorite{UniverseID: "a"})
	require.NoError(t, err)
	require.False(t, on)
	on, err = svc.Toggle(ctx, favorite.Favorite{UniverseID: "a"})
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, svc.Clear())
	require.Empty(t, svc.List())
}

func TestFavoriteService_Validation(t *testing.T) {
	svc := favorite.NewService(nil, nil, nil, nil)
	_, err := svc.Add(context.Background(), favorite.Favorite{Title: "no id"})
	require.ErrorIs(t, err, favorite.ErrInvalidInput)
}

func TestFavoriteService_PersistsAndHydrates(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend()
	adapter := persist.New(backend, nil)

	svc := favorite.NewService(nil, adapter, nil, nil)
	_, err := svc.Add(ctx, favorite.Favorite{UniverseID: "u1", Title: "One"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, favorite.Favorite{UniverseID: "u2", Title: "Two"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "u1"))

	restored := favorite.NewService(nil, adapter, nil, nil)
	require.False(t, restored.IsFavorite("u1"))
	require.True(t, restored.IsFavorite("u2"))
	require.Equal(t, "Two", restored.List()[0].Title)
}

func TestFavoriteService_CorruptStateStartsEmpty(t *testing.T) {
	backend := persist.NewMemoryBackend()
	require.NoError(t, backend.Set(persist.KeyFavorites, "{not json"))

	svc := favorite.NewService(nil, persist.New(backend, nil), nil, nil)
	require.Empty(t, svc.List())

	_, ok, err := backend.Get(persist.KeyFavorites)
	require.NoError(t, err)
	require.False(t, ok)

	t.Run("duplicate entries collapse", func(t *testing.T) {
		backend := persist.NewMemoryBackend()
		require.NoError(t, backend.Set(persist.KeyFavorites, `[{"universe_id":"u1","title":"First"},{"universe_id":"u1","title":"Again"}]`))

		svc := favorite.NewService(nil, persist.New(backend, nil), nil, nil)
		list := svc.List()
		require.Len(t, list, 1)
		require.Equal(t, "First", list[0].Title)

		require.NoError(t, svc.Remove(context.Background(), "u1"))
		require.False(t, svc.IsFavorite("u1"))
		require.Empty(t, svc.List())
	})
}
