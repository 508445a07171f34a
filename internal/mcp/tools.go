package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/search"
)

func registerTools(server *sdkmcp.Server, svc Services) {
	// Universes
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_universe",
		Description: "Create a universe. New universes are drafts unless a status is given.",
	}, CreateUniverseHandler(svc.Universes))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_universes",
		Description: "List universes in creation order, optionally filtered by creator, genre and status",
	}, ListUniversesHandler(svc.Universes))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_universe",
		Description: "Update the given top-level fields of a universe; omitted fields are kept",
	}, UpdateUniverseHandler(svc.Universes))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_universe",
		Description: "Delete a universe",
	}, DeleteUniverseHandler(svc.Universes))

	// Discovery
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search",
		Description: "Search universes, creators, tags and stories by substring",
	}, SearchHandler(svc.Search))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_tip",
		Description: "Get a companion tip for a screen context",
	}, GetTipHandler(svc.Companion))

	// Favorites
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_favorite",
		Description: "Favorite a universe; favoriting twice is a no-op",
	}, AddFavoriteHandler(svc.Favorites))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_favorite",
		Description: "Remove a universe from favorites",
	}, RemoveFavoriteHandler(svc.Favorites))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_favorites",
		Description: "List favorite universes in the order they were added",
	}, ListFavoritesHandler(svc.Favorites))

	// Notifications
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_notifications",
		Description: "List live notifications, newest first",
	}, ListNotificationsHandler(svc.Notifications))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "dismiss_notification",
		Description: "Dismiss a notification; unknown ids are a no-op",
	}, DismissNotificationHandler(svc.Notifications))

	// Analytics
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "fetch_analytics",
		Description: "Fetch a creator's metrics and daily series; replaces the previous report",
	}, FetchAnalyticsHandler(svc.Analytics))

	// Remixes
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_remix",
		Description: "Create a draft remix of a universe",
	}, CreateRemixHandler(svc.Remixes))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_remixes",
		Description: "List remixes, optionally filtered by parent universe, creator and type",
	}, ListRemixesHandler(svc.Remixes))
}

// CreateUniverseHandler executes a universe create request.
func CreateUniverseHandler(svc UniverseService) sdkmcp.ToolHandlerFor[CreateUniverseInput, UniverseView] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateUniverseInput) (*sdkmcp.CallToolResult, UniverseView, error) {
		u, err := svc.Create(ctx, universe.CreateRequest{
			Title:       in.Title,
			Description: in.Description,
			CreatorID:   in.CreatorID,
			CreatorName: in.CreatorName,
			Genre:       in.Genre,
			Rating:      in.Rating,
			Status:      universe.Status(in.Status),
			Tags:        in.Tags,
		})
		if err != nil {
			return nil, UniverseView{}, mapError(err)
		}
		return nil, universeView(u), nil
	}
}

// ListUniversesHandler lists universes.
func ListUniversesHandler(svc UniverseService) sdkmcp.ToolHandlerFor[ListUniversesInput, UniverseListResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in ListUniversesInput) (*sdkmcp.CallToolResult, UniverseListResult, error) {
		list := svc.List(universe.Filter{
			CreatorID: in.CreatorID,
			Genre:     in.Genre,
			Status:    universe.Status(in.Status),
		})
		out := UniverseListResult{Universes: make([]UniverseView, 0, len(list))}
		for _, u := range list {
			out.Universes = append(out.Universes, universeView(u))
		}
		return nil, out, nil
	}
}

// UpdateUniverseHandler executes a universe patch.
func UpdateUniverseHandler(svc UniverseService) sdkmcp.ToolHandlerFor[UpdateUniverseInput, UniverseView] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateUniverseInput) (*sdkmcp.CallToolResult, UniverseView, error) {
		if strings.TrimSpace(in.ID) == "" {
			return nil, UniverseView{}, &APIError{Code: "INVALID_INPUT", Message: "id is required"}
		}
		patch := universe.Patch{
			Title:       in.Title,
			Description: in.Description,
			Genre:       in.Genre,
			Rating:      in.Rating,
			Tags:        in.Tags,
		}
		if in.Status != nil {
			status := universe.Status(*in.Status)
			patch.Status = &status
		}
		u, err := svc.Update(ctx, in.ID, patch)
		if err != nil {
			return nil, UniverseView{}, mapError(err)
		}
		return nil, universeView(u), nil
	}
}

// DeleteUniverseHandler deletes a universe.
func DeleteUniverseHandler(svc UniverseService) sdkmcp.ToolHandlerFor[IDInput, DeleteResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDInput) (*sdkmcp.CallToolResult, DeleteResult, error) {
		if err := svc.Delete(ctx, in.ID); err != nil {
			return nil, DeleteResult{}, mapError(err)
		}
		return nil, DeleteResult{ID: in.ID, Deleted: true}, nil
	}
}

// SearchHandler runs an immediate search and records the query as recent.
func SearchHandler(svc SearchService) sdkmcp.ToolHandlerFor[SearchInput, SearchResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in SearchInput) (*sdkmcp.CallToolResult, SearchResult, error) {
		filters := &search.Filters{
			Genre:     in.Genre,
			MinRating: in.MinRating,
			SortBy:    search.SortBy(in.SortBy),
		}
		for _, t := range in.Types {
			filters.Types = append(filters.Types, search.ResultType(t))
		}
		results, err := svc.Search(ctx, in.Query, filters)
		if err != nil {
			return nil, SearchResult{}, mapError(err)
		}
		svc.AddRecent(in.Query)

		out := SearchResult{Query: in.Query, Results: make([]SearchResultView, 0, len(results))}
		for _, r := range results {
			out.Results = append(out.Results, searchResultView(r))
		}
		return nil, out, nil
	}
}

// AddFavoriteHandler favorites a universe.
func AddFavoriteHandler(svc FavoriteService) sdkmcp.ToolHandlerFor[AddFavoriteInput, FavoriteView] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddFavoriteInput) (*sdkmcp.CallToolResult, FavoriteView, error) {
		f, err := svc.Add(ctx, favorite.Favorite{
			UniverseID:  in.UniverseID,
			Title:       in.Title,
			CreatorName: in.CreatorName,
		})
		if err != nil {
			return nil, FavoriteView{}, mapError(err)
		}
		return nil, favoriteView(f), nil
	}
}

// RemoveFavoriteHandler removes a favorite.
func RemoveFavoriteHandler(svc FavoriteService) sdkmcp.ToolHandlerFor[RemoveFavoriteInput, RemoveFavoriteResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RemoveFavoriteInput) (*sdkmcp.CallToolResult, RemoveFavoriteResult, error) {
		if err := svc.Remove(ctx, in.UniverseID); err != nil {
			return nil, RemoveFavoriteResult{}, mapError(err)
		}
		return nil, RemoveFavoriteResult{UniverseID: in.UniverseID, Removed: true}, nil
	}
}

// ListFavoritesHandler lists favorites.
func ListFavoritesHandler(svc FavoriteService) sdkmcp.ToolHandlerFor[EmptyInput, FavoriteListResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, FavoriteListResult, error) {
		list := svc.List()
		out := FavoriteListResult{Favorites: make([]FavoriteView, 0, len(list))}
		for _, f := range list {
			out.Favorites = append(out.Favorites, favoriteView(f))
		}
		return nil, out, nil
	}
}

// ListNotificationsHandler lists live notifications.
func ListNotificationsHandler(svc NotificationService) sdkmcp.ToolHandlerFor[EmptyInput, NotificationListResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, NotificationListResult, error) {
		list := svc.List()
		out := NotificationListResult{Notifications: make([]NotificationView, 0, len(list))}
		for _, n := range list {
			out.Notifications = append(out.Notifications, notificationView(n))
		}
		return nil, out, nil
	}
}

// DismissNotificationHandler dismisses a notification. Dismissed reports
// whether the notification was live.
func DismissNotificationHandler(svc NotificationService) sdkmcp.ToolHandlerFor[IDInput, DismissResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in IDInput) (*sdkmcp.CallToolResult, DismissResult, error) {
		_, live := svc.Get(in.ID)
		svc.Dismiss(in.ID)
		return nil, DismissResult{ID: in.ID, Dismissed: live}, nil
	}
}

// GetTipHandler picks a tip for a context.
func GetTipHandler(svc Advisor) sdkmcp.ToolHandlerFor[GetTipInput, TipResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in GetTipInput) (*sdkmcp.CallToolResult, TipResult, error) {
		return nil, tipResult(in.Context, svc.SmartTip(in.Context)), nil
	}
}

// FetchAnalyticsHandler fetches a creator report.
func FetchAnalyticsHandler(svc AnalyticsService) sdkmcp.ToolHandlerFor[FetchAnalyticsInput, AnalyticsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in FetchAnalyticsInput) (*sdkmcp.CallToolResult, AnalyticsResult, error) {
		if in.Days < 0 {
			return nil, AnalyticsResult{}, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("days must not be negative, got %d", in.Days)}
		}
		report, err := svc.Fetch(ctx, in.CreatorID, in.Days)
		if err != nil {
			return nil, AnalyticsResult{}, mapError(err)
		}
		return nil, analyticsResult(report), nil
	}
}

// CreateRemixHandler creates a draft remix.
func CreateRemixHandler(svc RemixService) sdkmcp.ToolHandlerFor[CreateRemixInput, RemixView] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateRemixInput) (*sdkmcp.CallToolResult, RemixView, error) {
		v, err := svc.Create(ctx, remix.CreateRequest{
			UniverseID:        in.UniverseID,
			ParentUniverseID:  in.ParentUniverseID,
			ParentCreatorID:   in.ParentCreatorID,
			ParentCreatorName: in.ParentCreatorName,
			Title:             in.Title,
			Description:       in.Description,
			CreatorID:         in.CreatorID,
			CreatorName:       in.CreatorName,
			Type:              remix.Type(in.Type),
			ChangesSummary:    in.ChangesSummary,
		})
		if err != nil {
			return nil, RemixView{}, mapError(err)
		}
		return nil, remixView(v), nil
	}
}

// ListRemixesHandler lists remixes.
func ListRemixesHandler(svc RemixService) sdkmcp.ToolHandlerFor[ListRemixesInput, RemixListResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in ListRemixesInput) (*sdkmcp.CallToolResult, RemixListResult, error) {
		list := svc.List(remix.Filter{
			ParentUniverseID: in.ParentUniverseID,
			CreatorID:        in.CreatorID,
			Type:             remix.Type(in.Type),
		})
		out := RemixListResult{Remixes: make([]RemixView, 0, len(list))}
		for _, v := range list {
			out.Remixes = append(out.Remixes, remixView(v))
		}
		return nil, out, nil
	}
}
