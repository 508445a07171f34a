package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/storyverse/internal/companion"
	"github.com/rpggio/storyverse/internal/domain/analytics"
	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/notify"
	"github.com/rpggio/storyverse/internal/search"
)

// UniverseService defines universe operations needed by MCP.
type UniverseService interface {
	Create(ctx context.Context, req universe.CreateRequest) (universe.Universe, error)
	List(f universe.Filter) []universe.Universe
	Update(ctx context.Context, id string, patch universe.Patch) (universe.Universe, error)
	Delete(ctx context.Context, id string) error
}

// SearchService defines search operations needed by MCP.
type SearchService interface {
	Search(ctx context.Context, q string, f *search.Filters) ([]search.Result, error)
	AddRecent(q string)
}

// FavoriteService defines favorite operations needed by MCP.
type FavoriteService interface {
	Add(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error)
	Remove(ctx context.Context, universeID string) error
	List() []favorite.Favorite
}

// NotificationService defines notification operations needed by MCP.
type NotificationService interface {
	List() []notify.Notification
	Get(id string) (notify.Notification, bool)
	Dismiss(id string)
}

// Advisor defines companion operations needed by MCP.
type Advisor interface {
	SmartTip(context string) companion.Tip
}

// AnalyticsService defines analytics operations needed by MCP.
type AnalyticsService interface {
	Fetch(ctx context.Context, creatorID string, days int) (analytics.Report, error)
}

// RemixService defines remix operations needed by MCP.
type RemixService interface {
	Create(ctx context.Context, req remix.CreateRequest) (remix.Version, error)
	List(f remix.Filter) []remix.Version
}

// Services contains all domain services needed by MCP.
type Services struct {
	Universes     UniverseService
	Search        SearchService
	Favorites     FavoriteService
	Notifications NotificationService
	Companion     Advisor
	Analytics     AnalyticsService
	Remixes       RemixService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "storyverse",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
