// Package app is the composition root: it constructs every store, engine and
// bus once, in dependency order, and hands them out by reference.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/facebookgo/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpggio/storyverse/internal/companion"
	"github.com/rpggio/storyverse/internal/config"
	"github.com/rpggio/storyverse/internal/domain/access"
	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/domain/analytics"
	"github.com/rpggio/storyverse/internal/domain/auth"
	"github.com/rpggio/storyverse/internal/domain/collab"
	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/gateway"
	"github.com/rpggio/storyverse/internal/metrics"
	"github.com/rpggio/storyverse/internal/notify"
	"github.com/rpggio/storyverse/internal/persist"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/search"
	"github.com/rpggio/storyverse/internal/sqlite"
)

// ErrNotInitialized is the panic value of an accessor whose component was
// never constructed.
var ErrNotInitialized = errors.New("component not initialized")

// Component names one constructed part of the app.
type Component string

const (
	Accessibility Component = "accessibility"
	Notification  Component = "notification"
	Companion     Component = "companion"
	Search        Component = "search"
	Auth          Component = "auth"
	Universe      Component = "universe"
	Analytics     Component = "analytics"
	Favorites     Component = "favorites"
	Remix         Component = "remix"
	Collaboration Component = "collaboration"
)

// InitOrder is the construction order. Independent components come first and
// components that reference others come last.
func InitOrder() []Component {
	return []Component{
		Accessibility, Notification, Companion, Search, Auth,
		Universe, Analytics, Favorites, Remix, Collaboration,
	}
}

// Deps are the external collaborators. Every field is optional.
type Deps struct {
	Logger *slog.Logger
	Clock  clock.Clock
	// KV backs the persistence adapter. Defaults to a process-local backend.
	KV repository.KeyValue
	// Activity backs the activity log feeding analytics. Without it the
	// daily series stays empty.
	Activity repository.ActivityRepository
	// Gateway overrides the simulated data-access boundary of the stores.
	Gateway repository.Gateway
	// SearchGateway overrides the boundary searches go through.
	SearchGateway repository.Gateway
	Registerer    prometheus.Registerer
}

type activityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
	DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds ...activity.Kind) ([]activity.DayCount, error)
}

// App holds the constructed components.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	order  []Component

	access    *access.Service
	bus       *notify.Bus
	companion *companion.Advisor
	search    *search.Engine
	auth      *auth.Service
	universes *universe.Service
	analytics *analytics.Service
	favorites *favorite.Service
	remixes   *remix.Service
	collab    *collab.Service

	events  activityLog
	closers []func() error
}

// New constructs every component in InitOrder.
func New(cfg config.Config, deps Deps) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}
	kv := deps.KV
	if kv == nil {
		kv = persist.NewMemoryBackend()
	}
	adapter := persist.New(kv, logger)

	m := metrics.NewGateway(deps.Registerer)
	gw := deps.Gateway
	if gw == nil {
		gw = gateway.New(gateway.Config{
			Latency:       cfg.Gateway.Latency,
			FailureRate:   cfg.Gateway.FailureRate,
			MaxRetries:    cfg.Gateway.MaxRetries,
			RetryInterval: cfg.Gateway.RetryInterval,
		}, logger.With("component", "gateway"), gateway.WithClock(clk), gateway.WithMetrics(m))
	}
	searchGW := deps.SearchGateway
	if searchGW == nil {
		searchGW = gateway.New(gateway.Config{Latency: cfg.Search.Latency},
			logger.With("component", "search_gateway"), gateway.WithClock(clk), gateway.WithMetrics(m))
	}

	a := &App{cfg: cfg, logger: logger}
	if deps.Activity != nil {
		a.events = activity.NewService(deps.Activity, logger)
	}

	steps := map[Component]func(){
		Accessibility: func() {
			a.access = access.NewService(adapter, logger)
		},
		Notification: func() {
			a.bus = notify.NewBus(notify.WithClock(clk), notify.WithLogger(logger))
		},
		Companion: func() {
			a.companion = companion.New(a.bus, companion.WithLogger(logger))
		},
		Search: func() {
			src := search.Sources{
				Universes: a.listUniverses,
				Creators:  search.SeedCreators,
				Stories:   a.listStories,
			}
			a.search = search.NewEngine(src,
				search.WithGateway(searchGW),
				search.WithClock(clk),
				search.WithDebounce(cfg.Search.Debounce),
				search.WithLogger(logger))
		},
		Auth: func() {
			a.auth = auth.NewService(gw, adapter, logger)
		},
		Universe: func() {
			a.universes = universe.NewService(gw, a.events, logger)
		},
		Analytics: func() {
			a.analytics = analytics.NewService(gw, a.universes, analytics.Config{
				RevenuePerView: cfg.Analytics.RevenuePerView,
				Days:           cfg.Analytics.Days,
			}, logger, analytics.WithActivity(a.events), analytics.WithFollowers(followerCounter{a.auth}))
		},
		Favorites: func() {
			a.favorites = favorite.NewService(gw, adapter, a.events, logger)
		},
		Remix: func() {
			a.remixes = remix.NewService(gw, a.events, logger)
		},
		Collaboration: func() {
			a.collab = collab.NewService(gw, a.events, logger)
		},
	}
	for _, c := range InitOrder() {
		steps[c]()
		a.order = append(a.order, c)
		logger.Debug("component initialized", "component", c)
	}
	return a, nil
}

// Open opens the sqlite database named by cfg and builds an App on it.
// Close releases the database.
func Open(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	a, err := New(cfg, Deps{
		Logger:     logger,
		KV:         sqlite.NewKVStore(db),
		Activity:   sqlite.NewActivityRepository(db),
		Registerer: reg,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	return a, nil
}

// Initialized lists the constructed components in construction order.
func (a *App) Initialized() []Component {
	return append([]Component(nil), a.order...)
}

func (a *App) Accessibility() *access.Service { return must(a.access, Accessibility) }
func (a *App) Notifications() *notify.Bus { return must(a.bus, Notification) }
func (a *App) Companion() *companion.Advisor { return must(a.companion, Companion) }
func (a *App) Search() *search.Engine { return must(a.search, Search) }
func (a *App) Auth() *auth.Service { return must(a.auth, Auth) }
func (a *App) Universes() *universe.Service { return must(a.universes, Universe) }
func (a *App) Analytics() *analytics.Service { return must(a.analytics, Analytics) }
func (a *App) Favorites() *favorite.Service { return must(a.favorites, Favorites) }
func (a *App) Remixes() *remix.Service { return must(a.remixes, Remix) }
func (a *App) Collaboration() *collab.Service { return must(a.collab, Collaboration) }

// ReportError routes a failed operation to the notification bus.
func (a *App) ReportError(title string, err error) {
	if err == nil {
		return
	}
	a.logger.Warn(title, "error", err)
	a.Notifications().Error(title, err.Error())
}

// Close stops timers and pending searches and releases the database.
func (a *App) Close() error {
	if a.search != nil {
		a.search.Close()
	}
	if a.bus != nil {
		a.bus.DismissAll()
		a.bus.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) listUniverses() []universe.Universe {
	if a.universes == nil {
		return nil
	}
	return a.universes.List(universe.Filter{})
}

func (a *App) listStories() []remix.Version {
	if a.remixes == nil {
		return nil
	}
	return a.remixes.List(remix.Filter{Type: remix.TypeStory})
}

func must[T any](component *T, name Component) *T {
	if component == nil {
		panic(fmt.Errorf("%s: %w", name, ErrNotInitialized))
	}
	return component
}

// followerCounter reads follower counts from the signed-in user's profile.
type followerCounter struct {
	auth *auth.Service
}

func (f followerCounter) Followers(_ context.Context, creatorID string) (int64, error) {
	if u, ok := f.auth.CurrentUser(); ok && u.ID == creatorID {
		return u.Followers, nil
	}
	return 0, nil
}
