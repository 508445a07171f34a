package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rpggio/storyverse/internal/app"
	"github.com/rpggio/storyverse/internal/config"
	"github.com/rpggio/storyverse/internal/domain/collab"
	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/search"
)

func newDemoCmd(load func() (config.Config, error)) *cobra.Command {
	var (
		persist bool
		latency time.Duration
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through creating, finding, remixing and measuring a universe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !persist {
				cfg.DB.Path = ":memory:"
			}
			if cmd.Flags().Changed("latency") {
				cfg.Gateway.Latency = latency
				cfg.Search.Latency = latency
			}
			logger, closeLog := newLogger(cfg.Log, os.Stderr)
			defer closeLog()

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return err
			}
			a, err := app.Open(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()
			return runDemo(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "use the configured database instead of an in-memory one")
	cmd.Flags().DurationVar(&latency, "latency", 0, "simulated round-trip latency (default from config)")
	return cmd
}

func runDemo(ctx context.Context, a *app.App, out io.Writer) error {
	user, err := a.Auth().Login(ctx, "aria@example.com", "demo")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintf(out, "signed in as %s\n", user.DisplayName)

	u, err := a.Universes().Create(ctx, universe.CreateRequest{
		Title:       "Neural Dawn",
		Description: "Machines wake up one morning and decide to dream.",
		CreatorID:   user.ID,
		CreatorName: user.DisplayName,
		Genre:       "Sci-Fi",
		Rating:      4.6,
		Tags:        []string{"AI", "Cyberpunk"},
	})
	if err != nil {
		return fmt.Errorf("create universe: %w", err)
	}
	if u, err = a.Universes().Publish(ctx, u.ID); err != nil {
		return fmt.Errorf("publish universe: %w", err)
	}
	fmt.Fprintf(out, "published %q (%s)\n", u.Title, u.ID)

	for _, reader := range []string{"r1", "r2", "r3"} {
		if _, err := a.Universes().RecordView(ctx, u.ID, reader); err != nil {
			return fmt.Errorf("record view: %w", err)
		}
	}
	if _, err := a.Universes().Like(ctx, u.ID, "r1"); err != nil {
		return fmt.Errorf("like: %w", err)
	}

	results, err := a.Search().Submit(ctx, "neural")
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	fmt.Fprintf(out, "search %q: %d result(s)\n", "neural", len(results))
	for _, r := range results {
		fmt.Fprintf(out, "  [%s] %s\n", r.Type, r.Title)
	}
	tags, err := a.Search().Search(ctx, "cyber", &search.Filters{Types: []search.ResultType{search.TypeTag}})
	if err != nil {
		return fmt.Errorf("tag search: %w", err)
	}
	for _, r := range tags {
		fmt.Fprintf(out, "  [%s] %s: %s\n", r.Type, r.Title, r.Description)
	}

	if _, err := a.Favorites().Add(ctx, favorite.Favorite{UniverseID: u.ID, Title: u.Title, CreatorName: u.CreatorName}); err != nil {
		return fmt.Errorf("favorite: %w", err)
	}
	fmt.Fprintf(out, "favorites: %d\n", len(a.Favorites().List()))

	v, err := a.Remixes().Create(ctx, remix.CreateRequest{
		ParentUniverseID:  u.ID,
		ParentCreatorID:   u.CreatorID,
		ParentCreatorName: u.CreatorName,
		Title:             "Neural Dusk",
		Description:       "The same machines, one bad night later.",
		CreatorID:         "bo",
		CreatorName:       "Bo Park",
		Type:              remix.TypeStory,
		ChangesSummary:    "ending rewritten",
	})
	if err != nil {
		return fmt.Errorf("remix: %w", err)
	}
	if v, err = a.Remixes().GiveCredit(ctx, v.ID); err != nil {
		return fmt.Errorf("credit: %w", err)
	}
	fmt.Fprintf(out, "remix %q by %s, credited: %t\n", v.Title, v.CreatorName, v.CreditsGiven)

	p, err := a.Collaboration().CreateProject(ctx, collab.CreateProjectRequest{
		UniverseID:    u.ID,
		Title:         "Neural Dawn: season two",
		OwnerUserID:   user.ID,
		OwnerUsername: user.Username,
		OwnerEmail:    user.Email,
	})
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	if _, err := a.Collaboration().InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "bo", Username: "bo", Role: collab.RoleComment}); err != nil {
		return fmt.Errorf("invite: %w", err)
	}
	if p, err = a.Collaboration().RespondToInvite(ctx, p.ID, "bo", true); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if _, err := a.Collaboration().AddComment(ctx, p.ID, collab.CommentRequest{UserID: "bo", Username: "bo", Content: "What do the machines dream about?"}); err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	fmt.Fprintf(out, "project %q: %d collaborator(s), %d comment(s)\n", p.Title, len(p.Collaborators), len(a.Collaboration().ListComments(p.ID)))

	report, err := a.Analytics().Fetch(ctx, user.ID, 0)
	if err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	m := report.Metrics
	fmt.Fprintf(out, "analytics: %d views, %d likes, %.2f%% engagement, $%.2f revenue over %d days\n",
		m.TotalViews, m.TotalLikes, m.EngagementRate, m.Revenue, len(report.Daily))

	tip := a.Companion().SmartTip("create")
	fmt.Fprintf(out, "tip: %s: %s\n", tip.Title, tip.Message)
	if _, err := a.Companion().ShowRecommendations("dashboard"); err != nil {
		return fmt.Errorf("recommendations: %w", err)
	}
	a.Notifications().Success("Demo complete", "Neural Dawn is live.")
	for _, n := range a.Notifications().List() {
		fmt.Fprintf(out, "notification [%s] %s\n", n.Type, n.Title)
	}
	return nil
}
