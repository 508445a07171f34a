package main

import (
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rpggio/storyverse/internal/app"
	"github.com/rpggio/storyverse/internal/config"
	"github.com/rpggio/storyverse/internal/mcp"
)

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// stdout carries JSON-RPC.
			logger, closeLog := newLogger(cfg.Log, os.Stderr)
			defer closeLog()

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				logger.Error("failed to prepare database path", "error", err)
				return err
			}
			a, err := app.Open(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				logger.Error("failed to open app", "error", err)
				return err
			}
			defer a.Close()

			server := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Universes:     a.Universes(),
					Search:        a.Search(),
					Favorites:     a.Favorites(),
					Notifications: a.Notifications(),
					Companion:     a.Companion(),
					Analytics:     a.Analytics(),
					Remixes:       a.Remixes(),
				},
				Version: version,
				Logger:  logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting stdio transport", "db", cfg.DB.Path)
			// Run blocks until stdin closes or ctx is canceled.
			if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("stdio server error", "error", err)
				return err
			}
			logger.Info("shutting down")
			return nil
		},
	}
}
