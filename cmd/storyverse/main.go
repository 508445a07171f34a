package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpggio/storyverse/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "storyverse",
		Short:         "Story universes, remixes and creator analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides STORYVERSE_CONFIG_PATH)")

	load := func() (config.Config, error) {
		if configPath != "" {
			if err := os.Setenv("STORYVERSE_CONFIG_PATH", configPath); err != nil {
				return config.Config{}, err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return config.Config{}, fmt.Errorf("config error: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newDemoCmd(load), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "storyverse", version)
		},
	}
}

// newLogger writes to fallback, or to the configured log file when one is
// set. The returned func closes the file.
func newLogger(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, func()) {
	w := fallback
	closeFn := func() {}
	if cfg.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			w = fileWriter
			closeFn = func() { file.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closeFn
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
