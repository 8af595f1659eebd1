package main

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/logging"
	"github.com/mmcdole/moviedb/internal/search"
	"github.com/mmcdole/moviedb/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [route]",
	Short: "Open the terminal browser",
	Long: `Open the terminal browser, optionally at a route such as
/app/bookmarks, /app/top-rated or /app/title?id=278&type=movie.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// fileLogger sets up the file logger; the TUI owns the terminal
func fileLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
	}
	slog.SetDefault(logger)
	return logger
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireConfigured(cfg); err != nil {
		return err
	}

	logger := fileLogger(cfg)
	logger.Info("starting moviedb", "version", Version, "backend", cfg.Backend)

	svc, err := newServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := svc.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := svc.seedLocalContent(ctx); err != nil {
		logger.Warn("failed to seed local content", "error", err)
	}

	route := tui.ParseRoute("")
	if len(args) > 0 {
		route = tui.ParseRoute(args[0])
	}

	manager := bookmark.NewManager(svc.Bookmarks, svc.Auth, logger)
	deps := tui.Deps{
		Manager:       manager,
		Metadata:      svc.Metadata,
		Content:       svc.Content,
		Search:        search.NewService(svc.Metadata, logger),
		User:          user,
		Logger:        logger,
		PageSize:      cfg.UI.PageSize,
		TrendingCount: cfg.UI.TrendingCount,
	}
	logout := func() error {
		if err := svc.Auth.SignOut(context.Background()); err != nil {
			logger.Warn("remote sign out failed", "error", err)
		}
		return config.ClearSession(cfg)
	}

	p := tea.NewProgram(
		tui.NewModel(deps, route, logout),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI", "route", route.String())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return err
	}

	manager.Unsubscribe(bookmark.AllComponents)
	logger.Info("shutting down")
	return nil
}
