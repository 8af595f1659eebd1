package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/functions"
	"github.com/mmcdole/moviedb/internal/logging"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP proxy in front of TMDB and the bookmark backend",
	Long: `Run the HTTP proxy. GET /api?action=... serves TMDB metadata and
/database?action=... serves bookmarks, genres and avatars, so clients
configured with backend "functions" never see the TMDB token or the
Supabase service key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.NewServerLogger(os.Stderr, cfg.Logging.Level)

		svc, err := newServerServices(cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := svc.seedLocalContent(ctx); err != nil {
			logger.Warn("failed to seed local content", "error", err)
		}

		addr := cfg.Functions.Listen
		if serveListen != "" {
			addr = serveListen
		}

		server := functions.NewServer(functions.Backend{
			Bookmarks: svc.Bookmarks,
			Content:   svc.Content,
			Avatars:   svc.Avatars,
			Metadata:  svc.Metadata,
		}, functions.Options{
			CORSOrigins: cfg.Functions.CORSOrigins,
			RateLimit:   cfg.Functions.RateLimit,
			RateWindow:  cfg.Functions.RateWindow,
			JWTSecret:   cfg.Functions.JWTSecret,
		}, logger)

		logger.Info("starting proxy", "version", Version, "backend", cfg.Backend, "addr", addr)
		return server.ListenAndServe(ctx, addr)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "moviedb %s\n", Version)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (default functions.listen)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}
