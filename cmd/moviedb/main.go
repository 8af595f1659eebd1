package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/config"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
	faint = color.New(color.Faint)
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "moviedb",
	Short: "Browse movies and TV series and keep a bookmark list",
	Long: `moviedb is a terminal browser for movies and TV series backed by TMDB.
Bookmarks, genres and your avatar are stored in Supabase, behind a
moviedb serve proxy, or in a local database.

Run without a command to open the browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", config.DefaultConfigDir(), "Directory holding config.yaml")
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("moviedb {{.Version}}\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration named by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// requireConfigured fails with a hint when the selected backend is missing settings
func requireConfigured(cfg *config.Config) error {
	if cfg.IsConfigured() {
		return nil
	}
	path := cfg.Dir() + "/config.yaml"
	switch cfg.Backend {
	case config.BackendSupabase:
		return fmt.Errorf("backend %q needs supabase.url, supabase.anon_key and tmdb.token in %s", cfg.Backend, path)
	case config.BackendFunctions:
		return fmt.Errorf("backend %q needs functions.url, supabase.url and supabase.anon_key in %s", cfg.Backend, path)
	default:
		return fmt.Errorf("backend %q needs tmdb.token in %s", cfg.Backend, path)
	}
}
