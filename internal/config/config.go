package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/moviedb/internal/validation"
)

// Backend selects where bookmarks, genres and avatars are read from
type Backend string

const (
	BackendSupabase  Backend = "supabase"  // talk to Supabase directly
	BackendFunctions Backend = "functions" // go through a `moviedb serve` proxy
	BackendLocal     Backend = "local"     // bbolt file on this machine
)

// Config holds all application configuration
type Config struct {
	Backend   Backend         `mapstructure:"backend" validate:"oneof=supabase functions local"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Functions FunctionsConfig `mapstructure:"functions"`
	Session   SessionConfig   `mapstructure:"session"`
	Store     StoreConfig     `mapstructure:"store"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	dir string // directory the file was loaded from / is saved to
}

// SupabaseConfig holds the project endpoint and keys
type SupabaseConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	AnonKey        string `mapstructure:"anon_key"`
	ServiceKey     string `mapstructure:"service_key"` // server side only
	BookmarksTable string `mapstructure:"bookmarks_table" validate:"required"`
	ContentTable   string `mapstructure:"content_table" validate:"required"`
	AvatarBucket   string `mapstructure:"avatar_bucket" validate:"required"`
}

// TMDBConfig holds metadata API settings
type TMDBConfig struct {
	Token             string        `mapstructure:"token"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	Language          string        `mapstructure:"language"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// FunctionsConfig configures both the proxy server and clients of it
type FunctionsConfig struct {
	URL         string        `mapstructure:"url" validate:"omitempty,url"` // client: base URL of the proxy
	Listen      string        `mapstructure:"listen"`                       // server: listen address
	CORSOrigins []string      `mapstructure:"cors_origins"`
	RateLimit   int           `mapstructure:"rate_limit" validate:"gte=0"`
	RateWindow  time.Duration `mapstructure:"rate_window"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
}

// SessionConfig is written by `moviedb login`
type SessionConfig struct {
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserID       string `mapstructure:"user_id"`
	Email        string `mapstructure:"email"`
	Name         string `mapstructure:"name"`
}

// StoreConfig holds the local bbolt store location. Empty means memory only.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	PageSize      int `mapstructure:"page_size" validate:"min=1,max=100"`
	TrendingCount int `mapstructure:"trending_count" validate:"min=1,max=20"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendSupabase,
		Supabase: SupabaseConfig{
			BookmarksTable: "bookmarks",
			ContentTable:   "content",
			AvatarBucket:   "user-avatars",
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w780",
			Language:          "en-US",
			RequestsPerSecond: 20,
			CacheTTL:          30 * time.Minute,
		},
		Functions: FunctionsConfig{
			Listen:      ":8888",
			CORSOrigins: []string{},
			RateLimit:   100,
			RateWindow:  time.Minute,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		UI: UIConfig{
			PageSize:      12,
			TrendingCount: 12,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		dir: DefaultConfigDir(),
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataDir(), "moviedb.log")
}

func defaultStorePath() string {
	return filepath.Join(defaultDataDir(), "store")
}

func defaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "moviedb")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "moviedb")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "moviedb")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "moviedb")
	}
}

// LoadConfig loads configuration from the default directory and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigDir())
}

// LoadConfigFrom loads config.yaml from dir, applying MOVIEDB_* environment
// overrides (MOVIEDB_TMDB_TOKEN overrides tmdb.token).
func LoadConfigFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.dir = dir

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides
	v.SetEnvPrefix("MOVIEDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about
	for key, value := range settings(cfg) {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// settings flattens cfg into viper keys (snake_case)
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"backend": string(cfg.Backend),

		"supabase.url":             cfg.Supabase.URL,
		"supabase.anon_key":        cfg.Supabase.AnonKey,
		"supabase.service_key":     cfg.Supabase.ServiceKey,
		"supabase.bookmarks_table": cfg.Supabase.BookmarksTable,
		"supabase.content_table":   cfg.Supabase.ContentTable,
		"supabase.avatar_bucket":   cfg.Supabase.AvatarBucket,

		"tmdb.token":               cfg.TMDB.Token,
		"tmdb.base_url":            cfg.TMDB.BaseURL,
		"tmdb.image_base_url":      cfg.TMDB.ImageBaseURL,
		"tmdb.language":            cfg.TMDB.Language,
		"tmdb.requests_per_second": cfg.TMDB.RequestsPerSecond,
		"tmdb.cache_ttl":           cfg.TMDB.CacheTTL.String(),

		"functions.url":          cfg.Functions.URL,
		"functions.listen":       cfg.Functions.Listen,
		"functions.cors_origins": cfg.Functions.CORSOrigins,
		"functions.rate_limit":   cfg.Functions.RateLimit,
		"functions.rate_window":  cfg.Functions.RateWindow.String(),
		"functions.jwt_secret":   cfg.Functions.JWTSecret,

		"session.access_token":  cfg.Session.AccessToken,
		"session.refresh_token": cfg.Session.RefreshToken,
		"session.user_id":       cfg.Session.UserID,
		"session.email":         cfg.Session.Email,
		"session.name":          cfg.Session.Name,

		"store.path": cfg.Store.Path,

		"ui.page_size":      cfg.UI.PageSize,
		"ui.trending_count": cfg.UI.TrendingCount,

		"logging.file":  cfg.Logging.File,
		"logging.level": cfg.Logging.Level,
	}
}

// SaveConfig writes cfg to config.yaml in its directory
func SaveConfig(cfg *Config) error {
	dir := cfg.Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds tokens
	return os.Chmod(configFile, 0600)
}

// SaveSession stores the signed-in user's tokens
func SaveSession(cfg *Config, session SessionConfig) error {
	cfg.Session = session
	return SaveConfig(cfg)
}

// ClearSession removes stored tokens while preserving other settings
func ClearSession(cfg *Config) error {
	cfg.Session = SessionConfig{}
	return SaveConfig(cfg)
}

// Dir returns the directory config.yaml lives in
func (c *Config) Dir() string {
	if c.dir == "" {
		return DefaultConfigDir()
	}
	return c.dir
}

// IsConfigured returns true if the selected backend has what it needs to connect
func (c *Config) IsConfigured() bool {
	switch c.Backend {
	case BackendSupabase:
		return c.Supabase.URL != "" && c.Supabase.AnonKey != "" && c.TMDB.Token != ""
	case BackendFunctions:
		// data goes through the proxy, sign in still talks to Supabase auth
		return c.Functions.URL != "" && c.Supabase.URL != "" && c.Supabase.AnonKey != ""
	case BackendLocal:
		return c.TMDB.Token != ""
	default:
		return false
	}
}

// Validate checks enum values and numeric ranges
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}

// HasSession returns true if a signed-in user is stored
func (c *Config) HasSession() bool {
	return c.Session.UserID != "" && (c.Backend == BackendLocal || c.Session.AccessToken != "")
}

// ClearStore removes the local store directory
func ClearStore(cfg *Config) error {
	if cfg.Store.Path == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Store.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}
