package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// TMDB
	TMDBAPIKey   string
	TMDBBaseURL  string
	TMDBLanguage string
	TMDBTimeout  time.Duration
	TMDBRetries  int

	// Storage
	StorageBackend   string // "bolt" or "sqlite"
	StoreOpenTimeout time.Duration

	// Popular lists
	PopularRefreshCron string
	PopularCacheTTL    time.Duration

	// Server
	ServerPort string

	// Paths
	ConfigDir     string
	DatabaseFile  string // $CONFIG_DIR/gowatchlist.db
	SQLiteFile    string // $CONFIG_DIR/gowatchlist.sqlite
	BlocklistFile string // $CONFIG_DIR/blocklist.txt

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_LANGUAGE", "en-US")
	viper.SetDefault("TMDB_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TMDB_MAX_RETRIES", 2)
	viper.SetDefault("STORAGE_BACKEND", BackendBolt)
	viper.SetDefault("STORE_OPEN_TIMEOUT_SECONDS", 5)
	viper.SetDefault("POPULAR_REFRESH_CRON", "0 */6 * * *")
	viper.SetDefault("POPULAR_CACHE_TTL_MINUTES", 60)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	configDir, err := resolveConfigDir(viper.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// TMDB
		TMDBAPIKey:   strings.TrimSpace(viper.GetString("TMDB_API_KEY")),
		TMDBBaseURL:  viper.GetString("TMDB_BASE_URL"),
		TMDBLanguage: viper.GetString("TMDB_LANGUAGE"),
		TMDBTimeout:  time.Duration(viper.GetInt("TMDB_TIMEOUT_SECONDS")) * time.Second,
		TMDBRetries:  viper.GetInt("TMDB_MAX_RETRIES"),

		// Storage
		StorageBackend:   strings.ToLower(viper.GetString("STORAGE_BACKEND")),
		StoreOpenTimeout: time.Duration(viper.GetInt("STORE_OPEN_TIMEOUT_SECONDS")) * time.Second,

		// Popular lists
		PopularRefreshCron: viper.GetString("POPULAR_REFRESH_CRON"),
		PopularCacheTTL:    time.Duration(viper.GetInt("POPULAR_CACHE_TTL_MINUTES")) * time.Minute,

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		ConfigDir:     configDir,
		DatabaseFile:  filepath.Join(configDir, "gowatchlist.db"),
		SQLiteFile:    filepath.Join(configDir, "gowatchlist.sqlite"),
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),

		// Logging
		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	// Validate fields
	if config.StorageBackend != BackendBolt && config.StorageBackend != BackendSQLite {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendBolt, BackendSQLite, config.StorageBackend)
	}
	if config.TMDBTimeout <= 0 {
		return nil, fmt.Errorf("TMDB_TIMEOUT_SECONDS must be positive")
	}
	if config.TMDBRetries < 0 {
		return nil, fmt.Errorf("TMDB_MAX_RETRIES must not be negative")
	}
	if config.StoreOpenTimeout <= 0 {
		return nil, fmt.Errorf("STORE_OPEN_TIMEOUT_SECONDS must be positive")
	}

	return config, nil
}

// RequireCatalog checks the settings needed to talk to TMDB
func (c *Config) RequireCatalog() error {
	if c.TMDBAPIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	return nil
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "gowatchlist"), nil
	}
	// Convert relative path to absolute path
	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}
