// Package config handles XDG configuration directory, file paths and
// environment settings.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "tasker"

	// TokenFile is the stored session token filename.
	TokenFile = "token"

	// UserFile is the stored user profile filename.
	UserFile = "user.json"

	// SQLiteFile is the session database used by the sqlite store backend.
	SQLiteFile = "session.sqlite"

	// LogFile receives log output while the TUI owns the terminal.
	LogFile = "tasker.log"

	// DefaultAPIURL is the base URL of the task service when none is configured.
	DefaultAPIURL = "http://localhost:5000/api"

	// DefaultAPITimeout bounds a single request to the task service.
	DefaultAPITimeout = 10 * time.Second
)

// Store backends for session persistence.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIURL is the base URL of the task service.
	APIURL string

	// StoreBackend selects where the session is persisted (file or sqlite).
	StoreBackend string

	// APITimeout bounds each request to the task service.
	APITimeout time.Duration

	// LogFormat is "text" or "json".
	LogFormat string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasker or $HOME/.config/tasker.
// Settings are read from the environment after loading .env files from the
// config directory and the working directory; real environment variables win.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load()

	cfg := &Config{
		Dir:          dir,
		APIURL:       DefaultAPIURL,
		StoreBackend: StoreFile,
		APITimeout:   DefaultAPITimeout,
		LogFormat:    "text",
	}

	if v := strings.TrimSpace(os.Getenv("TASKER_API_URL")); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("TASKER_STORE")); v != "" {
		cfg.StoreBackend = strings.ToLower(v)
	}
	if v := os.Getenv("TASKER_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APITimeout = time.Duration(n) * time.Second
		}
	}
	if os.Getenv("TASKER_LOG_FORMAT") == "json" {
		cfg.LogFormat = "json"
	}

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// UserPath returns the path to the stored user profile.
func (c *Config) UserPath() string {
	return filepath.Join(c.Dir, UserFile)
}

// SQLitePath returns the path to the session database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Dir, SQLiteFile)
}

// LogPath returns the path of the TUI log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// LogLevel returns the slog level name matching the Debug flag.
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return "warn"
}
