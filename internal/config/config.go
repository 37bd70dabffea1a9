// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the session repository provider.
const (
	StorageBadger = "badger"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Session SessionConfig
	Catalog CatalogConfig
	CORS    CORSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds durable storage configuration.
type DataConfig struct {
	BasePath      string
	StorageDriver string // badger, sqlite or memory (default: badger)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// SessionConfig holds the simulated session flow configuration.
type SessionConfig struct {
	// AuthDelay is the artificial wait before login and signup resolve (default: 1s).
	AuthDelay time.Duration
	// BookingDelay is the simulated payment processing wait (default: 2s).
	BookingDelay time.Duration
	// IdleTTL is how long an unused profile store stays in memory (default: 24h).
	IdleTTL time.Duration
	// CookieSecure marks the profile cookie Secure (default: true in production).
	CookieSecure bool
	// AuthRateLimit is the number of login/signup attempts per minute per client (default: 20).
	AuthRateLimit int
}

// CatalogConfig holds catalog dataset configuration.
type CatalogConfig struct {
	// Path overrides the embedded dataset with a JSON file on disk. Empty uses the embedded one.
	Path string
	// Watch reloads Path when it changes (default: true).
	Watch bool
}

// CORSConfig holds cross-origin configuration for the web front-end.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for durable session storage")
	storageDriver := fs.String("storage-driver", "", "Session storage driver (badger, sqlite, memory)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Session flags
	authDelay := fs.String("auth-delay", "", "Simulated login/signup latency (default: 1s)")
	bookingDelay := fs.String("booking-delay", "", "Simulated booking latency (default: 2s)")
	idleTTL := fs.String("session-idle-ttl", "", "Evict idle profile stores after (default: 24h)")
	cookieSecure := fs.String("cookie-secure", "", "Set Secure on the profile cookie")
	authRateLimit := fs.String("auth-rate-limit", "", "Login/signup attempts per minute per client (default: 20)")

	catalogPath := fs.String("catalog-path", "", "Path to a catalog JSON file (default: embedded)")
	catalogWatch := fs.String("catalog-watch", "", "Reload the catalog file on change (default: true)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Values already present in the environment win over the file.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			StorageDriver: strings.ToLower(getConfigValue(*storageDriver, "STORAGE_DRIVER", StorageBadger)),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Session: SessionConfig{
			AuthRateLimit: getIntConfigValue(*authRateLimit, "AUTH_RATE_LIMIT", 20),
		},
		Catalog: CatalogConfig{
			Path:  getConfigValue(*catalogPath, "CATALOG_PATH", ""),
			Watch: getBoolConfigValue(*catalogWatch, "CATALOG_WATCH", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
	}
	cfg.Session.CookieSecure = getBoolConfigValue(*cookieSecure, "SESSION_COOKIE_SECURE", cfg.App.Environment == "production")

	durations := []struct {
		flag, envKey, def string
		dst               *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*authDelay, "SESSION_AUTH_DELAY", "1s", &cfg.Session.AuthDelay},
		{*bookingDelay, "SESSION_BOOKING_DELAY", "2s", &cfg.Session.BookingDelay},
		{*idleTTL, "SESSION_IDLE_TTL", "24h", &cfg.Session.IdleTTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Catalog.Path != "" {
		expanded, err := expandPath(cfg.Catalog.Path, "")
		if err != nil {
			return nil, fmt.Errorf("invalid catalog path: %w", err)
		}
		cfg.Catalog.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Data.StorageDriver {
	case StorageBadger, StorageSQLite:
		if c.Data.BasePath == "" {
			return errors.New("data base path cannot be empty after expansion")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage driver: %s (must be badger, sqlite, or memory)", c.Data.StorageDriver)
	}

	if c.Session.AuthDelay < 0 || c.Session.BookingDelay < 0 {
		return errors.New("session delays cannot be negative")
	}

	if c.Session.AuthRateLimit < 1 {
		return fmt.Errorf("invalid auth rate limit: %d (must be at least 1)", c.Session.AuthRateLimit)
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "SecretShows", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
