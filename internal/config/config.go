// Package config loads runtime configuration from .env files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/saadjs/kcal-trends/internal/app"
)

// Config holds the application configuration.
type Config struct {
	DBPath     string
	UserID     string
	APIBaseURL string
	APIToken   string
	APITimeout time.Duration
	ExportFile string
	Location   *time.Location
	LogLevel   string
	LogFormat  string
	HTTPAddr   string
}

// Default values
const (
	defaultUserID     = "local"
	defaultAPITimeout = 12 * time.Second
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultHTTPAddr   = ":8080"
)

// Load reads the first .env file found and then the environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			break
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	dbPath := getEnvString("KCAL_DB_PATH", "")
	if dbPath == "" {
		p, err := app.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	loc, err := ParseLocation(getEnvString("KCAL_TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("KCAL_API_TIMEOUT", defaultAPITimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:     dbPath,
		UserID:     getEnvString("KCAL_USER_ID", defaultUserID),
		APIBaseURL: strings.TrimRight(getEnvString("KCAL_API_URL", ""), "/"),
		APIToken:   getEnvString("KCAL_API_TOKEN", ""),
		APITimeout: timeout,
		ExportFile: getEnvString("KCAL_EXPORT_FILE", ""),
		Location:   loc,
		LogLevel:   getEnvString("KCAL_LOG_LEVEL", defaultLogLevel),
		LogFormat:  strings.ToLower(getEnvString("KCAL_LOG_FORMAT", defaultLogFormat)),
		HTTPAddr:   getEnvString("KCAL_HTTP_ADDR", defaultHTTPAddr),
	}, nil
}

// ParseLocation resolves an IANA zone name. Empty and "Local" mean the
// machine's zone.
func ParseLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if dir, err := app.DefaultDataDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := getEnvString(key, "")
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q (expected a positive duration like 10s)", key, v)
	}
	return d, nil
}
