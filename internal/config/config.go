package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client settings
type Config struct {
	// Backend
	APIURL         string
	RequestTimeout time.Duration

	// Organizer channel poll period
	ChatRefresh time.Duration

	// Local storage
	DataDir string

	// Logging
	LogLevel string
	LogFile  string
	Debug    bool

	// Dev backend
	DevAPIAddr string
}

const (
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultChatRefresh    = 5 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	dataDir := strings.TrimSpace(os.Getenv("EVENTDESK_DATA_DIR"))
	if dataDir == "" {
		d, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = d
	}

	chatRefresh, err := getEnvDuration("EVENTDESK_CHAT_REFRESH", DefaultChatRefresh)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("EVENTDESK_REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:         strings.TrimRight(getEnvWithDefault("EVENTDESK_API_URL", DefaultAPIURL), "/"),
		RequestTimeout: timeout,
		ChatRefresh:    chatRefresh,
		DataDir:        dataDir,
		LogLevel:       getEnvWithDefault("EVENTDESK_LOG_LEVEL", "info"),
		LogFile:        getEnvWithDefault("EVENTDESK_LOG_FILE", filepath.Join(dataDir, "eventdesk.log")),
		Debug:          getEnvBool("EVENTDESK_DEBUG", false),
		DevAPIAddr:     getEnvWithDefault("EVENTDESK_DEVAPI_ADDR", ":5000"),
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("EVENTDESK_API_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("EVENTDESK_API_URL must be http or https, got %q", c.APIURL)
	}
	if c.ChatRefresh <= 0 {
		return fmt.Errorf("EVENTDESK_CHAT_REFRESH must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("EVENTDESK_REQUEST_TIMEOUT must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	return nil
}

// defaultDataDir uses the XDG data directory or falls back to ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "eventdesk"), nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
