// Package config loads service configuration from the environment, with an
// optional YAML file for listener settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. The NEXT_PUBLIC_* names are the deployed
// contract inherited from the previous hosting setup and are kept verbatim.
const (
	EnvBooksAPI        = "NEXT_PUBLIC_BOOKS_API"
	EnvAuthorAPI       = "NEXT_PUBLIC_AUTHOR_API"
	EnvCollectionsAPI  = "NEXT_PUBLIC_COLLECTIONS_API"
	EnvNewBooksAPI     = "NEXT_PUBLIC_NEWBOOKS_API"
	EnvRemoteConfigAPI = "NEXT_PUBLIC_REMOTE_CONFIG_API"
	EnvUsersStatsAPI   = "NEXT_PUBLIC_USERS_STATS"
	EnvVisionAPIURL    = "NEXT_PUBLIC_GOOGLE_VISION_API_URL"
	EnvVisionAPIKey    = "NEXT_PUBLIC_GOOGLE_VISION_API_KEY"

	EnvPort       = "PORT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvConfigFile = "CATALOG_CONFIG"
)

// Config holds everything the service needs at runtime. Upstream URLs may be
// empty: each route validates its own URL per request and answers with the
// documented error when it is missing, so a partially configured deployment
// still serves the routes it can.
type Config struct {
	Port     string
	LogLevel string

	BooksAPI        string
	AuthorAPI       string
	CollectionsAPI  string
	NewBooksAPI     string
	RemoteConfigAPI string
	UsersStatsAPI   string
	VisionAPIURL    string
	VisionAPIKey    string

	AllowedOrigins []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	UpstreamTimeout time.Duration
}

// fileConfig is the optional YAML overlay for listener settings.
type fileConfig struct {
	Port            string   `yaml:"port"`
	LogLevel        string   `yaml:"log_level"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	IdleTimeout     string   `yaml:"idle_timeout"`
	UpstreamTimeout string   `yaml:"upstream_timeout"`
}

// FromEnv builds a Config from the process environment, applying the YAML
// overlay named by CATALOG_CONFIG when set.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:     getenv(EnvPort, "8080"),
		LogLevel: getenv(EnvLogLevel, "info"),

		BooksAPI:        strings.TrimSpace(os.Getenv(EnvBooksAPI)),
		AuthorAPI:       strings.TrimSpace(os.Getenv(EnvAuthorAPI)),
		CollectionsAPI:  strings.TrimSpace(os.Getenv(EnvCollectionsAPI)),
		NewBooksAPI:     strings.TrimSpace(os.Getenv(EnvNewBooksAPI)),
		RemoteConfigAPI: strings.TrimSpace(os.Getenv(EnvRemoteConfigAPI)),
		UsersStatsAPI:   strings.TrimSpace(os.Getenv(EnvUsersStatsAPI)),
		VisionAPIURL:    strings.TrimSpace(os.Getenv(EnvVisionAPIURL)),
		VisionAPIKey:    strings.TrimSpace(os.Getenv(EnvVisionAPIKey)),

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		UpstreamTimeout: 30 * time.Second,
	}

	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.ReadTimeout, &c.ReadTimeout},
		{fc.WriteTimeout, &c.WriteTimeout},
		{fc.IdleTimeout, &c.IdleTimeout},
		{fc.UpstreamTimeout, &c.UpstreamTimeout},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
