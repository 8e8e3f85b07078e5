// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package config loads service configuration from layered sources:
// built-in defaults, an optional YAML config file, and environment
// variables, in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/buzzrank/config.yaml",
	"/etc/buzzrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "BUZZRANK_CONFIG_PATH"

// Config holds all runtime configuration for the buzzrank service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig controls the Postgres connection pool.
type DatabaseConfig struct {
	DSN            string        `koanf:"dsn"`
	MaxConns       int           `koanf:"max_conns"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"` // include file:line in log output
}

// SecurityConfig controls CORS and rate limiting on the API surface.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// RecommendConfig holds the service-level overrides for the recommendation
// engine. Zero values mean "use the engine default".
type RecommendConfig struct {
	DefaultFeedLimit int           `koanf:"default_feed_limit"`
	MaxFeedLimit     int           `koanf:"max_feed_limit"`
	MaxCandidates    int           `koanf:"max_candidates"`
	CacheEnabled     bool          `koanf:"cache_enabled"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries  int           `koanf:"cache_max_entries"`
	DiversityEnabled bool          `koanf:"diversity_enabled"`
	DiversityLambda  float64       `koanf:"diversity_lambda"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:            "",
			MaxConns:       10,
			ConnectTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			CORSOrigins:       nil,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Recommend: RecommendConfig{
			DefaultFeedLimit: 50,
			MaxFeedLimit:     200,
			MaxCandidates:    500,
			CacheEnabled:     true,
			CacheTTL:         5 * time.Minute,
			CacheMaxEntries:  10000,
			DiversityEnabled: false,
			DiversityLambda:  0.7,
		},
	}
}

// sliceConfigPaths lists config paths that hold slices and may arrive as
// comma-separated strings from environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// Load builds the service configuration by layering defaults, an optional
// YAML config file, and BUZZRANK_-prefixed environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional YAML config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("BUZZRANK_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring the
// BUZZRANK_CONFIG_PATH override before the default paths.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps BUZZRANK_SECTION_FIELD environment variables to
// nested koanf paths, e.g. BUZZRANK_SERVER_PORT -> server.port.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "BUZZRANK_"))

	for _, section := range []string{"server", "database", "logging", "security", "recommend"} {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("BUZZRANK_SERVER_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("BUZZRANK_DATABASE_DSN is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("BUZZRANK_DATABASE_MAX_CONNS must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("BUZZRANK_SECURITY_RATE_LIMIT_REQS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("BUZZRANK_SECURITY_RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultFeedLimit < 1 {
		return fmt.Errorf("BUZZRANK_RECOMMEND_DEFAULT_FEED_LIMIT must be at least 1")
	}
	if c.Recommend.MaxFeedLimit < c.Recommend.DefaultFeedLimit {
		return fmt.Errorf("BUZZRANK_RECOMMEND_MAX_FEED_LIMIT must be >= default feed limit")
	}
	if c.Recommend.MaxCandidates < 1 {
		return fmt.Errorf("BUZZRANK_RECOMMEND_MAX_CANDIDATES must be at least 1")
	}
	if c.Recommend.DiversityLambda < 0 || c.Recommend.DiversityLambda > 1 {
		return fmt.Errorf("BUZZRANK_RECOMMEND_DIVERSITY_LAMBDA must be between 0 and 1")
	}
	if c.Recommend.CacheEnabled {
		if c.Recommend.CacheTTL <= 0 {
			return fmt.Errorf("BUZZRANK_RECOMMEND_CACHE_TTL must be positive when caching is enabled")
		}
		if c.Recommend.CacheMaxEntries < 1 {
			return fmt.Errorf("BUZZRANK_RECOMMEND_CACHE_MAX_ENTRIES must be at least 1 when caching is enabled")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("BUZZRANK_LOGGING_LEVEL must be one of trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("BUZZRANK_LOGGING_FORMAT must be json or console")
	}
	return nil
}
