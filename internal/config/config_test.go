// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if !cfg.Recommend.CacheEnabled {
		t.Error("Recommend.CacheEnabled should default to true")
	}
	if cfg.Recommend.DiversityLambda != 0.7 {
		t.Errorf("Recommend.DiversityLambda = %v, want 0.7", cfg.Recommend.DiversityLambda)
	}

	// Defaults must validate once the one required field is supplied.
	cfg.Database.DSN = "postgres://localhost/buzzit"
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with DSN should validate: %v", err)
	}
}

func TestLoad_RequiresDSN(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without a database DSN")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BUZZRANK_DATABASE_DSN", "postgres://db:5432/buzzit")
	t.Setenv("BUZZRANK_SERVER_PORT", "9090")
	t.Setenv("BUZZRANK_LOGGING_LEVEL", "debug")
	t.Setenv("BUZZRANK_RECOMMEND_CACHE_TTL", "30s")
	t.Setenv("BUZZRANK_SECURITY_CORS_ORIGINS", "https://buzzit.example, https://app.buzzit.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.DSN != "postgres://db:5432/buzzit" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.CacheTTL != 30*time.Second {
		t.Errorf("Recommend.CacheTTL = %v, want 30s", cfg.Recommend.CacheTTL)
	}
	want := []string{"https://buzzit.example", "https://app.buzzit.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], origin)
		}
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := strings.Join([]string{
		"database:",
		"  dsn: postgres://filehost/buzzit",
		"server:",
		"  port: 8888",
		"recommend:",
		"  diversity_enabled: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "postgres://filehost/buzzit" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if !cfg.Recommend.DiversityEnabled {
		t.Error("Recommend.DiversityEnabled should be true from file")
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "database:\n  dsn: postgres://filehost/buzzit\nserver:\n  port: 8888\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("BUZZRANK_SERVER_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, env should override file", cfg.Server.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Database.DSN = "postgres://localhost/buzzit"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"zero rate limit but disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, false},
		{"lambda out of range", func(c *Config) { c.Recommend.DiversityLambda = 1.5 }, true},
		{"max feed below default", func(c *Config) { c.Recommend.MaxFeedLimit = 10 }, true},
		{"cache enabled zero ttl", func(c *Config) { c.Recommend.CacheTTL = 0 }, true},
		{"cache disabled ignores ttl", func(c *Config) {
			c.Recommend.CacheEnabled = false
			c.Recommend.CacheTTL = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BUZZRANK_SERVER_PORT", "server.port"},
		{"BUZZRANK_DATABASE_MAX_CONNS", "database.max_conns"},
		{"BUZZRANK_SECURITY_RATE_LIMIT_REQS", "security.rate_limit_reqs"},
		{"BUZZRANK_RECOMMEND_DIVERSITY_LAMBDA", "recommend.diversity_lambda"},
		{"BUZZRANK_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
