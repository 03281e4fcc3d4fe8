// Package config loads and validates the safe-fetch server configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level server configuration loaded from JSON.
// All fields have working defaults; running without a config file is fine.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Rules        RulesConfig        `json:"rules"`
	Fetch        FetchConfig        `json:"fetch"`
	Sanitization SanitizationConfig `json:"sanitization"`
}

// ServerConfig identifies the server to MCP clients.
type ServerConfig struct {
	Name string `json:"name"`
}

// RulesConfig controls where sanitization rules are loaded from.
// If Root is set it is used directly; otherwise the store walks up from the
// working directory looking for MarkerDir, bounded by MaxAscent levels.
type RulesConfig struct {
	Root      string `json:"root,omitempty"`
	MarkerDir string `json:"markerDir"`
	File      string `json:"file"`
	MaxAscent int    `json:"maxAscent"`
}

// FetchConfig controls the outbound HTTP client.
type FetchConfig struct {
	TimeoutSeconds   int    `json:"timeoutSeconds"`
	UserAgent        string `json:"userAgent"`
	MaxResponseBytes int64  `json:"maxResponseBytes"`
}

// SanitizationConfig controls sanitization behaviour beyond the rule list.
type SanitizationConfig struct {
	// StripInvisibleText removes invisible/control Unicode characters from
	// fetched content before rules are applied. Off by default.
	StripInvisibleText *bool `json:"stripInvisibleText,omitempty"`
}

const (
	DefaultServerName       = "chainlink-safe-fetch"
	DefaultMarkerDir        = ".chainlink"
	DefaultRulesFile        = "rules/sanitize-patterns.txt"
	DefaultMaxAscent        = 10
	DefaultTimeoutSeconds   = 30
	DefaultUserAgent        = "Mozilla/5.0 (compatible; ChainlinkSafeFetch/1.0)"
	DefaultMaxResponseBytes = 5 << 20
)

// Default returns the built-in configuration used when no config file is given.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads and parses a JSON config file, applies defaults, and validates.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}

	if cfg.Rules.MarkerDir == "" {
		cfg.Rules.MarkerDir = DefaultMarkerDir
	}
	if cfg.Rules.File == "" {
		cfg.Rules.File = DefaultRulesFile
	}
	if cfg.Rules.MaxAscent == 0 {
		cfg.Rules.MaxAscent = DefaultMaxAscent
	}

	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultUserAgent
	}
	if cfg.Fetch.MaxResponseBytes == 0 {
		cfg.Fetch.MaxResponseBytes = DefaultMaxResponseBytes
	}

	if cfg.Sanitization.StripInvisibleText == nil {
		cfg.Sanitization.StripInvisibleText = boolPtr(false)
	}
}

func validate(cfg Config) error {
	if cfg.Rules.MaxAscent < 1 || cfg.Rules.MaxAscent > 64 {
		return fmt.Errorf("rules maxAscent must be between 1 and 64, got %d", cfg.Rules.MaxAscent)
	}

	if cfg.Fetch.TimeoutSeconds < 1 {
		return fmt.Errorf("fetch timeoutSeconds must be positive, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Fetch.MaxResponseBytes < 1 {
		return fmt.Errorf("fetch maxResponseBytes must be positive, got %d", cfg.Fetch.MaxResponseBytes)
	}

	return nil
}

func boolPtr(b bool) *bool { return &b }
