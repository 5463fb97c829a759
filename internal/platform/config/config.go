// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file,
when present, is loaded first through 'joho/godotenv' without overriding
variables already set in the process environment.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (storage, server) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the media service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"4000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageRoot is the sandbox every stored file lives under.
	StorageRoot string `env:"STORAGE_ROOT" envDefault:"./public"`

	// StagingDir holds uploads before they are moved. Empty means {StorageRoot}/temp.
	StagingDir string `env:"STAGING_DIR"`

	// AllowedExtensions is the ordered probe list used to match logical names.
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envSeparator:"," envDefault:".jpg,.jpeg,.png,.gif,.webp,.svg,.txt,.pdf,.zip"`

	// MaxUploadBytes caps a single request body.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"268435456"`

	// Metrics exposition
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Rotating log file; empty keeps logging on stdout only.
	LogFile        string `env:"LOG_FILE"`
	LogMaxSizeMB   int    `env:"LOG_MAX_SIZE_MB"   envDefault:"100"`
	LogMaxBackups  int    `env:"LOG_MAX_BACKUPS"   envDefault:"5"`
	LogMaxAgeDays  int    `env:"LOG_MAX_AGE_DAYS"  envDefault:"28"`
	LogCompression bool   `env:"LOG_COMPRESS"      envDefault:"true"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load reads an optional .env file, then parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current process environment to a [Config] and normalizes it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize makes paths absolute and extensions canonical.
func (c *Config) normalize() error {
	root, err := filepath.Abs(c.StorageRoot)
	if err != nil {
		return fmt.Errorf("config: invalid STORAGE_ROOT %q: %w", c.StorageRoot, err)
	}
	c.StorageRoot = root

	if c.StagingDir == "" {
		c.StagingDir = filepath.Join(root, "temp")
	}
	if c.StagingDir, err = filepath.Abs(c.StagingDir); err != nil {
		return fmt.Errorf("config: invalid STAGING_DIR: %w", err)
	}

	extensions := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	if len(extensions) == 0 {
		return errors.New("config: ALLOWED_EXTENSIONS must not be empty")
	}
	c.AllowedExtensions = extensions

	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Origins returns the EXTRA_ORIGINS list split and trimmed.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
