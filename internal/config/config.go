// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads the TOML configuration with sensible defaults for
// every field.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults.
const (
	DefaultTimeoutSeconds    = 300
	DefaultKeepaliveSeconds  = 60
	DefaultMirrorCount       = 20
	DefaultCacheKeepVersions = 3
)

// Config holds the user-tunable settings.
type Config struct {
	// TimeoutSeconds bounds a single external invocation.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// KeepaliveSeconds is the privilege session refresh period.
	KeepaliveSeconds int `toml:"keepalive_seconds"`
	// MirrorCountry restricts reflector to one country when set.
	MirrorCountry string `toml:"mirror_country"`
	// MirrorCount is how many mirrors reflector keeps.
	MirrorCount int `toml:"mirror_count"`
	// CacheKeepVersions is how many package versions paccache keeps.
	CacheKeepVersions int `toml:"cache_keep_versions"`
	// PacmanBin overrides the package manager binary.
	PacmanBin string `toml:"pacman_bin"`
	// AURHelper names an AUR helper (e.g. paru); empty disables AUR search.
	AURHelper string `toml:"aur_helper"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TimeoutSeconds:    DefaultTimeoutSeconds,
		KeepaliveSeconds:  DefaultKeepaliveSeconds,
		MirrorCount:       DefaultMirrorCount,
		CacheKeepVersions: DefaultCacheKeepVersions,
		PacmanBin:         "pacman",
	}
}

// Path returns the config file location under XDG config home.
func Path() string {
	return filepath.Join(xdgConfigHome(), "arch-manager", "config.toml")
}

func xdgConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".config"
	}

	return filepath.Join(home, ".config")
}

// Load reads the config file at path, overlaying it on the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.KeepaliveSeconds <= 0 {
		c.KeepaliveSeconds = DefaultKeepaliveSeconds
	}

	if c.MirrorCount <= 0 {
		c.MirrorCount = DefaultMirrorCount
	}

	if c.CacheKeepVersions <= 0 {
		c.CacheKeepVersions = DefaultCacheKeepVersions
	}

	if c.PacmanBin == "" {
		c.PacmanBin = "pacman"
	}
}

// Timeout returns the executor deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// KeepaliveInterval returns the privilege refresh period.
func (c *Config) KeepaliveInterval() time.Duration {
	return time.Duration(c.KeepaliveSeconds) * time.Second
}
