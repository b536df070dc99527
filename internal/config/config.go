// Package config handles greentic-dist configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (GREENTIC_*)
//  2. Config file (<user config dir>/greentic/config.yaml)
//  3. Built-in defaults
//
// The GREENTIC_DIST_OFFLINE and GREENTIC_DIST_CACHE_DIR variables are part
// of the distributor contract and are consulted directly, ahead of any
// config file value.
package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	"github.com/greentic-ai/greentic-distributor-client/internal/paths"
)

// Config holds the greentic-dist configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources. When flags is non-nil, the
// cache-dir and offline flags take precedence over file and defaults.
func Load(flags *pflag.FlagSet) *Config {
	v := viper.New()

	// Set defaults
	v.SetDefault("cache.dir", "")
	v.SetDefault("dist.offline", false)
	v.SetDefault("dist.allow_tags", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.stderr", "auto")

	// Config file location
	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Command-line flags
	if flags != nil {
		if f := flags.Lookup("cache-dir"); f != nil {
			_ = v.BindPFlag("cache.dir", f)
		}

		if f := flags.Lookup("offline"); f != nil {
			_ = v.BindPFlag("dist.offline", f)
		}

		if f := flags.Lookup("allow-tags"); f != nil {
			_ = v.BindPFlag("dist.allow_tags", f)
		}
	}

	// Environment variables
	v.SetEnvPrefix("GREENTIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The contract's cache-root variable outranks the config file.
	_ = v.BindEnv("cache.dir", paths.EnvCacheDir)

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			slog.Default().Warn("error reading config file", "component", "config", "event.type", "config.read.warning", "error", err.Error())
		}
	}

	return &Config{v: v}
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// CacheDir returns the configured cache directory, deferring to the
// contract's environment chain when unset.
func (c *Config) CacheDir() string {
	if dir := c.GetString("cache.dir"); dir != "" {
		return dir
	}

	return paths.ComponentCacheDir()
}

// Offline reports whether offline mode is on by default.
func (c *Config) Offline() bool {
	return c.GetBool("dist.offline")
}

// AllowTags reports whether tag references are permitted by default.
func (c *Config) AllowTags() bool {
	return c.GetBool("dist.allow_tags")
}

// DistOptions assembles resolver options from the configuration plus the
// contract environment variables.
func (c *Config) DistOptions() dist.Options {
	opts := dist.DefaultOptions()
	opts.CacheDir = c.CacheDir()
	opts.AllowTags = c.AllowTags()

	if c.Offline() {
		opts.Offline = true
	}

	return opts
}
