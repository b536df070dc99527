package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/greentic-ai/greentic-distributor-client/internal/paths"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(paths.EnvCacheDir, "")
	t.Setenv(paths.EnvHome, "")
	t.Setenv("GREENTIC_DIST_OFFLINE", "")
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg := Load(nil)

	if cfg.Offline() {
		t.Error("Offline() = true, want false by default")
	}

	if !cfg.AllowTags() {
		t.Error("AllowTags() = false, want true by default")
	}

	if got := cfg.GetString("log.level"); got != "info" {
		t.Errorf("log.level = %q, want info", got)
	}

	if got := cfg.GetString("log.format"); got != "json" {
		t.Errorf("log.format = %q, want json", got)
	}
}

func TestCacheDirFallsBackToContractChain(t *testing.T) {
	isolateEnv(t)
	t.Setenv(paths.EnvHome, "/greentic-home")

	cfg := Load(nil)

	want := filepath.Join("/greentic-home", "cache", "components")
	if got := cfg.CacheDir(); got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GREENTIC_DIST_OFFLINE", "1")
	t.Setenv("GREENTIC_LOG_LEVEL", "debug")

	cfg := Load(nil)

	if got := cfg.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug from env", got)
	}

	opts := cfg.DistOptions()
	if !opts.Offline {
		t.Error("DistOptions().Offline = false, want true from GREENTIC_DIST_OFFLINE=1")
	}
}

func TestDistOptionsCarryConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv(paths.EnvCacheDir, "/custom/cache")

	cfg := Load(nil)
	opts := cfg.DistOptions()

	if opts.CacheDir != "/custom/cache" {
		t.Errorf("CacheDir = %q, want /custom/cache", opts.CacheDir)
	}

	if !opts.AllowTags {
		t.Error("AllowTags = false, want true")
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	isolateEnv(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("cache-dir", "", "")
	flags.Bool("offline", false, "")

	if err := flags.Parse([]string{"--cache-dir", "/flag/cache", "--offline"}); err != nil {
		t.Fatal(err)
	}

	cfg := Load(flags)

	if got := cfg.CacheDir(); got != "/flag/cache" {
		t.Errorf("CacheDir() = %q, want /flag/cache", got)
	}

	if !cfg.Offline() {
		t.Error("Offline() = false, want true from --offline")
	}
}
