// Package paths resolves the distributor client's on-disk locations: the
// component cache root, the config directory, and the log directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "greentic"

// EnvCacheDir overrides the component cache root when set.
const EnvCacheDir = "GREENTIC_DIST_CACHE_DIR"

// EnvHome is the greentic home directory; cache/components is appended.
const EnvHome = "GREENTIC_HOME"

// ComponentCacheDir resolves the component cache root.
//
// Order: GREENTIC_DIST_CACHE_DIR, GREENTIC_HOME/cache/components, the OS
// user cache dir under greentic/components, and finally a relative
// .greentic/cache/components.
func ComponentCacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}

	if home := os.Getenv(EnvHome); home != "" {
		return filepath.Join(home, "cache", "components")
	}

	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		return filepath.Join(cacheDir, appName, "components")
	}

	return filepath.Join("."+appName, "cache", "components")
}

// ConfigRoot returns the directory holding config.yaml. An absolute
// XDG_CONFIG_HOME wins on every platform; os.UserConfigDir covers the OS
// conventions; a bare home directory is the last resort.
func ConfigRoot() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	if root, err := os.UserConfigDir(); err == nil && root != "" {
		return filepath.Join(root, appName), nil
	}

	return homeFallback(".config")
}

// DefaultLogFile returns the rotated log file path under the user state
// directory. Logs live in state, not cache: `cache rm`/`gc` must never eat
// the record of what they removed.
func DefaultLogFile() (string, error) {
	root, err := stateRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, "logs", "greentic-dist.log"), nil
}

// stateRoot is XDG-only; Go has no os.UserStateDir, so the fallback goes
// straight to ~/.local/state.
func stateRoot() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	return homeFallback(filepath.Join(".local", "state"))
}

func homeFallback(dir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	return filepath.Join(home, dir, appName), nil
}
