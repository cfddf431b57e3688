// Package paths provides centralized path resolution for voicetools.
// This package has NO internal imports (only stdlib) to avoid import cycles.
// All functions return errors to allow callers to log appropriately.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigBaseName is the config file name without extension.
const ConfigBaseName = "voicetools"

// ConfigExtensions lists the supported config formats in lookup order.
var ConfigExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// BaseDir returns the voicetools base directory (~/.voicetools).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".voicetools"), nil
}

// DataPath returns a path within the voicetools data directory (~/.voicetools/<subpath>).
func DataPath(subpath string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, subpath), nil
}

// ConfigPath returns the active config file path.
// Priority: ./voicetools.<ext> (current dir) > ~/.voicetools/voicetools.<ext>
// Returns ("", nil) if no config exists - this is a valid state, not an error.
func ConfigPath() (string, error) {
	for _, ext := range ConfigExtensions {
		local := ConfigBaseName + ext
		if _, err := os.Stat(local); err == nil {
			abs, err := filepath.Abs(local)
			if err != nil {
				return "", fmt.Errorf("failed to get absolute path: %w", err)
			}
			return abs, nil
		}
	}

	base, err := BaseDir()
	if err != nil {
		// No home directory means no global config; not an error for one-shot tools
		return "", nil
	}
	for _, ext := range ConfigExtensions {
		global := filepath.Join(base, ConfigBaseName+ext)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// ScratchDir returns the directory for transient audio artifacts.
// An empty configured dir means the OS temp directory.
func ScratchDir(configured string) (string, error) {
	if configured == "" {
		return os.TempDir(), nil
	}
	dir, err := ExpandTilde(configured)
	if err != nil {
		return "", err
	}
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDir creates a directory if it doesn't exist.
// Uses 0750 permissions (owner: rwx, group: rx, other: none).
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// ExpandTilde expands a path that starts with ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
