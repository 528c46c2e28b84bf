// SPDX-License-Identifier: MPL-2.0

package pkgcache

import (
	"fmt"
	"os"
	"path/filepath"
)

// CachePathEnv is the environment variable for overriding the default package cache path.
const CachePathEnv = "NUGET_PACKAGES"

// DefaultRoot returns the default package cache directory.
// It checks NUGET_PACKAGES first, then falls back to ~/.nuget/packages.
func DefaultRoot() (string, error) {
	return DefaultRootWith(os.Getenv)
}

// DefaultRootWith returns the default package cache directory using the provided
// getenv function. This enables testing without mutating process-global environment state.
func DefaultRootWith(getenv func(string) string) (string, error) {
	if envPath := getenv(CachePathEnv); envPath != "" {
		return envPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".nuget", "packages"), nil
}
