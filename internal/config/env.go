// Package config provides centralized configuration management.
// All environment lookups live here instead of scattered os.Getenv calls.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// FlashmartEnv holds all flashmart environment variables.
type FlashmartEnv struct {
	// APIURL is the storefront API base URL (FLASHMART_API_URL)
	APIURL string

	// DataDir overrides the local state directory (FLASHMART_DATA_DIR)
	DataDir string

	// Timeout is the per-request HTTP timeout (FLASHMART_TIMEOUT_SECS)
	Timeout time.Duration

	// NoColor disables colored output (FLASHMART_NO_COLOR)
	NoColor bool
}

var (
	env     *FlashmartEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *FlashmartEnv {
	envOnce.Do(func() {
		env = &FlashmartEnv{
			APIURL:  getEnvDefault("FLASHMART_API_URL", "http://localhost:8080/api/v1"),
			DataDir: os.Getenv("FLASHMART_DATA_DIR"),
			Timeout: time.Duration(getEnvInt("FLASHMART_TIMEOUT_SECS", 30)) * time.Second,
			NoColor: os.Getenv("FLASHMART_NO_COLOR") == "1",
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Paths holds standard flashmart directory paths.
type Paths struct {
	// Home is the flashmart home directory (~/.flashmart)
	Home string

	// Data is the data directory (~/.flashmart/data)
	Data string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
// FLASHMART_DATA_DIR replaces the home directory entirely when set.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		root := Env().DataDir
		if root == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			root = filepath.Join(home, ".flashmart")
		}

		paths = &Paths{
			Home: root,
			Data: filepath.Join(root, "data"),
		}
	})
	return paths
}

// ResetPaths resets the cached paths (for testing).
func ResetPaths() {
	pathsOnce = sync.Once{}
	paths = nil
}

// Path returns a path under the flashmart home directory.
func Path(parts ...string) string {
	p := GetPaths()
	allParts := append([]string{p.Home}, parts...)
	return filepath.Join(allParts...)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
