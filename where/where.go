// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "PHIM_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory.
// It follows os.UserConfigDir unless PHIM_CONFIG_PATH is set.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Phim))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Phim))
}

// Logs resolves the directory that holds dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sources resolves the directory containing user Lua providers.
func Sources() string {
	return ensureDir(filepath.Join(Config(), "sources"))
}

// Credentials resolves the unencrypted credential file used when the system keyring is unavailable.
func Credentials() string {
	return filepath.Join(Config(), "credentials.json")
}

// TMDBIDs resolves the title to TMDB id mapping cache.
func TMDBIDs() string {
	return filepath.Join(Cache(), "tmdb_ids.json")
}

// Responses resolves the directory of the TTL response cache.
func Responses() string {
	return ensureDir(filepath.Join(Cache(), "responses"))
}
