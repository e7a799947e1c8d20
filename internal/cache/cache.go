// Package cache is a TTL JSON cache stored on the virtual filesystem under the responses directory.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/where"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// TTL is the configured entry lifetime.
func TTL() time.Duration {
	hours := viper.GetInt(key.CacheTTL)
	if hours <= 0 {
		hours = 6
	}
	return time.Duration(hours) * time.Hour
}

// GenerateKey hashes a query and its namespace into a stable file name.
func GenerateKey(query, namespace string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(query, " ", "")) + namespace
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read decodes the entry into target if it exists and is younger than TTL.
func Read(key string, target any) bool {
	fs := filesystem.API()
	path := filepath.Join(where.Responses(), key)

	info, err := fs.Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL() {
		return false
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}

// Write stores data under key with an atomic rename.
func Write(key string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return filesystem.WriteAtomic(filepath.Join(where.Responses(), key), encoded)
}

// CollectGarbage removes expired entries and returns how many were deleted.
func CollectGarbage() int {
	fs := filesystem.API()
	ttl := TTL()
	removed := 0

	_ = afero.Walk(fs, where.Responses(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > ttl && fs.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed
}
