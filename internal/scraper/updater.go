package scraper

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/network"
)

// Install downloads the script at remoteURL into localPath.
// It reports false when the local copy already has the same content. The swap is atomic.
func Install(ctx context.Context, fetch *network.Fetcher, remoteURL, localPath string) (bool, error) {
	body, err := fetch.Get(ctx, remoteURL, nil)
	if err != nil {
		return false, err
	}

	remoteHash := sha256.Sum256(body)
	if local, err := filesystem.API().ReadFile(localPath); err == nil {
		localHash := sha256.Sum256(local)
		if bytes.Equal(localHash[:], remoteHash[:]) {
			return false, nil
		}
	}

	if err := filesystem.WriteAtomic(localPath, body); err != nil {
		_ = filesystem.API().Remove(localPath + ".tmp")
		return false, err
	}

	Forget(localPath)
	return true, nil
}
