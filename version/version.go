// Package version checks the latest published release and notifies when the running binary is behind.
package version

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/where"
	"github.com/spf13/viper"
)

const Releases = "https://github.com/raidenhub/phim/releases/tag/v"

var releasesAPI = "https://api.github.com/repos/raidenhub/phim/releases/latest"

var versionCacher = sync.OnceValue(func() *gache.Cache[string] {
	return gache.New[string](&gache.Options{
		Path:       filepath.Join(where.Cache(), "version.json"),
		Lifetime:   time.Hour * 24 * 2,
		FileSystem: &filesystem.GacheFs{},
	})
})

// Latest returns the newest release version without the "v" prefix. It is cached for two days.
func Latest(ctx context.Context) (string, error) {
	ver, expired, err := versionCacher().Get()
	if err != nil {
		return "", err
	}
	if !expired && ver != "" {
		return ver, nil
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := network.NewAPIFetcher().GetJSON(ctx, releasesAPI, nil, &release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", apperr.Resolve("version.Latest", "empty tag name")
	}

	ver = strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher().Set(ver)
	return ver, nil
}

// Notify prints a notice to w when a newer release exists. It is silent on any failure.
func Notify(ctx context.Context, w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	latest, err := Latest(ctx)
	if err != nil {
		return
	}
	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s New version is available %s %s\n%s\n\n",
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint(Releases+latest),
	)
}
