// Package provider defines the catalog capability interface and the registry of built-in and Lua providers.
package provider

import (
	"context"
	"path/filepath"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/provider/cine"
	"github.com/raidenhub/phim/provider/community"
	"github.com/raidenhub/phim/provider/custom"
	"github.com/raidenhub/phim/provider/tvhd"
	"github.com/raidenhub/phim/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Provider is one catalog site. Implementations hold configuration only; every call is independent.
type Provider interface {
	ID() string
	Domain() string
	// Category returns the listing reference of the kind's home page.
	Category(kind media.Kind) string
	List(ctx context.Context, category string, page int) ([]*media.Item, error)
	Search(ctx context.Context, query string) ([]*media.Item, error)
	Detail(ctx context.Context, ref string) (*media.Detail, error)
}

// Builtins returns the compiled-in providers in registration order.
func Builtins() []Provider {
	fetch := network.NewScrapeFetcher()
	return []Provider{
		cine.New(fetch),
		tvhd.New(fetch),
		community.New(fetch),
	}
}

// Customs loads every Lua script in the sources directory. Broken scripts are logged and skipped.
func Customs() []Provider {
	files, err := filesystem.API().ReadDir(where.Sources())
	if err != nil {
		return nil
	}

	client := network.NewScrapeFetcher().Client()

	var providers []Provider
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".lua" {
			continue
		}

		path := filepath.Join(where.Sources(), f.Name())
		p, err := custom.Load(path, client)
		if err != nil {
			log.WithField("script", path).WithError(err).Warn("skipping lua provider")
			continue
		}
		providers = append(providers, p)
	}

	return providers
}

// All returns the builtins followed by the custom providers.
func All() []Provider {
	return append(Builtins(), Customs()...)
}

// Enabled narrows All to the ids listed in sources.enabled. An empty list enables everything.
func Enabled() []Provider {
	all := All()
	enabled := viper.GetStringSlice(key.SourcesEnabled)
	if len(enabled) == 0 {
		return all
	}

	return lo.Filter(all, func(p Provider, _ int) bool {
		return lo.Contains(enabled, p.ID())
	})
}

// Get finds a provider by id.
func Get(id string) (Provider, bool) {
	return lo.Find(All(), func(p Provider) bool {
		return p.ID() == id
	})
}
