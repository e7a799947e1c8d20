package tmdb

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/where"
	"github.com/samber/mo"
)

type idData struct {
	IDs map[string]int `json:"ids"`
}

// idCache persists title to id matches.
type idCache struct {
	internal *gache.Cache[*idData]
	mu       sync.RWMutex
}

func newIDCache(path string) *idCache {
	return &idCache{
		internal: gache.New[*idData](&gache.Options{
			Path:       path,
			Lifetime:   time.Hour * 24 * 30,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

var defaultIDs = sync.OnceValue(func() *idCache {
	return newIDCache(where.TMDBIDs())
})

func (c *idCache) Get(key string) mo.Option[int] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[int]()
	}

	id, ok := data.IDs[key]
	if !ok {
		return mo.None[int]()
	}
	return mo.Some(id)
}

func (c *idCache) Set(key string, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}
	if expired || data == nil {
		data = &idData{IDs: make(map[string]int)}
	}

	data.IDs[key] = id
	return c.internal.Set(data)
}
