// Package aggregator fans catalog calls out to every provider and merges the answers.
package aggregator

import (
	"context"
	"net/url"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/metrics"
	"github.com/raidenhub/phim/provider"
	"github.com/raidenhub/phim/retry"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
	"github.com/samber/mo"
)

// Aggregator merges the catalogs of several providers.
type Aggregator struct {
	providers []provider.Provider
}

// New aggregates providers in the given order. The first one receives references no provider claims.
func New(providers ...provider.Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Providers returns the aggregated providers in registration order.
func (a *Aggregator) Providers() []provider.Provider {
	return a.providers
}

// Home lists the first page of the kind's category on every provider.
func (a *Aggregator) Home(ctx context.Context, kind media.Kind) []*media.Item {
	return a.fanOut(ctx, "list", func(ctx context.Context, p provider.Provider) ([]*media.Item, error) {
		return p.List(ctx, p.Category(kind), 1)
	})
}

// Search queries every provider.
func (a *Aggregator) Search(ctx context.Context, query string) []*media.Item {
	return a.fanOut(ctx, "search", func(ctx context.Context, p provider.Provider) ([]*media.Item, error) {
		return p.Search(ctx, query)
	})
}

// Category lists one page of ref on the provider that owns it. Failures become an empty page.
func (a *Aggregator) Category(ctx context.Context, ref string, page int) []*media.Item {
	p, ok := a.Route(ref).Get()
	if !ok {
		return nil
	}
	return a.list(ctx, p, "category", func(ctx context.Context) ([]*media.Item, error) {
		return p.List(ctx, ref, page)
	})
}

// Detail resolves ref on the provider that owns it. Unlike the listing paths, failures propagate.
func (a *Aggregator) Detail(ctx context.Context, ref string) (*media.Detail, error) {
	p, ok := a.Route(ref).Get()
	if !ok {
		return nil, apperr.NotFound("aggregator.Detail", "no providers configured")
	}

	return retry.Do(ctx, p.ID()+".detail", func(ctx context.Context) (*media.Detail, error) {
		return p.Detail(ctx, ref)
	})
}

func (a *Aggregator) fanOut(
	ctx context.Context,
	op string,
	call func(context.Context, provider.Provider) ([]*media.Item, error),
) []*media.Item {
	lists := lop.Map(a.providers, func(p provider.Provider, _ int) []*media.Item {
		return a.list(ctx, p, op, func(ctx context.Context) ([]*media.Item, error) {
			return call(ctx, p)
		})
	})
	return Merge(lists...)
}

// list runs one provider call under retry-once and isolates its failure into an empty result.
func (a *Aggregator) list(
	ctx context.Context,
	p provider.Provider,
	op string,
	call func(context.Context) ([]*media.Item, error),
) []*media.Item {
	items, err := retry.Do(ctx, p.ID()+"."+op, call)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues(p.ID(), op).Inc()
		log.WithFields(map[string]any{"provider": p.ID(), "op": op}).WithError(err).Warn("provider failed")
		return nil
	}
	return items
}

// Interleave takes one item from each list in turn until every list is drained.
func Interleave(lists ...[]*media.Item) []*media.Item {
	longest := lo.Max(lo.Map(lists, func(l []*media.Item, _ int) int { return len(l) }))

	merged := make([]*media.Item, 0, lo.Sum(lo.Map(lists, func(l []*media.Item, _ int) int { return len(l) })))
	for i := 0; i < longest; i++ {
		for _, list := range lists {
			if i < len(list) {
				merged = append(merged, list[i])
			}
		}
	}
	return merged
}

// Dedup keeps the first item of every Key.
func Dedup(items []*media.Item) []*media.Item {
	return lo.UniqBy(items, func(item *media.Item) string {
		return item.Key
	})
}

// Merge interleaves provider results and drops later duplicates.
func Merge(lists ...[]*media.Item) []*media.Item {
	return Dedup(Interleave(lists...))
}

// Route picks the provider whose domain owns ref's host, falling back to the first provider.
func (a *Aggregator) Route(ref string) mo.Option[provider.Provider] {
	if len(a.providers) == 0 {
		return mo.None[provider.Provider]()
	}

	host := ""
	if u, err := url.Parse(ref); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	if p, ok := lo.Find(a.providers, func(p provider.Provider) bool {
		return Owns(p.Domain(), host)
	}); ok {
		return mo.Some(p)
	}
	return mo.Some(a.providers[0])
}

// Owns reports whether host is domain or one of its subdomains.
func Owns(domain, host string) bool {
	domain = strings.ToLower(domain)
	if domain == "" || host == "" {
		return false
	}
	// domains configured with a port, as for local mirrors
	if h, _, found := strings.Cut(domain, ":"); found {
		domain = h
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
