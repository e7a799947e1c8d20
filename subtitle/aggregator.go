package subtitle

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/raidenhub/phim/internal/cache"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/metrics"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/retry"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// perRelease caps how many results of one release a source may contribute.
const perRelease = 3

// Aggregator searches every subtitle source and merges their results.
type Aggregator struct {
	sources []Source
}

// New aggregates sources in the given order.
func New(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Default builds the sources that are configured. Sources needing a key are skipped without one.
func Default() *Aggregator {
	api := network.NewAPIFetcher()

	var sources []Source
	if k := viper.GetString(key.SubtitlesSubDLKey); k != "" {
		sources = append(sources, NewSubDL(k, api))
	}
	if k := viper.GetString(key.SubtitlesOpenSubtitlesKey); k != "" {
		sources = append(sources, NewOpenSubtitles(k, api))
	}
	if k := viper.GetString(key.SubtitlesSubSourceKey); k != "" {
		sources = append(sources, NewSubSource(k, api))
	}
	if viper.GetBool(key.SubtitlesSubscene) {
		sources = append(sources, NewSubscene(network.NewScrapeFetcher()))
	}
	return New(sources...)
}

func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Search queries every source, merges preSupplied in front, and ranks the result.
func (a *Aggregator) Search(ctx context.Context, q Query, preSupplied []Result) []Result {
	merged := append(append([]Result{}, preSupplied...), a.fetch(ctx, q)...)

	results := Cap(lo.UniqBy(merged, func(r Result) string { return r.URL }))
	results = FilterEpisode(results, q.Episode)
	return Rank(results)
}

func (a *Aggregator) fetch(ctx context.Context, q Query) []Result {
	cacheKey := cache.GenerateKey(fmt.Sprintf("%s|%d|%s|%d|%d|%s", q.Title, q.Year, q.Kind, q.Season, q.Episode, q.IMDbID), "subtitles")

	var cached []Result
	if cache.Read(cacheKey, &cached) {
		return cached
	}

	lists := lop.Map(a.sources, func(s Source, _ int) []Result {
		results, err := retry.Do(ctx, "subtitle."+s.Name(), func(ctx context.Context) ([]Result, error) {
			return s.Search(ctx, q)
		})
		if err != nil {
			metrics.ProviderFailures.WithLabelValues(s.Name(), "subtitles").Inc()
			log.WithFields(logrus.Fields{"source": s.Name(), "title": q.Title}).WithError(err).Warn("subtitle source failed")
			return nil
		}

		metrics.SubtitleResults.WithLabelValues(s.Name()).Add(float64(len(results)))
		return results
	})

	fetched := lo.Flatten(lists)
	if len(fetched) > 0 {
		if err := cache.Write(cacheKey, fetched); err != nil {
			log.WithError(err).Warn("subtitle: caching results")
		}
	}
	return fetched
}

// Cap keeps at most three results per source and file name, so season packs do not flood the list.
func Cap(results []Result) []Result {
	seen := make(map[string]int)
	return lo.Filter(results, func(r Result, _ int) bool {
		k := r.Source + "::" + r.FileName
		seen[k]++
		return seen[k] <= perRelease
	})
}

// FilterEpisode keeps results naming the episode, and those without a name. When nothing names
// the episode the list is returned unchanged.
func FilterEpisode(results []Result, episode int) []Result {
	if episode <= 0 {
		return results
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`(?i)S\d+E0?%d\b|\bE0?%d\b`, episode, episode))
	filtered := lo.Filter(results, func(r Result, _ int) bool {
		return r.FileName == "" || pattern.MatchString(r.FileName)
	})

	if !lo.SomeBy(filtered, func(r Result) bool { return r.FileName != "" }) {
		return results
	}
	return filtered
}

// Rank orders Vietnamese results, then English ones, each by downloads descending, then the rest
// in their original order.
func Rank(results []Result) []Result {
	bucket := func(r Result) int {
		switch r.Language {
		case "vi":
			return 0
		case "en":
			return 1
		default:
			return 2
		}
	}

	ranked := append([]Result{}, results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		bi, bj := bucket(ranked[i]), bucket(ranked[j])
		if bi != bj {
			return bi < bj
		}
		if bi == 2 {
			return false
		}
		return ranked[i].Downloads > ranked[j].Downloads
	})
	return ranked
}
