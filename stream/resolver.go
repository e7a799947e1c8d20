package stream

import (
	"context"
	"errors"
	"strconv"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/febbox"
	"github.com/raidenhub/phim/internal/cache"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/retry"
	"github.com/raidenhub/phim/showbox"
	"github.com/raidenhub/phim/tmdb"
	"github.com/sirupsen/logrus"
)

// Catalog maps titles and ids to share keys.
type Catalog interface {
	FindID(ctx context.Context, title string, kind media.Kind) (int, error)
	ShareKey(ctx context.Context, id int, kind media.Kind) (string, error)
}

// IDFinder looks up the numeric id used when the catalog search fails.
type IDFinder interface {
	Configured() bool
	FindID(ctx context.Context, title string, kind media.Kind, year int) (int, error)
}

// Host lists shares and extracts the streams of their files.
type Host interface {
	Lister
	Streams(ctx context.Context, shareKey, fid string) ([]media.StreamCandidate, error)
}

// Request names the title to resolve. Season and episode apply to series.
type Request struct {
	Title   string     `json:"title"`
	Kind    media.Kind `json:"kind"`
	Year    int        `json:"year,omitempty"`
	Season  int        `json:"season,omitempty"`
	Episode int        `json:"episode,omitempty"`
	TMDBID  int        `json:"tmdb_id,omitempty"`
	// ShareKey skips the catalog lookup when already known.
	ShareKey string `json:"share_key,omitempty"`
}

// Result is the located file with its stream candidates, Best among them.
type Result struct {
	ShareKey   string                  `json:"share_key"`
	File       media.RemoteFile        `json:"file"`
	Candidates []media.StreamCandidate `json:"candidates"`
	Best       media.StreamCandidate   `json:"best"`
}

// Resolver turns titles into playable streams.
type Resolver struct {
	catalog Catalog
	ids     IDFinder
	host    Host
}

// NewResolver wires the configured ShowBox, TMDB and FebBox clients.
func NewResolver() *Resolver {
	return NewResolverWith(showbox.NewClient(), tmdb.NewClient(), febbox.NewClient())
}

// NewResolverWith wires explicit clients.
func NewResolverWith(catalog Catalog, ids IDFinder, host Host) *Resolver {
	return &Resolver{catalog: catalog, ids: ids, host: host}
}

// Resolve runs the whole pipeline for one request.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if req.Kind == media.Series {
		req.Season = max(req.Season, 1)
		req.Episode = max(req.Episode, 1)
	}

	shareKey, err := r.shareKey(ctx, req)
	if err != nil {
		return nil, err
	}

	file, err := r.locate(ctx, req, shareKey)
	if err != nil {
		return nil, err
	}

	candidates, err := retry.Do(ctx, "febbox.streams", func(ctx context.Context) ([]media.StreamCandidate, error) {
		return r.host.Streams(ctx, shareKey, file.ID)
	})
	if err != nil {
		return nil, err
	}

	best, err := media.PickBest(candidates)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"title": req.Title, "file": file.Name, "quality": best.Quality}).Info("stream: resolved")
	return &Result{ShareKey: shareKey, File: file, Candidates: candidates, Best: best}, nil
}

func (r *Resolver) locate(ctx context.Context, req Request, shareKey string) (media.RemoteFile, error) {
	lister := retrying{r.host}
	if req.Kind == media.Series {
		return FindEpisode(ctx, lister, shareKey, req.Season, req.Episode)
	}
	return FindPlayable(ctx, lister, shareKey)
}

// shareKey finds the share by title search first and by numeric id second. Found keys are cached.
func (r *Resolver) shareKey(ctx context.Context, req Request) (string, error) {
	if req.ShareKey != "" {
		return req.ShareKey, nil
	}

	cacheKey := cache.GenerateKey(string(req.Kind)+":"+media.NormalizeTitle(req.Title)+":"+strconv.Itoa(req.TMDBID), "sharekey")
	var cached string
	if cache.Read(cacheKey, &cached) && cached != "" {
		return cached, nil
	}

	shareKey, byTitle := r.byTitle(ctx, req)
	if byTitle != nil {
		var byID error
		shareKey, byID = r.byID(ctx, req)
		if byID != nil {
			log.WithFields(logrus.Fields{"title": req.Title}).WithError(errors.Join(byTitle, byID)).Warn("stream: no share key")
			return "", notStreamable(errors.Join(byTitle, byID))
		}
	}

	if err := cache.Write(cacheKey, shareKey); err != nil {
		log.WithError(err).Warn("stream: caching share key")
	}
	return shareKey, nil
}

func (r *Resolver) byTitle(ctx context.Context, req Request) (string, error) {
	if req.Title == "" {
		return "", apperr.NotFound("stream.byTitle", "no title")
	}

	id, err := retry.Do(ctx, "showbox.find", func(ctx context.Context) (int, error) {
		return r.catalog.FindID(ctx, req.Title, req.Kind)
	})
	if err != nil {
		return "", err
	}
	return r.share(ctx, id, req.Kind)
}

func (r *Resolver) byID(ctx context.Context, req Request) (string, error) {
	id := req.TMDBID
	if id == 0 {
		if r.ids == nil || !r.ids.Configured() {
			return "", apperr.NotFound("stream.byID", "no numeric id and no TMDB key")
		}

		var err error
		id, err = retry.Do(ctx, "tmdb.find", func(ctx context.Context) (int, error) {
			return r.ids.FindID(ctx, req.Title, req.Kind, req.Year)
		})
		if err != nil {
			return "", err
		}
	}
	return r.share(ctx, id, req.Kind)
}

func (r *Resolver) share(ctx context.Context, id int, kind media.Kind) (string, error) {
	return retry.Do(ctx, "showbox.share", func(ctx context.Context) (string, error) {
		return r.catalog.ShareKey(ctx, id, kind)
	})
}

// notStreamable keeps transient causes retryable for the caller and reports the rest as a missing title.
func notStreamable(err error) error {
	if apperr.IsRetryable(err) {
		return err
	}
	return &apperr.Error{Kind: apperr.KindNotFound, Op: "stream.Resolve", Message: "not available for streaming", Err: err}
}

// retrying applies the single retry to each listing of a descent.
type retrying struct {
	lister Lister
}

func (l retrying) List(ctx context.Context, shareKey, parentID string) ([]media.RemoteFile, error) {
	return retry.Do(ctx, "febbox.list", func(ctx context.Context) ([]media.RemoteFile, error) {
		return l.lister.List(ctx, shareKey, parentID)
	})
}
