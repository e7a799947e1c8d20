// Package server exposes the aggregator, the session manager, the stream resolver and the
// subtitle aggregator over a local JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/internal/httputil"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/metrics"
	"github.com/raidenhub/phim/stream"
	"github.com/raidenhub/phim/subtitle"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type Catalog interface {
	Home(ctx context.Context, kind media.Kind) []*media.Item
	Search(ctx context.Context, query string) []*media.Item
	Category(ctx context.Context, ref string, page int) []*media.Item
	Detail(ctx context.Context, ref string) (*media.Detail, error)
}

type Folders interface {
	Browse(ctx context.Context, folderURL string, page int) ([]media.RemoteFile, error)
	BrowseAll(ctx context.Context, folderURL string) ([]media.RemoteFile, error)
	Resolve(ctx context.Context, fileURL string) (string, error)
}

type Streams interface {
	Resolve(ctx context.Context, req stream.Request) (*stream.Result, error)
}

type Subtitles interface {
	Search(ctx context.Context, q subtitle.Query, preSupplied []subtitle.Result) []subtitle.Result
}

type Server struct {
	catalog   Catalog
	folders   Folders
	streams   Streams
	subtitles Subtitles
	router    *http.ServeMux
}

func New(catalog Catalog, folders Folders, streams Streams, subtitles Subtitles) *Server {
	s := &Server{
		catalog:   catalog,
		folders:   folders,
		streams:   streams,
		subtitles: subtitles,
		router:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/v1/home/{kind}", s.handleHome)
	s.router.HandleFunc("GET /api/v1/search", s.handleSearch)
	s.router.HandleFunc("GET /api/v1/category", s.handleCategory)
	s.router.HandleFunc("GET /api/v1/detail", s.handleDetail)
	s.router.HandleFunc("GET /api/v1/folder", s.handleFolder)
	s.router.HandleFunc("GET /api/v1/link", s.handleLink)
	s.router.HandleFunc("GET /api/v1/stream", s.handleStream)
	s.router.HandleFunc("GET /api/v1/subtitles", s.handleSubtitles)
	s.router.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.router.ServeHTTP(w, r)
	log.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"duration": time.Since(start).String(),
	}).Debug("server: request")
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	log.Infof("server: listening on %s", addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"name": constant.Phim, "version": constant.Version})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	kind, err := media.ParseKind(r.PathValue("kind"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items(s.catalog.Home(r.Context(), kind)))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := required(w, r, "q")
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items(s.catalog.Search(r.Context(), q)))
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	ref, ok := required(w, r, "ref")
	if !ok {
		return
	}
	page, ok := number(w, r, "page", 1)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items(s.catalog.Category(r.Context(), ref, max(page, 1))))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ref, ok := required(w, r, "ref")
	if !ok {
		return
	}
	detail, err := s.catalog.Detail(r.Context(), ref)
	if err != nil {
		fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFolder(w http.ResponseWriter, r *http.Request) {
	folderURL, ok := required(w, r, "url")
	if !ok {
		return
	}
	page, ok := number(w, r, "page", 0)
	if !ok {
		return
	}

	// Pages count from one here and from zero upstream. No page means every page.
	var files []media.RemoteFile
	var err error
	if page > 0 {
		files, err = s.folders.Browse(r.Context(), folderURL, page-1)
	} else {
		files, err = s.folders.BrowseAll(r.Context(), folderURL)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lo.Ternary(files == nil, []media.RemoteFile{}, files))
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	fileURL, ok := required(w, r, "url")
	if !ok {
		return
	}
	location, err := s.folders.Resolve(r.Context(), fileURL)
	if err != nil {
		fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"url": location})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req := stream.Request{
		Title:    r.URL.Query().Get("title"),
		ShareKey: r.URL.Query().Get("share_key"),
	}
	if req.Title == "" && req.ShareKey == "" {
		badRequest(w, "title or share_key is required")
		return
	}

	var ok bool
	if req.Kind, ok = kind(w, r); !ok {
		return
	}
	if req.Season, ok = number(w, r, "season", 0); !ok {
		return
	}
	if req.Episode, ok = number(w, r, "episode", 0); !ok {
		return
	}
	if req.Year, ok = number(w, r, "year", 0); !ok {
		return
	}
	if req.TMDBID, ok = number(w, r, "tmdb", 0); !ok {
		return
	}

	result, err := s.streams.Resolve(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubtitles(w http.ResponseWriter, r *http.Request) {
	title, ok := required(w, r, "title")
	if !ok {
		return
	}

	q := subtitle.Query{Title: title, IMDbID: r.URL.Query().Get("imdb")}
	if q.Kind, ok = kind(w, r); !ok {
		return
	}
	if q.Year, ok = number(w, r, "year", 0); !ok {
		return
	}
	if q.Season, ok = number(w, r, "season", 0); !ok {
		return
	}
	if q.Episode, ok = number(w, r, "episode", 0); !ok {
		return
	}

	results := s.subtitles.Search(r.Context(), q, nil)
	httputil.WriteJSON(w, http.StatusOK, lo.Ternary(results == nil, []subtitle.Result{}, results))
}

func items(list []*media.Item) []*media.Item {
	if list == nil {
		return []*media.Item{}
	}
	return list
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	log.WithFields(logrus.Fields{"path": r.URL.Path, "kind": apperr.KindOf(err).String()}).WithError(err).Warn("server: request failed")
	httputil.WriteFailure(w, err)
}

func badRequest(w http.ResponseWriter, message string) {
	httputil.WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func required(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		badRequest(w, name+" is required")
		return "", false
	}
	return value, true
}

func number(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(w, name+" must be a non-negative number")
		return 0, false
	}
	return n, true
}

// kind defaults to movie when absent.
func kind(w http.ResponseWriter, r *http.Request) (media.Kind, bool) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return media.Movie, true
	}
	k, err := media.ParseKind(raw)
	if err != nil {
		badRequest(w, err.Error())
		return "", false
	}
	return k, true
}
