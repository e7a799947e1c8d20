// Package tmdb is a small TMDB client used for numeric-id lookups and title metadata.
package tmdb

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	API   = "https://api.themoviedb.org/3/"
	Image = "https://image.tmdb.org/t/p/"
)

// Title is a search hit or a detail page.
type Title struct {
	ID            int     `json:"id"`
	Title         string  `json:"title,omitempty"`
	Name          string  `json:"name,omitempty"`
	OriginalTitle string  `json:"original_title,omitempty"`
	OriginalName  string  `json:"original_name,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	MediaType     string  `json:"media_type,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	IMDbID        string  `json:"imdb_id,omitempty"`
	Seasons       int     `json:"number_of_seasons,omitempty"`
}

// DisplayTitle is the localized title of a movie or the name of a show.
func (t Title) DisplayTitle() string {
	return lo.CoalesceOrEmpty(t.Title, t.Name, t.OriginalTitle, t.OriginalName)
}

func (t Title) Year() int {
	date := lo.CoalesceOrEmpty(t.ReleaseDate, t.FirstAirDate)
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func (t Title) Kind() media.Kind {
	switch {
	case t.MediaType == "tv":
		return media.Series
	case t.MediaType == "movie":
		return media.Movie
	case t.Name != "" && t.Title == "":
		return media.Series
	default:
		return media.Movie
	}
}

// Detail converts the title to the shared detail shape.
func (t Title) Detail() *media.Detail {
	d := &media.Detail{
		Title:       t.DisplayTitle(),
		AltTitle:    lo.CoalesceOrEmpty(t.OriginalTitle, t.OriginalName),
		Description: t.Overview,
		Year:        t.Year(),
		Rating:      t.VoteAverage,
		DetailURL:   "https://www.themoviedb.org/" + tmdbType(t.Kind()) + "/" + strconv.Itoa(t.ID),
		Provider:    "tmdb",
	}
	if d.AltTitle == d.Title {
		d.AltTitle = ""
	}
	if t.PosterPath != "" {
		d.Poster = Image + "w500" + t.PosterPath
	}
	if t.BackdropPath != "" {
		d.Backdrop = Image + "w1280" + t.BackdropPath
	}
	return d
}

type Client struct {
	base   string
	apiKey string
	fetch  *network.Fetcher
	ids    *idCache
}

// NewClient reads the API key from the configuration.
func NewClient() *Client {
	return NewClientAt(API, viper.GetString(key.TMDBAPIKey), network.NewAPIFetcher())
}

func NewClientAt(base, apiKey string, fetch *network.Fetcher) *Client {
	return &Client{
		base:   strings.TrimSuffix(base, "/") + "/",
		apiKey: apiKey,
		fetch:  fetch,
		ids:    defaultIDs(),
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if !c.Configured() {
		return apperr.Auth("tmdb", "no TMDB API key configured")
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", "en-US")
	return c.fetch.GetJSON(ctx, c.base+path+"?"+query.Encode(), nil, v)
}

// Search runs a multi search and keeps movies and shows.
func (c *Client) Search(ctx context.Context, q string, page int) ([]Title, error) {
	query := url.Values{}
	query.Set("query", q)
	query.Set("page", strconv.Itoa(max(page, 1)))
	query.Set("include_adult", "false")

	var resp struct {
		Results []Title `json:"results"`
	}
	if err := c.get(ctx, "search/multi", query, &resp); err != nil {
		return nil, err
	}

	return lo.Filter(resp.Results, func(t Title, _ int) bool {
		return t.MediaType == "" || t.MediaType == "movie" || t.MediaType == "tv"
	}), nil
}

// Title fetches the detail page of a movie or show, including its IMDb id when TMDB knows it.
func (c *Client) Title(ctx context.Context, id int, kind media.Kind) (*Title, error) {
	path := tmdbType(kind) + "/" + strconv.Itoa(id)

	var title Title
	if err := c.get(ctx, path, nil, &title); err != nil {
		return nil, err
	}
	title.MediaType = tmdbType(kind)

	if kind == media.Series && title.IMDbID == "" {
		var external struct {
			IMDbID string `json:"imdb_id"`
		}
		if err := c.get(ctx, path+"/external_ids", nil, &external); err == nil {
			title.IMDbID = external.IMDbID
		}
	}
	return &title, nil
}

// FindID resolves a title to its TMDB id. Matches are remembered across runs.
func (c *Client) FindID(ctx context.Context, title string, kind media.Kind, year int) (int, error) {
	cacheKey := string(kind) + ":" + media.NormalizeTitle(title)
	if id, ok := c.ids.Get(cacheKey).Get(); ok {
		return id, nil
	}

	results, err := c.Search(ctx, title, 1)
	if err != nil {
		return 0, err
	}

	match, ok := Closest(results, title, kind, year)
	if !ok {
		return 0, apperr.NotFound("tmdb.FindID", "no TMDB match for "+title)
	}

	if err := c.ids.Set(cacheKey, match.ID); err != nil {
		log.WithError(err).Warn("tmdb: caching id")
	}
	log.WithFields(logrus.Fields{"title": title, "id": match.ID}).Debug("tmdb: matched")
	return match.ID, nil
}

// Closest picks the result of the requested kind whose title is nearest to title. A matching year wins ties.
func Closest(results []Title, title string, kind media.Kind, year int) (Title, bool) {
	candidates := lo.Filter(results, func(t Title, _ int) bool { return t.Kind() == kind })
	if len(candidates) == 0 {
		return Title{}, false
	}

	normalized := media.NormalizeTitle(title)
	distance := func(t Title) int {
		d := levenshtein.Distance(normalized, media.NormalizeTitle(t.DisplayTitle()))
		if year > 0 && t.Year() != year {
			d++
		}
		return d
	}

	return lo.MinBy(candidates, func(a, b Title) bool {
		return distance(a) < distance(b)
	}), true
}

func tmdbType(kind media.Kind) string {
	if kind == media.Series {
		return "tv"
	}
	return "movie"
}
