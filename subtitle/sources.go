package subtitle

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
)

const (
	maxSubDLPages = 5
	perSource     = 10
)

func kindParam(kind media.Kind) string {
	switch kind {
	case media.Movie:
		return "movie"
	case media.Series:
		return "tv"
	default:
		return ""
	}
}

func setIf(v url.Values, k, value string) {
	if value != "" && value != "0" {
		v.Set(k, value)
	}
}

// SubDL is api.subdl.com.
type SubDL struct {
	apiKey string
	base   string
	dl     string
	fetch  *network.Fetcher
}

func NewSubDL(apiKey string, fetch *network.Fetcher) *SubDL {
	return &SubDL{apiKey: apiKey, base: "https://api.subdl.com/api/v1/subtitles", dl: "https://dl.subdl.com", fetch: fetch}
}

func (*SubDL) Name() string { return "SubDL" }

type subDLPage struct {
	Status     bool `json:"status"`
	TotalPages int  `json:"totalPages"`
	Subtitles  []struct {
		ReleaseName string `json:"release_name"`
		Lang        string `json:"lang"`
		Language    string `json:"language"`
		URL         string `json:"url"`
		Episode     *int   `json:"episode"`
		HI          bool   `json:"hi"`
	} `json:"subtitles"`
}

func (s *SubDL) page(ctx context.Context, q Query, page int) (*subDLPage, error) {
	query := url.Values{}
	query.Set("api_key", s.apiKey)
	query.Set("film_name", q.Title)
	query.Set("languages", "vi,en")
	query.Set("subs_per_page", "60")
	query.Set("page", strconv.Itoa(page))
	setIf(query, "type", kindParam(q.Kind))
	setIf(query, "year", strconv.Itoa(q.Year))
	setIf(query, "season_number", strconv.Itoa(q.Season))
	setIf(query, "episode_number", strconv.Itoa(q.Episode))
	setIf(query, "imdb_id", q.IMDbID)

	var resp subDLPage
	if err := s.fetch.GetJSON(ctx, s.base+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search reads the first page, then up to four more in parallel.
func (s *SubDL) Search(ctx context.Context, q Query) ([]Result, error) {
	first, err := s.page(ctx, q, 1)
	if err != nil {
		return nil, err
	}

	pages := []*subDLPage{first}
	if last := min(first.TotalPages, maxSubDLPages); last > 1 {
		rest := lop.Map(lo.RangeFrom(2, last-1), func(n int, _ int) *subDLPage {
			page, err := s.page(ctx, q, n)
			if err != nil {
				return nil
			}
			return page
		})
		pages = append(pages, lo.Compact(rest)...)
	}

	var results, exact []Result
	for _, page := range pages {
		for _, sub := range page.Subtitles {
			r := Result{
				URL:             s.dl + sub.URL,
				Language:        LanguageCode(sub.Lang),
				Label:           lo.CoalesceOrEmpty(sub.Language, sub.Lang),
				Source:          s.Name(),
				FileName:        sub.ReleaseName,
				HearingImpaired: sub.HI,
			}
			results = append(results, r)
			if q.Episode > 0 && sub.Episode != nil && *sub.Episode == q.Episode {
				exact = append(exact, r)
			}
		}
	}

	if len(exact) > 0 {
		return exact, nil
	}
	return results, nil
}

// OpenSubtitles is api.opensubtitles.com.
type OpenSubtitles struct {
	apiKey string
	base   string
	fetch  *network.Fetcher
}

func NewOpenSubtitles(apiKey string, fetch *network.Fetcher) *OpenSubtitles {
	return &OpenSubtitles{apiKey: apiKey, base: "https://api.opensubtitles.com/api/v1", fetch: fetch}
}

func (*OpenSubtitles) Name() string { return "OpenSubtitles" }

func (s *OpenSubtitles) Search(ctx context.Context, q Query) ([]Result, error) {
	query := url.Values{}
	query.Set("query", q.Title)
	query.Set("languages", "vi,en")
	query.Set("order_by", "download_count")
	query.Set("order_direction", "desc")
	setIf(query, "type", map[string]string{"movie": "movie", "tv": "episode"}[kindParam(q.Kind)])
	setIf(query, "year", strconv.Itoa(q.Year))
	setIf(query, "season_number", strconv.Itoa(q.Season))
	setIf(query, "episode_number", strconv.Itoa(q.Episode))
	setIf(query, "imdb_id", strings.TrimPrefix(q.IMDbID, "tt"))

	header := make(http.Header)
	header.Set("Api-Key", s.apiKey)
	header.Set("User-Agent", constant.Phim+" v"+constant.Version)

	var resp struct {
		Data []struct {
			Attributes struct {
				Language        string `json:"language"`
				DownloadCount   int    `json:"download_count"`
				HearingImpaired bool   `json:"hearing_impaired"`
				Files           []struct {
					FileID   int    `json:"file_id"`
					FileName string `json:"file_name"`
				} `json:"files"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := s.fetch.GetJSON(ctx, s.base+"/subtitles?"+query.Encode(), header, &resp); err != nil {
		return nil, err
	}

	var results []Result
	for _, item := range resp.Data {
		a := item.Attributes
		for _, f := range a.Files {
			results = append(results, Result{
				URL:             s.base + "/download?file_id=" + strconv.Itoa(f.FileID),
				Language:        LanguageCode(a.Language),
				Label:           LanguageName(LanguageCode(a.Language)),
				Source:          s.Name(),
				FileName:        f.FileName,
				Downloads:       a.DownloadCount,
				HearingImpaired: a.HearingImpaired,
			})
		}
	}
	return results, nil
}

// SubSource is api.subsource.net.
type SubSource struct {
	apiKey string
	base   string
	fetch  *network.Fetcher
}

func NewSubSource(apiKey string, fetch *network.Fetcher) *SubSource {
	return &SubSource{apiKey: apiKey, base: "https://api.subsource.net/api/v1", fetch: fetch}
}

func (*SubSource) Name() string { return "SubSource" }

// Search takes the first matching title and keeps at most ten of its Vietnamese and English subtitles.
func (s *SubSource) Search(ctx context.Context, q Query) ([]Result, error) {
	header := make(http.Header)
	header.Set("X-API-Key", s.apiKey)

	query := url.Values{}
	query.Set("q", q.Title)
	query.Set("searchType", "text")

	var movies struct {
		Data []struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	if err := s.fetch.GetJSON(ctx, s.base+"/movies/search?"+query.Encode(), header, &movies); err != nil {
		return nil, err
	}
	if len(movies.Data) == 0 {
		return nil, nil
	}

	var subs struct {
		Data []struct {
			ID              int    `json:"id"`
			Language        string `json:"language"`
			ReleaseName     string `json:"release_name"`
			DownloadCount   int    `json:"download_count"`
			HearingImpaired bool   `json:"hearing_impaired"`
		} `json:"data"`
	}
	movieID := strconv.Itoa(movies.Data[0].ID)
	if err := s.fetch.GetJSON(ctx, s.base+"/subtitles?movie_id="+movieID, header, &subs); err != nil {
		return nil, err
	}

	var results []Result
	for _, sub := range subs.Data {
		code := LanguageCode(sub.Language)
		if !wanted(code) {
			continue
		}
		results = append(results, Result{
			URL:             s.base + "/subtitles/" + strconv.Itoa(sub.ID) + "/download",
			Language:        code,
			Label:           sub.Language,
			Source:          s.Name(),
			FileName:        sub.ReleaseName,
			Downloads:       sub.DownloadCount,
			HearingImpaired: sub.HearingImpaired,
		})
	}
	return lo.Slice(results, 0, perSource), nil
}

var (
	subscenePagePattern = regexp.MustCompile(`<a\s+href="(/subtitles/[^"]+?)"\s*>`)
	subsceneRowPattern  = regexp.MustCompile(`(?s)<a\s+href="(/subtitles/[^"]+?)"[^>]*>\s*<span[^>]*>\s*(\w+)\s*</span>\s*<span>\s*([^<]*?)\s*</span>`)
)

// Subscene is scraped, it needs no key.
type Subscene struct {
	base  string
	fetch *network.Fetcher
}

func NewSubscene(fetch *network.Fetcher) *Subscene {
	return &Subscene{base: "https://subscene.com", fetch: fetch}
}

func (*Subscene) Name() string { return "Subscene" }

func (s *Subscene) Search(ctx context.Context, q Query) ([]Result, error) {
	search, err := s.fetch.Get(ctx, s.base+"/subtitles/searchbytitle?query="+url.QueryEscape(q.Title), nil)
	if err != nil {
		return nil, err
	}

	match := subscenePagePattern.FindStringSubmatch(string(search))
	if match == nil || strings.Contains(match[1], "searchbytitle") {
		return nil, apperr.NotFound("subscene.Search", "no title page for "+q.Title)
	}

	page, err := s.fetch.Get(ctx, s.base+match[1], nil)
	if err != nil {
		return nil, err
	}
	return ParseSubscene(s.base, string(page)), nil
}

// ParseSubscene reads the rows of a title page, keeping at most ten Vietnamese and English ones.
func ParseSubscene(base, page string) []Result {
	var results []Result
	for _, m := range subsceneRowPattern.FindAllStringSubmatch(page, -1) {
		code := LanguageCode(m[2])
		if !wanted(code) {
			continue
		}
		results = append(results, Result{
			URL:      base + m[1],
			Language: code,
			Label:    m[2],
			Source:   "Subscene",
			FileName: m[3],
		})
		if len(results) == perSource {
			break
		}
	}
	return results
}
