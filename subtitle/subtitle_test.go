package subtitle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fixed struct {
	name    string
	results []Result
	err     error
	calls   atomic.Int32
}

func (f *fixed) Name() string { return f.name }

func (f *fixed) Search(context.Context, Query) ([]Result, error) {
	f.calls.Add(1)
	return f.results, f.err
}

func urls(results []Result) []string {
	return lo.Map(results, func(r Result, _ int) string { return r.URL })
}

func TestRank(t *testing.T) {
	Convey("Vietnamese comes first, then English by downloads", t, func() {
		ranked := Rank([]Result{
			{URL: "en10", Language: "en", Downloads: 10},
			{URL: "fr", Language: "fr", Downloads: 900},
			{URL: "vi1", Language: "vi", Downloads: 1},
			{URL: "en50", Language: "en", Downloads: 50},
		})
		So(urls(ranked), ShouldResemble, []string{"vi1", "en50", "en10", "fr"})
	})

	Convey("Other languages keep their order", t, func() {
		ranked := Rank([]Result{{URL: "ja", Language: "ja", Downloads: 1}, {URL: "ko", Language: "ko", Downloads: 5}})
		So(urls(ranked), ShouldResemble, []string{"ja", "ko"})
	})
}

func TestCap(t *testing.T) {
	Convey("A release contributes at most three results per source", t, func() {
		var results []Result
		for i := range 5 {
			results = append(results, Result{URL: fmt.Sprint(i), Source: "SubDL", FileName: "Show.S01.Pack"})
		}
		results = append(results, Result{URL: "other", Source: "OpenSubtitles", FileName: "Show.S01.Pack"})

		So(urls(Cap(results)), ShouldResemble, []string{"0", "1", "2", "other"})
	})
}

func TestFilterEpisode(t *testing.T) {
	results := []Result{
		{URL: "e3", FileName: "Show.S01E03.1080p"},
		{URL: "e03", FileName: "show.s01e03.web"},
		{URL: "e13", FileName: "Show.S01E13"},
		{URL: "bare", FileName: "Show E3 Vietsub"},
		{URL: "noname"},
	}

	Convey("Only the episode and unnamed results survive", t, func() {
		So(urls(FilterEpisode(results, 3)), ShouldResemble, []string{"e3", "e03", "bare", "noname"})
	})

	Convey("No episode leaves the list alone", t, func() {
		So(FilterEpisode(results, 0), ShouldHaveLength, len(results))
	})

	Convey("When nothing names the episode everything is kept", t, func() {
		So(FilterEpisode(results, 8), ShouldHaveLength, len(results))
	})
}

func TestLanguageCode(t *testing.T) {
	Convey("Names and codes map to two letters", t, func() {
		So(LanguageCode("Vietnamese"), ShouldEqual, "vi")
		So(LanguageCode("english"), ShouldEqual, "en")
		So(LanguageCode("EN"), ShouldEqual, "en")
		So(LanguageCode("pt-BR"), ShouldEqual, "pt")
		So(LanguageName("vi"), ShouldEqual, "Vietnamese")
	})

	Convey("Unknown names keep whole characters", t, func() {
		code := LanguageCode("Русский")
		So(code, ShouldEqual, "ру")
		So(utf8.ValidString(code), ShouldBeTrue)
	})
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	Convey("Pre-supplied results come first and duplicates are dropped", t, func() {
		a := New(&fixed{name: "A", results: []Result{
			{URL: "pre", Language: "vi", Source: "A"},
			{URL: "fetched", Language: "vi", Source: "A", Downloads: 5},
		}})
		results := a.Search(ctx, Query{Title: "Dedup"}, []Result{{URL: "pre", Language: "vi", Source: "Showbox", Downloads: 1}})

		So(results, ShouldHaveLength, 2)
		pre, _ := lo.Find(results, func(r Result) bool { return r.URL == "pre" })
		So(pre.Source, ShouldEqual, "Showbox")
	})

	Convey("A failing source does not hide the others", t, func() {
		broken := &fixed{name: "Broken", err: errors.New("boom")}
		a := New(broken, &fixed{name: "Good", results: []Result{{URL: "ok", Language: "en"}}})

		results := a.Search(ctx, Query{Title: "Isolated"}, nil)
		So(urls(results), ShouldResemble, []string{"ok"})
		So(broken.calls.Load(), ShouldEqual, 2)
	})

	Convey("Fetched results are cached", t, func() {
		source := &fixed{name: "Once", results: []Result{{URL: "x", Language: "vi"}}}
		a := New(source)

		a.Search(ctx, Query{Title: "Cached", Year: 2024}, nil)
		results := a.Search(ctx, Query{Title: "Cached", Year: 2024}, nil)
		So(urls(results), ShouldResemble, []string{"x"})
		So(source.calls.Load(), ShouldEqual, 1)
	})

	Convey("No sources and nothing supplied is an empty list", t, func() {
		So(New().Search(ctx, Query{Title: "Nothing"}, nil), ShouldBeEmpty)
	})
}

func TestSources(t *testing.T) {
	ctx := context.Background()
	fetch := network.NewFetcher(http.DefaultClient)

	Convey("SubDL prefers the requested episode across pages", t, func() {
		var pages atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages.Add(1)
			if r.URL.Query().Get("api_key") != "k" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprint(w, `{"status":true,"totalPages":9,"subtitles":[{"release_name":"Show.S01E02","lang":"vietnamese","language":"Vietnamese","url":"/subtitle/a.zip","episode":2}]}`)
			default:
				fmt.Fprint(w, `{"status":true,"totalPages":9,"subtitles":[{"release_name":"Show.S01E01","lang":"english","url":"/subtitle/b.zip","episode":1}]}`)
			}
		}))
		defer srv.Close()

		s := NewSubDL("k", fetch)
		s.base = srv.URL

		results, err := s.Search(ctx, Query{Title: "Show", Kind: media.Series, Season: 1, Episode: 2})
		So(err, ShouldBeNil)
		So(pages.Load(), ShouldEqual, 5)
		So(results, ShouldHaveLength, 1)
		So(results[0].URL, ShouldEqual, "https://dl.subdl.com/subtitle/a.zip")
		So(results[0].Language, ShouldEqual, "vi")
	})

	Convey("OpenSubtitles sends its key and lists every file", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Api-Key") != "k" || r.URL.Query().Get("order_by") != "download_count" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"data":[{"attributes":{"language":"en","download_count":42,"files":[{"file_id":7,"file_name":"Movie.srt"}]}}]}`)
		}))
		defer srv.Close()

		s := NewOpenSubtitles("k", fetch)
		s.base = srv.URL

		results, err := s.Search(ctx, Query{Title: "Movie", Kind: media.Movie})
		So(err, ShouldBeNil)
		So(results, ShouldHaveLength, 1)
		So(results[0].URL, ShouldEqual, srv.URL+"/download?file_id=7")
		So(results[0].Downloads, ShouldEqual, 42)
		So(results[0].Label, ShouldEqual, "English")
	})

	Convey("SubSource keeps Vietnamese and English from the first title", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/movies/search", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"id":11},{"id":12}]}`)
		})
		mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("movie_id") != "11" || r.Header.Get("X-API-Key") != "k" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"data":[{"id":1,"language":"vietnamese","release_name":"a"},{"id":2,"language":"french"},{"id":3,"language":"english","release_name":"c"}]}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		s := NewSubSource("k", fetch)
		s.base = srv.URL

		results, err := s.Search(ctx, Query{Title: "Movie"})
		So(err, ShouldBeNil)
		So(urls(results), ShouldResemble, []string{srv.URL + "/subtitles/1/download", srv.URL + "/subtitles/3/download"})
	})

	Convey("Subscene follows the first title page", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/subtitles/searchbytitle", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<div class="title"><a href="/subtitles/movie-2024">Movie (2024)</a></div>`)
		})
		mux.HandleFunc("/subtitles/movie-2024", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<table>
<td class="a1"><a href="/subtitles/movie-2024/vietnamese/1">
  <span class="l r positive-icon">Vietnamese</span>
  <span>Movie.2024.1080p</span></a></td>
<td class="a1"><a href="/subtitles/movie-2024/danish/2">
  <span class="l r">Danish</span>
  <span>Movie.2024.720p</span></a></td>
</table>`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		s := NewSubscene(fetch)
		s.base = srv.URL

		results, err := s.Search(ctx, Query{Title: "Movie"})
		So(err, ShouldBeNil)
		So(results, ShouldHaveLength, 1)
		So(results[0].URL, ShouldEqual, srv.URL+"/subtitles/movie-2024/vietnamese/1")
		So(results[0].FileName, ShouldEqual, "Movie.2024.1080p")
	})
}
