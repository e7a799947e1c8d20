package cine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	. "github.com/smartystreets/goconvey/convey"
)

const postCards = `<html><body>
<div id="post-101">
  <a href="https://thuviencine.com/ky-sinh-trung/">
    <img class="lazy" data-src="https://image.tmdb.org/t/p/w220_and_h330_face/p.jpg">
  </a>
  <div class="movie-backdrop" data-backdrop="https://image.tmdb.org/t/p/w300/b.jpg"></div>
  <h2 class="movie-title">Ký Sinh Trùng – Parasite</h2>
  <span class="movie-date">2019</span>
  <span class="item-quality-4k">4K</span>
  <div class="imdb-rating">IMDb 8.5</div>
</div>
<div id="post-102">
  <a href="https://thuviencine.com/ky-sinh-trung/"></a>
  <h2 class="movie-title">Ký Sinh Trùng – Parasite</h2>
</div>
<div id="post-103"><h2 class="movie-title"></h2></div>
</body></html>`

const themeItems = `<html><body>
<article>
  <a href="https://thuviencine.com/dune/" title="Dune (2021)"><img src="https://image.tmdb.org/t/p/w220_and_h330_face/d.jpg"></a>
  <span class="quality">FHD</span>
</article>
<div class="item"><a href="https://thuviencine.com/movies/">Movies</a></div>
</body></html>`

const linksOnly = `<html><body>
<ul>
  <li><a href="https://thuviencine.com/mai/" title="Mai (2024)">Mai</a></li>
  <li><a href="https://thuviencine.com/page/2/" title="Next">2</a></li>
  <li><a href="https://thuviencine.com/country/han-quoc/" title="Korea">KR</a></li>
</ul>
</body></html>`

func parse(html string) []*media.Item {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	doc.Url, _ = url.Parse(Base + "/movies/")
	return New(nil).Parse(doc)
}

func TestParse(t *testing.T) {
	Convey("Given a listing with post cards", t, func() {
		items := parse(postCards)

		Convey("Then cards are parsed and deduplicated by URL", func() {
			So(items, ShouldHaveLength, 1)

			item := items[0]
			So(item.Title, ShouldEqual, "Ký Sinh Trùng")
			So(item.Year, ShouldEqual, 2019)
			So(item.Quality, ShouldEqual, "4K")
			So(item.Rating, ShouldEqual, 8.5)
			So(item.Thumbnail, ShouldEqual, "https://image.tmdb.org/t/p/w600_and_h900_bestv2/p.jpg")
			So(item.Backdrop, ShouldEqual, "https://image.tmdb.org/t/p/w1280/b.jpg")
			So(item.Provider, ShouldEqual, ID)
		})
	})

	Convey("Given a listing in the generic theme layout", t, func() {
		items := parse(themeItems)

		Convey("Then the second stage picks it up", func() {
			So(items, ShouldHaveLength, 1)
			So(items[0].Title, ShouldEqual, "Dune")
			So(items[0].Year, ShouldEqual, 2021)
			So(items[0].Quality, ShouldEqual, "FHD")
		})
	})

	Convey("Given a page with only title links", t, func() {
		items := parse(linksOnly)

		Convey("Then the link-based stage keeps title links and drops navigation", func() {
			So(items, ShouldHaveLength, 1)
			So(items[0].Title, ShouldEqual, "Mai")
			So(items[0].DetailURL, ShouldEqual, "https://thuviencine.com/mai/")
		})
	})

	Convey("Given an unrelated page", t, func() {
		So(parse(`<html><body><p>maintenance</p></body></html>`), ShouldBeEmpty)
	})
}

func TestCategory(t *testing.T) {
	Convey("Categories point at the two listing roots", t, func() {
		p := New(nil)
		So(p.Category(media.Movie), ShouldEqual, "https://thuviencine.com/movies/")
		So(p.Category(media.Series), ShouldEqual, "https://thuviencine.com/tv-series/")
		So(p.Domain(), ShouldEqual, "thuviencine.com")
	})
}

func TestDetail(t *testing.T) {
	Convey("Given a detail page that only links to a download page", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/ky-sinh-trung/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><head>
				<meta property="og:image" content="https://image.tmdb.org/t/p/w220_and_h330_face/p.jpg">
				<meta name="description" content="기생충 (Parasite)">
				</head><body>
				<h1>Ký Sinh Trùng – Parasite</h1>
				<span class="movie-date">2019</span>
				<div class="imdb-rating">8.5</div>
				<p class="movie-description">A poor family schemes.</p>
				<a href="/download?id=42">Download</a>
				</body></html>`))
		})
		mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<a href="https://www.fshare.vn/folder/ABC123">Fshare</a>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		p := NewAt(server.URL, network.NewFetcher(server.Client()))
		detail, err := p.Detail(context.Background(), server.URL+"/ky-sinh-trung/")

		Convey("Then the metadata and the followed link are returned", func() {
			So(err, ShouldBeNil)
			So(detail.Title, ShouldEqual, "Ký Sinh Trùng")
			So(detail.AltTitle, ShouldEqual, "Parasite")
			So(detail.Year, ShouldEqual, 2019)
			So(detail.Rating, ShouldEqual, 8.5)
			So(detail.Description, ShouldEqual, "A poor family schemes.")
			So(detail.Poster, ShouldEqual, "https://image.tmdb.org/t/p/w600_and_h900_bestv2/p.jpg")
			So(detail.Country, ShouldEqual, media.CountryKorea)
			So(detail.Link, ShouldNotBeNil)
			So(detail.Link.URL, ShouldEqual, "https://www.fshare.vn/folder/ABC123")
			So(detail.Link.Kind, ShouldEqual, media.LinkFolder)
		})
	})

	Convey("Given a detail page that cannot be fetched", t, func() {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		p := NewAt(server.URL, network.NewFetcher(server.Client()))
		_, err := p.Detail(context.Background(), server.URL+"/missing/")

		Convey("Then the error propagates", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
