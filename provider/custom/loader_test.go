package custom

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/internal/scraper"
	"github.com/raidenhub/phim/media"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const script = `
ID = "mirror"
DOMAIN = "example.com"
CATEGORY_MOVIES = "%[1]s/movies/"
CATEGORY_SERIES = "%[1]s/series/"

function List(category, page)
	local body = http_tls.get(category .. "?page=" .. page)
	return { { title = body, url = category .. page } }
end

function Search(query)
	local res = http_tls.request({ url = "%[1]s/missing", method = "get" })
	return { { title = query .. " " .. res.status, url = "%[1]s/s" } }
end

function Detail(url)
	return { title = "Mai", year = "2024", link = "https://www.fshare.vn/file/MAI" }
end
`

func TestLoad(t *testing.T) {
	Convey("Given a script backed by a test server", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte("page " + r.URL.Query().Get("page")))
		}))
		defer server.Close()

		path := "/sources/mirror.lua"
		lo.Must0(filesystem.API().WriteFile(path, []byte(fmt.Sprintf(script, server.URL)), 0o644))
		scraper.Forget(path)

		p, err := Load(path, server.Client())
		So(err, ShouldBeNil)
		defer p.Close()

		Convey("Then the globals describe the provider", func() {
			So(p.ID(), ShouldEqual, "mirror")
			So(p.Domain(), ShouldEqual, "example.com")
			So(p.Category(media.Series), ShouldEqual, server.URL+"/series/")
		})

		Convey("Then List goes through http_tls", func() {
			items, err := p.List(context.Background(), p.Category(media.Movie), 2)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 1)
			So(items[0].Title, ShouldEqual, "page 2")
			So(items[0].Provider, ShouldEqual, "mirror")
		})

		Convey("Then http_tls.request exposes the status instead of failing", func() {
			items, err := p.Search(context.Background(), "mai")
			So(err, ShouldBeNil)
			So(items[0].Title, ShouldEqual, "mai 404")
		})

		Convey("Then Detail converts the table", func() {
			detail, err := p.Detail(context.Background(), "https://example.com/mai")
			So(err, ShouldBeNil)
			So(detail.Year, ShouldEqual, 2024)
			So(detail.Link.URL, ShouldEqual, "https://www.fshare.vn/file/MAI")
			So(detail.DetailURL, ShouldEqual, "https://example.com/mai")
		})
	})

	Convey("Given a script without the required functions", t, func() {
		path := "/sources/broken.lua"
		lo.Must0(filesystem.API().WriteFile(path, []byte(`ID = "broken"`), 0o644))

		_, err := Load(path, http.DefaultClient)
		So(err, ShouldNotBeNil)
	})
}
