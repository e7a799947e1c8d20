package community

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const gviz = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","status":"ok","table":{"cols":[],"rows":[
{"c":[{"v":"[COLOR yellow][B]Ký Sinh Trùng[/B][/COLOR]"},{"v":"https://www.fshare.vn/folder/AAA/?token=123"},{"v":"https://img/p.jpg"},null,null,{"v":"Drama"},{"v":8.5}]},
{"c":[{"v":"*Dune|https://www.fshare.vn/file/BBB|https://img/d.jpg|Spice|https://img/f.jpg"}]},
{"c":[{"v":"Donate"},{"v":"https://paypal.me/x"}]},
{"c":[null,{"v":"https://www.fshare.vn/file/CCC"}]},
{"c":[{"v":"More movies"},{"v":"https://docs.google.com/spreadsheets/d/NESTED/edit#gid=5"}]}
]}});`

func TestParse(t *testing.T) {
	Convey("Given a gviz JSONP response", t, func() {
		cells, err := ParseGviz([]byte(gviz))
		So(err, ShouldBeNil)
		So(cells, ShouldHaveLength, 5)
		So(cells[0][3], ShouldBeNil)
		So(*cells[0][6], ShouldEqual, "8.5")

		rows := ParseRows(cells)

		Convey("Then invalid and blank rows are dropped", func() {
			So(rows, ShouldHaveLength, 3)
		})

		Convey("Then column rows are cleaned", func() {
			So(rows[0].Name, ShouldEqual, "Ký Sinh Trùng")
			So(rows[0].Link, ShouldEqual, "https://www.fshare.vn/folder/AAA")
			So(rows[0].Genre, ShouldEqual, "Drama")
			So(rows[0].Rating, ShouldEqual, 8.5)
		})

		Convey("Then pipe rows are split", func() {
			So(rows[1].Name, ShouldEqual, "Dune")
			So(rows[1].Link, ShouldEqual, "https://www.fshare.vn/file/BBB")
			So(rows[1].Description, ShouldEqual, "Spice")
			So(rows[1].Fanart, ShouldEqual, "https://img/f.jpg")
		})

		Convey("Then nested sheets keep their own URL as the item reference", func() {
			So(rows[2].IsSheet(), ShouldBeTrue)
			So(rows[2].Item("https://docs.google.com/spreadsheets/d/X/edit").DetailURL, ShouldEqual, rows[2].Link)
		})
	})

	Convey("Given a response without JSONP", t, func() {
		_, err := ParseGviz([]byte("<html>sign in</html>"))
		So(err, ShouldNotBeNil)
	})
}

func TestSheetID(t *testing.T) {
	Convey("SheetID handles the URL shapes of the curated list", t, func() {
		id, gid, err := SheetID(Sources[0].URL)
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "1S6iSi0tWvqKVk5en2NDx9N5XeDquwOWh4GlGKIEezyo")
		So(gid, ShouldEqual, "482627435")

		_, gid, _ = SheetID(Sources[1].URL)
		So(gid, ShouldEqual, "0")

		_, _, err = SheetID("https://www.fshare.vn/folder/X")
		So(err, ShouldNotBeNil)
	})
}

func TestRef(t *testing.T) {
	Convey("Given a row from a sheet with a gid fragment", t, func() {
		sheet := "https://docs.google.com/spreadsheets/d/ID/edit#gid=7"
		row := Row{Name: "Mai & Friends", Link: "https://www.fshare.vn/file/X?a=1"}

		ref := Ref(sheet, row)

		Convey("Then the reference round-trips", func() {
			gotSheet, gotRow, err := ParseRef(ref)
			So(err, ShouldBeNil)
			So(gotSheet, ShouldEqual, sheet)
			So(gotRow.Link, ShouldEqual, row.Link)
			So(gotRow.Name, ShouldEqual, row.Name)
		})

		Convey("Then Detail decodes it without a fetcher", func() {
			detail, err := New(nil).Detail(context.Background(), ref)
			So(err, ShouldBeNil)
			So(detail.Title, ShouldEqual, "Mai & Friends")
			So(detail.Link.Kind, ShouldEqual, media.LinkFile)
		})
	})

	Convey("A plain sheet URL is not a row reference", t, func() {
		_, err := New(nil).Detail(context.Background(), "https://docs.google.com/spreadsheets/d/ID/edit")
		So(err, ShouldNotBeNil)
	})
}

func TestProvider(t *testing.T) {
	Convey("Given a gviz server and two sheets", t, func() {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			if strings.Contains(r.URL.Path, "BROKEN") {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(gviz))
		}))
		defer server.Close()

		p := NewWith(network.NewFetcher(server.Client()), server.URL, []Source{
			{Name: "Good", URL: "https://docs.google.com/spreadsheets/d/GOOD/edit#gid=1"},
			{Name: "Broken", URL: "https://docs.google.com/spreadsheets/d/BROKEN/edit"},
			{Name: "Folder", URL: "https://www.fshare.vn/folder/F"},
		})

		Convey("Category is the first sheet", func() {
			So(p.Category(media.Series), ShouldEqual, "https://docs.google.com/spreadsheets/d/GOOD/edit#gid=1")
		})

		Convey("Search skips the broken sheet and fuzzy matches titles", func() {
			items, err := p.Search(context.Background(), "ky sinh")
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 1)
			So(items[0].Title, ShouldEqual, "Ký Sinh Trùng")
		})

		Convey("A second listing is served from the cache", func() {
			_, err := p.List(context.Background(), "https://docs.google.com/spreadsheets/d/GOOD/edit#gid=2", 1)
			So(err, ShouldBeNil)
			before := atomic.LoadInt32(&hits)

			items, err := p.List(context.Background(), "https://docs.google.com/spreadsheets/d/GOOD/edit#gid=2", 1)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 3)
			So(atomic.LoadInt32(&hits), ShouldEqual, before)
		})

		Convey("Only the first page has content", func() {
			items, err := p.List(context.Background(), "https://docs.google.com/spreadsheets/d/GOOD/edit", 2)
			So(err, ShouldBeNil)
			So(items, ShouldBeEmpty)
		})
	})
}
