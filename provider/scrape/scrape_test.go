package scrape

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raidenhub/phim/media"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func document(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	doc.Url, _ = url.Parse("https://example.com/movies/")
	return doc
}

func none(*goquery.Document) mo.Option[[]*media.Item] {
	return mo.None[[]*media.Item]()
}

func empty(*goquery.Document) mo.Option[[]*media.Item] {
	return mo.Some([]*media.Item{})
}

func TestCascade(t *testing.T) {
	Convey("Given a document and a list of stages", t, func() {
		doc := document(`<a href="/a/" title="A (2021)">x</a>`)
		found := func(*goquery.Document) mo.Option[[]*media.Item] {
			return mo.Some([]*media.Item{media.NewItem("p", "found", "u")})
		}

		Convey("When the earlier stages yield nothing", func() {
			items := Cascade(doc, none, empty, found)
			Convey("Then the first non-empty stage wins", func() {
				So(items, ShouldHaveLength, 1)
				So(items[0].Title, ShouldEqual, "found")
			})
		})

		Convey("When no stage matches", func() {
			So(Cascade(doc, none, empty), ShouldBeEmpty)
		})
	})
}

func TestLinkBased(t *testing.T) {
	Convey("Given a page with title anchors", t, func() {
		doc := document(`
			<a href="https://example.com/a/" title="Alpha (2020)"><img data-src="https://image.tmdb.org/t/p/w220_and_h330_face/a.jpg"><span>HD</span></a>
			<a href="https://example.com/a/" title="Alpha (2020)">duplicate</a>
			<a href="https://example.com/page/2/" title="Next">2</a>
			<a href="https://example.com/movies/" title="Movies">all</a>
			<a href="https://example.com/b/" title="  ">blank</a>
			<a href="https://other.org/c/" title="Elsewhere">c</a>
			<a href="/relative/" title="Relative">r</a>`)

		items, ok := LinkBased("p", "example.com", []string{"/page/"}, []string{"/movies/"})(doc).Get()

		Convey("Then only distinct in-domain title links are kept", func() {
			So(ok, ShouldBeTrue)
			So(items, ShouldHaveLength, 1)

			item := items[0]
			So(item.Title, ShouldEqual, "Alpha")
			So(item.Year, ShouldEqual, 2020)
			So(item.Quality, ShouldEqual, "HD")
			So(item.Thumbnail, ShouldEqual, "https://image.tmdb.org/t/p/w600_and_h900_bestv2/a.jpg")
			So(item.Key, ShouldEqual, "alpha")
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("SplitTitle", t, func() {
		title, alt := SplitTitle("Ký Sinh Trùng – Parasite")
		So(title, ShouldEqual, "Ký Sinh Trùng")
		So(alt, ShouldEqual, "Parasite")

		title, alt = SplitTitle("Mai - Mai")
		So(title, ShouldEqual, "Mai")
		So(alt, ShouldEqual, "Mai")

		title, alt = SplitTitle("Spider-Man")
		So(title, ShouldEqual, "Spider-Man")
		So(alt, ShouldBeEmpty)
	})

	Convey("ExtractYear", t, func() {
		title, year := ExtractYear("Dune (2021)")
		So(title, ShouldEqual, "Dune")
		So(year, ShouldEqual, 2021)

		title, year = ExtractYear("Dune")
		So(title, ShouldEqual, "Dune")
		So(year, ShouldEqual, 0)
	})

	Convey("ParseYear and ParseRating", t, func() {
		So(ParseYear("Released Mar 2019"), ShouldEqual, 2019)
		So(ParseYear("n/a"), ShouldEqual, 0)
		So(ParseRating("IMDb 7.5"), ShouldEqual, 7.5)
		So(ParseRating(""), ShouldEqual, 0)
	})

	Convey("PageURL", t, func() {
		So(PageURL("https://example.com/movies/", 1), ShouldEqual, "https://example.com/movies/")
		So(PageURL("https://example.com/movies/", 3), ShouldEqual, "https://example.com/movies/page/3/")
		So(PageURL("https://example.com/genre/series", 2), ShouldEqual, "https://example.com/genre/series/page/2/")
	})

	Convey("Abs", t, func() {
		doc := document("")
		So(Abs(doc, "/x/"), ShouldEqual, "https://example.com/x/")
		So(Abs(doc, "https://a.b/c"), ShouldEqual, "https://a.b/c")
		So(Abs(doc, ""), ShouldBeEmpty)
	})

	Convey("UpgradeBackdrop", t, func() {
		So(UpgradeBackdrop("https://image.tmdb.org/t/p/w300/b.jpg"), ShouldEqual, "https://image.tmdb.org/t/p/w1280/b.jpg")
	})
}
