package febbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	. "github.com/smartystreets/goconvey/convey"
)

const blockListing = `
<div class="file open_dir" data-id="2633059" data-path="season 12">
  <div class="file_info"><p class="file_name">Season 12</p></div>
</div>
<div class="file " data-id="2633100" data-path="movie.mkv">
  <img src="x.png"><p class="file_name">The Movie (2024) 1080p.mkv</p>
  <span class="file_size">2.1 GB</span>
</div>
<div class="file" data-id="2633101" data-path="no name.mp4"></div>`

const attributeListing = `
<li class="file open_dir" data-id="11" data-path="Season 1"></li>
<li class="file video" data-id="12" data-path="Tom &amp; Jerry.mp4"></li>`

func TestParseListing(t *testing.T) {
	Convey("Given div blocks with name paragraphs", t, func() {
		files := ParseListing(blockListing)

		So(files, ShouldHaveLength, 3)
		So(files[0].ID, ShouldEqual, "2633059")
		So(files[0].Name, ShouldEqual, "Season 12")
		So(files[0].IsFolder, ShouldBeTrue)
		So(files[0].Ordinal, ShouldEqual, 12)

		So(files[1].Name, ShouldEqual, "The Movie (2024) 1080p.mkv")
		So(files[1].IsFolder, ShouldBeFalse)

		Convey("A block without a name paragraph falls back to its path", func() {
			So(files[2].Name, ShouldEqual, "no name.mp4")
		})
	})

	Convey("Given entries that are not divs", t, func() {
		files := ParseListing(attributeListing)

		So(files, ShouldHaveLength, 2)
		So(files[0].IsFolder, ShouldBeTrue)
		So(files[0].Name, ShouldEqual, "Season 1")
		So(files[1].ID, ShouldEqual, "12")
		So(files[1].Name, ShouldEqual, "Tom & Jerry.mp4")
	})

	Convey("An empty fragment has no entries", t, func() {
		So(ParseListing(`<div class="empty">Nothing here</div>`), ShouldBeEmpty)
	})
}

func TestParseStreams(t *testing.T) {
	Convey("Given a JSON sources array", t, func() {
		page := `<script>var player = jwplayer("v"); var sources = [
			{"file":"https://cdn.test/auto.m3u8","label":""},
			{"file":"https://cdn.test/1080.mp4","label":"1080p","type":"mp4"},
			{"file":"https://cdn.test/audio.m3u8","label":"audio - English"}
		]; player.setup({sources: sources});</script>`

		streams := ParseStreams(page)
		So(streams, ShouldHaveLength, 2)
		So(streams[0].Quality, ShouldEqual, media.QualityAuto)
		So(streams[0].Type, ShouldEqual, "hls")
		So(streams[1].Type, ShouldEqual, "mp4")

		best, err := media.PickBest(streams)
		So(err, ShouldBeNil)
		So(best.Quality, ShouldEqual, "1080p")
	})

	Convey("Given a JavaScript literal with bare keys", t, func() {
		streams := ParseStreams(`sources: [{file: 'https://cdn.test/720.m3u8', label: '720p'}]`)
		So(streams, ShouldHaveLength, 1)
		So(streams[0].URL, ShouldEqual, "https://cdn.test/720.m3u8")
		So(streams[0].Quality, ShouldEqual, "720p")
	})

	Convey("Given sources carrying nested arrays", t, func() {
		page := `var sources = [
			{"file":"https://cdn.test/1080.m3u8","label":"1080p","tracks":[{"file":"en.vtt"},{"file":"vi.vtt"}]},
			{"file":"https://cdn.test/720.m3u8?t=[a]","label":"720p","tracks":[]}
		]; var other = [1];`

		Convey("The whole array is read as JSON", func() {
			literal := sourcesLiteral(page)
			So(literal, ShouldStartWith, "[")
			So(literal, ShouldEndWith, "]")
			So(literal, ShouldContainSubstring, `"tracks":[]}`)
			So(literal, ShouldNotContainSubstring, "other")
			streams := ParseStreams(page)
			So(streams, ShouldHaveLength, 2)
			So(streams[0].Quality, ShouldEqual, "1080p")
			So(streams[1].URL, ShouldEqual, "https://cdn.test/720.m3u8?t=[a]")
		})
	})

	Convey("An unterminated sources array has no streams", t, func() {
		So(ParseStreams(`sources: [{"file":"https://cdn.test/a.m3u8"`), ShouldBeEmpty)
	})

	Convey("A page without sources has no streams", t, func() {
		So(ParseStreams(`<html>Login required</html>`), ShouldBeEmpty)
	})
}

func TestClient(t *testing.T) {
	Convey("Given a FebBox server", t, func() {
		var headers http.Header
		mux := http.NewServeMux()
		mux.HandleFunc("/file/file_share_list", func(w http.ResponseWriter, r *http.Request) {
			headers = r.Header.Clone()
			if r.URL.Query().Get("share_key") == "bad" {
				_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "share expired"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 1, "html": blockListing})
		})
		mux.HandleFunc("/file/player/video", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("fid") == "1" {
				_, _ = w.Write([]byte(`var sources = [{"file":"https://cdn.test/a.m3u8","label":"720p"}];`))
				return
			}
			_, _ = w.Write([]byte(`<html></html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClientAt(server.URL+"/", "cookie-token", network.NewFetcher(server.Client()))

		Convey("List sends the cookie and referer", func() {
			files, err := client.List(context.Background(), "KEY", Root)
			So(err, ShouldBeNil)
			So(files, ShouldHaveLength, 3)
			So(headers.Get("Cookie"), ShouldEqual, "ui=cookie-token")
			So(headers.Get("Referer"), ShouldEqual, server.URL+"/share/KEY")
			So(headers.Get("X-Requested-With"), ShouldEqual, "XMLHttpRequest")
		})

		Convey("A failure code is a resolve error", func() {
			_, err := client.List(context.Background(), "bad", Root)
			So(errors.Is(err, apperr.ErrResolve), ShouldBeTrue)
		})

		Convey("Streams are read from the player page", func() {
			streams, err := client.Streams(context.Background(), "KEY", "1")
			So(err, ShouldBeNil)
			So(streams[0].Quality, ShouldEqual, "720p")
		})

		Convey("An empty player page is a resolve error", func() {
			_, err := client.Streams(context.Background(), "KEY", "2")
			So(errors.Is(err, apperr.ErrResolve), ShouldBeTrue)
		})
	})
}
