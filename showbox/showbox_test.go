package showbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCrypto(t *testing.T) {
	Convey("Encryption is deterministic and reversible", t, func() {
		plain := []byte(`{"module":"Search5","keyword":"dune"}`)
		a, b := Encrypt(plain), Encrypt(plain)
		So(a, ShouldEqual, b)

		decrypted, err := Decrypt(a)
		So(err, ShouldBeNil)
		So(string(decrypted), ShouldEqual, string(plain))
	})

	Convey("Block-aligned input gets a full padding block", t, func() {
		raw, err := base64.StdEncoding.DecodeString(Encrypt([]byte("12345678")))
		So(err, ShouldBeNil)
		So(raw, ShouldHaveLength, 16)
	})

	Convey("Garbage does not decrypt", t, func() {
		_, err := Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
		So(err, ShouldNotBeNil)
	})

	Convey("Verify is a lowercase md5 hex digest", t, func() {
		v := Verify("payload")
		So(v, ShouldHaveLength, 32)
		So(v, ShouldEqual, strings.ToLower(v))
		So(Verify("payload"), ShouldEqual, v)
		So(Verify("other"), ShouldNotEqual, v)
	})
}

func TestMatch(t *testing.T) {
	results := []Result{
		{ID: 1, Title: "Dune: Part Two", BoxType: 1},
		{ID: 2, Title: "Dune", BoxType: 2},
		{ID: 3, Title: "Dune (2021)", BoxType: 1},
	}

	Convey("An exact normalized title wins", t, func() {
		r, ok := Match(results, "dune", media.Movie)
		So(ok, ShouldBeTrue)
		So(r.ID, ShouldEqual, 2)
	})

	Convey("Otherwise the closest title of the same kind", t, func() {
		r, ok := Match(results, "Dune Part 2", media.Movie)
		So(ok, ShouldBeTrue)
		So(r.ID, ShouldEqual, 1)
	})

	Convey("Otherwise the first result", t, func() {
		r, ok := Match(results[:1], "Something else", media.Series)
		So(ok, ShouldBeTrue)
		So(r.ID, ShouldEqual, 1)
	})

	Convey("Nothing matches nothing", t, func() {
		_, ok := Match(nil, "x", media.Movie)
		So(ok, ShouldBeFalse)
	})
}

func TestResultDecoding(t *testing.T) {
	Convey("Numbers and numeric strings decode alike", t, func() {
		var results []Result
		err := json.Unmarshal([]byte(`[{"id":"42","title":"A","box_type":2,"year":"2023","imdb_rating":7.5},{"id":7,"title":"B"}]`), &results)
		So(err, ShouldBeNil)
		So(results[0].ID, ShouldEqual, 42)
		So(results[0].Kind(), ShouldEqual, media.Series)
		So(results[0].Year, ShouldEqual, 2023)
		So(results[0].IMDbRating, ShouldEqual, "7.5")
		So(results[1].ID, ShouldEqual, 7)
		So(results[1].Kind(), ShouldEqual, media.Movie)
	})
}

func TestShareKeyFromLink(t *testing.T) {
	Convey("The key follows /share/", t, func() {
		So(ShareKeyFromLink("https://www.febbox.com/share/AbC123"), ShouldEqual, "AbC123")
		So(ShareKeyFromLink("https://www.febbox.com/share/AbC123/"), ShouldEqual, "AbC123")
		So(ShareKeyFromLink("https://www.febbox.com/file/AbC123"), ShouldBeEmpty)
	})
}

func TestClient(t *testing.T) {
	Convey("Given a catalog server", t, func() {
		var form url.Values
		mux := http.NewServeMux()
		mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			form, _ = url.ParseQuery(string(body))
			_, _ = w.Write([]byte(`{"code":1,"data":[{"id":99,"title":"Mai","box_type":1}]}`))
		})
		mux.HandleFunc("/share_link", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("id") {
			case "99":
				_, _ = w.Write([]byte(`{"code":1,"data":{"link":"https://www.febbox.com/share/KEY99"}}`))
			case "5":
				_, _ = w.Write([]byte(`{"code":1,"data":{"link":""}}`))
			default:
				_, _ = w.Write([]byte(`{"code":0,"msg":"not found"}`))
			}
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClientAt(server.URL+"/api/", server.URL+"/share_link", network.NewFetcher(server.Client()))
		client.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

		Convey("FindID sends an encrypted, signed request", func() {
			id, err := client.FindID(context.Background(), "Mai", media.Movie)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, 99)

			So(form.Get("appid"), ShouldEqual, "27")
			So(form.Get("platform"), ShouldEqual, "android")

			envelope, err := base64.StdEncoding.DecodeString(form.Get("data"))
			So(err, ShouldBeNil)

			var signed map[string]string
			So(json.Unmarshal(envelope, &signed), ShouldBeNil)
			So(signed["verify"], ShouldEqual, Verify(signed["encrypt_data"]))

			plain, err := Decrypt(signed["encrypt_data"])
			So(err, ShouldBeNil)

			var data map[string]string
			So(json.Unmarshal(plain, &data), ShouldBeNil)
			So(data["module"], ShouldEqual, "Search5")
			So(data["keyword"], ShouldEqual, "Mai")
			So(data["type"], ShouldEqual, "movie")
			So(data["expired_date"], ShouldEqual, "1700043200")
		})

		Convey("ShareKey extracts the key", func() {
			k, err := client.ShareKey(context.Background(), 99, media.Movie)
			So(err, ShouldBeNil)
			So(k, ShouldEqual, "KEY99")
		})

		Convey("An empty link is a resolve failure", func() {
			_, err := client.ShareKey(context.Background(), 5, media.Movie)
			So(errors.Is(err, apperr.ErrResolve), ShouldBeTrue)
		})

		Convey("An error code is a resolve failure", func() {
			_, err := client.ShareKey(context.Background(), 1, media.Series)
			So(errors.Is(err, apperr.ErrResolve), ShouldBeTrue)
		})
	})
}
