package network

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/raidenhub/phim/apperr"
	. "github.com/smartystreets/goconvey/convey"
)

func brotliBytes(s string) []byte {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, _ = w.Write([]byte(s))
	_ = w.Close()
	return buf.Bytes()
}

func TestFetcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given a test server", t, func() {
		var seenUA, seenAccept string
		mux := http.NewServeMux()
		mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
			seenUA = r.Header.Get("User-Agent")
			seenAccept = r.Header.Get("Accept-Encoding")
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write(brotliBytes("<html><body><h1>xin chào</h1></body></html>"))
		})
		mux.HandleFunc("/busy", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":200,"msg":"ok"}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := NewFetcher(NewClient(5*time.Second, true), BrowserHeaders("phim-test")...)

		Convey("Document should decode brotli and send browser headers", func() {
			doc, err := fetcher.Document(ctx, server.URL+"/br")
			So(err, ShouldBeNil)
			So(doc.Find("h1").Text(), ShouldEqual, "xin chào")
			So(seenUA, ShouldEqual, "phim-test")
			So(seenAccept, ShouldEqual, "gzip, br")
			So(doc.Url.Path, ShouldEqual, "/br")
		})

		Convey("A 503 should be a transient error carrying the status", func() {
			_, err := fetcher.Get(ctx, server.URL+"/busy", nil)
			So(errors.Is(err, apperr.ErrTransient), ShouldBeTrue)

			var status *StatusError
			So(errors.As(err, &status), ShouldBeTrue)
			So(status.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("A 404 should be a resolve error", func() {
			_, err := fetcher.Get(ctx, server.URL+"/missing", nil)
			So(errors.Is(err, apperr.ErrResolve), ShouldBeTrue)
		})

		Convey("GetJSON should decode the body", func() {
			var out struct {
				Code int    `json:"code"`
				Msg  string `json:"msg"`
			}
			So(fetcher.GetJSON(ctx, server.URL+"/json", nil, &out), ShouldBeNil)
			So(out.Code, ShouldEqual, 200)
		})

		Convey("A refused connection should be transient", func() {
			_, err := fetcher.Get(ctx, "http://127.0.0.1:1/", nil)
			So(errors.Is(err, apperr.ErrTransient), ShouldBeTrue)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("A cancelled context should stop a paced request", t, func() {
		fetcher := NewFetcher(http.DefaultClient, WithRateLimit(0.001, 1))
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		_, err := fetcher.Get(context.Background(), server.URL, nil)
		So(err, ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = fetcher.Get(ctx, server.URL, nil)
		So(errors.Is(err, apperr.ErrTransient), ShouldBeTrue)
	})
}
