package version

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Versions compare part by part", t, func() {
		for _, c := range []struct {
			a, b string
			want int
		}{
			{"1.0.0", "0.9.9", 1},
			{"v0.3.0", "0.3.0", 0},
			{"0.2.10", "0.3.0", -1},
		} {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		_, err := Compare("latest", "0.3.0")
		So(err, ShouldNotBeNil)
	})
}

func TestNotify(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"tag_name":"v99.0.0"}`)
	}))
	defer srv.Close()
	releasesAPI = srv.URL

	Convey("A newer release is announced once and cached", t, func() {
		viper.Set(key.CliVersionCheck, true)
		defer viper.Set(key.CliVersionCheck, false)

		var out bytes.Buffer
		Notify(context.Background(), &out)
		So(out.String(), ShouldContainSubstring, "99.0.0")
		So(out.String(), ShouldContainSubstring, constant.Version)

		latest, err := Latest(context.Background())
		So(err, ShouldBeNil)
		So(latest, ShouldEqual, "99.0.0")
		So(calls.Load(), ShouldEqual, 1)
	})

	Convey("Checks are off by default", t, func() {
		var out bytes.Buffer
		Notify(context.Background(), &out)
		So(out.Len(), ShouldEqual, 0)
	})
}
