package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHandler(t *testing.T) {
	Convey("Given a counted provider failure", t, func() {
		before := testutil.ToFloat64(ProviderFailures.WithLabelValues("cine", "list"))
		ProviderFailures.WithLabelValues("cine", "list").Inc()

		So(testutil.ToFloat64(ProviderFailures.WithLabelValues("cine", "list")), ShouldEqual, before+1)

		Convey("The handler should expose it", func() {
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

			So(rec.Code, ShouldEqual, 200)
			So(strings.Contains(rec.Body.String(), `phim_provider_failures_total{op="list",provider="cine"}`), ShouldBeTrue)
		})
	})
}
