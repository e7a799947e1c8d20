package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTaxonomy(t *testing.T) {
	Convey("Given typed failures", t, func() {
		Convey("errors.Is should match sentinels by kind", func() {
			err := fmt.Errorf("listing: %w", Resolve("fshare.ListFolder", "rate limited"))
			So(errors.Is(err, ErrResolve), ShouldBeTrue)
			So(errors.Is(err, ErrAuth), ShouldBeFalse)
		})

		Convey("A session-expired error should be an auth error", func() {
			err := SessionExpired("fshare.ListFolder", "please login again")
			So(errors.Is(err, ErrAuth), ShouldBeTrue)
			So(IsSessionExpired(err), ShouldBeTrue)
			So(IsSessionExpired(Auth("fshare.Login", "wrong password")), ShouldBeFalse)
		})

		Convey("A typed error should not match a different non-sentinel value", func() {
			So(errors.Is(NotFound("a", "x"), NotFound("a", "x")), ShouldBeFalse)
		})

		Convey("Transient errors should unwrap to their cause and be retryable", func() {
			err := Transient("network.Get", io.ErrUnexpectedEOF)
			So(errors.Is(err, io.ErrUnexpectedEOF), ShouldBeTrue)
			So(IsRetryable(err), ShouldBeTrue)
			So(IsRetryable(Resolve("x", "y")), ShouldBeFalse)
		})

		Convey("Wrap should keep an existing kind", func() {
			err := Wrap(KindResolve, "outer", NotFound("inner", "missing"))
			So(KindOf(err), ShouldEqual, KindNotFound)
			So(KindOf(Wrap(KindTransient, "op", io.EOF)), ShouldEqual, KindTransient)
			So(Wrap(KindAuth, "op", nil), ShouldBeNil)
		})

		Convey("Untyped errors should count as resolve failures", func() {
			So(KindOf(errors.New("boom")), ShouldEqual, KindResolve)
		})

		Convey("Error strings should carry the operation", func() {
			So(Resolve("session.download", "file not found").Error(), ShouldEqual, "session.download: file not found")
			So(Transient("get", io.EOF).Error(), ShouldEqual, "get: EOF")
			So(ErrNotFound.Error(), ShouldEqual, "not_found")
		})
	})
}
