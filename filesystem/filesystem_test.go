package filesystem

import (
	"os"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAPI(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory backend", t, func() {
		SetMemMapFs()
		lo.Must0(API().MkdirAll("/data", os.ModePerm))

		Convey("WriteAtomic should replace the file and leave no temp file", func() {
			So(WriteAtomic("/data/a.json", []byte("one")), ShouldBeNil)
			So(WriteAtomic("/data/a.json", []byte("two")), ShouldBeNil)

			content := lo.Must(API().ReadFile("/data/a.json"))
			So(string(content), ShouldEqual, "two")
			So(lo.Must(API().Exists("/data/a.json.tmp")), ShouldBeFalse)
		})

		Convey("GacheFs should write through the backend", func() {
			fs := GacheFs{}
			So(fs.MkdirAll("/cache", os.ModePerm), ShouldBeNil)
			f, err := fs.OpenFile("/cache/x", os.O_CREATE|os.O_WRONLY, 0o600)
			So(err, ShouldBeNil)
			_, _ = f.Write([]byte("ok"))
			So(f.Close(), ShouldBeNil)
			So(lo.Must(API().Exists("/cache/x")), ShouldBeTrue)
		})
	})
}
