package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("The system handler is used without an app", t, func() {
		name, args, err := Command("linux", "https://cdn.example/a.m3u8", "")
		So(err, ShouldBeNil)
		So(name, ShouldEqual, "xdg-open")
		So(args, ShouldResemble, []string{"https://cdn.example/a.m3u8"})
	})

	Convey("A named player receives the target", t, func() {
		name, args, err := Command("darwin", "https://cdn.example/a.m3u8", "IINA")
		So(err, ShouldBeNil)
		So(name, ShouldEqual, "open")
		So(args, ShouldResemble, []string{"-a", "IINA", "https://cdn.example/a.m3u8"})
	})

	Convey("Ampersands are escaped for start", t, func() {
		_, args, err := Command("windows", "https://x.example/?a=1&b=2", "vlc")
		So(err, ShouldBeNil)
		So(args[len(args)-1], ShouldEqual, "https://x.example/?a=1^&b=2")
	})

	Convey("Unknown systems are rejected", t, func() {
		_, _, err := Command("plan9", "x", "")
		So(err, ShouldNotBeNil)
	})
}
