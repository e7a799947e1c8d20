package util

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		So(SanitizeFilename("file:name?.lua"), ShouldEqual, "file_name_.lua")
		So(SanitizeFilename("thu vien  cine"), ShouldEqual, "thu_vien_cine")
		So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "item", "items"), ShouldEqual, "1 item")
		So(Quantify(3, "item", "items"), ShouldEqual, "3 items")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("sources/custom.lua"), ShouldEqual, "custom")
		So(FileStem("custom"), ShouldEqual, "custom")
	})
}

func TestWrap(t *testing.T) {
	Convey("Wrap should break long descriptions on word boundaries", t, func() {
		wrapped := Wrap("one two three four", 9)
		So(strings.Split(wrapped, "\n"), ShouldResemble, []string{"one two", "three", "four"})
	})
}

func TestBounds(t *testing.T) {
	Convey("Max and Clamp", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Clamp(0, 1, 10), ShouldEqual, 1)
		So(Clamp(42, 1, 10), ShouldEqual, 10)
		So(Clamp(4, 1, 10), ShouldEqual, 4)
	})
}
