package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("WithFields should hand out a silent entry", func() {
			entry := WithField("provider", "cine")
			So(entry, ShouldNotBeNil)
			So(entry.Data["provider"], ShouldEqual, "cine")
			entry.Info("dropped")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)
		Info("hello")

		Convey("A dated log file should exist", func() {
			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			So(lo.Must(filesystem.API().Exists(path)), ShouldBeTrue)
		})
	})
}
