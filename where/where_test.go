package where

import (
	"testing"

	"github.com/provdev-cli/provdev/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Dist()", func() {
			Convey("Should fall back to dist when unconfigured", func() {
				viper.Set("dist.root", "")
				So(Dist(), ShouldEndWith, "dist")
			})

			Convey("Should honor absolute roots verbatim", func() {
				viper.Set("dist.root", "/srv/modules")
				So(Dist(), ShouldEqual, "/srv/modules")
			})
		})

		Convey("Manifest()", func() {
			viper.Set("dist.root", "/srv/modules")
			viper.Set("dist.manifest", "manifest.json")
			So(Manifest(), ShouldEqual, "/srv/modules/manifest.json")
		})
	})
}
