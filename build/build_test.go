package build

import (
	"errors"
	"testing"

	"github.com/provdev-cli/provdev/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestRun(t *testing.T) {
	Convey("Run", t, func() {
		Convey("Should fail when no command is configured", func() {
			viper.Set(key.BuildCommand, "  ")
			_, err := Run()
			var failure *FailureError
			So(errors.As(err, &failure), ShouldBeTrue)
			So(failure.Error(), ShouldContainSubstring, "not configured")
		})

		Convey("Should capture the command output", func() {
			viper.Set(key.BuildCommand, "echo built")
			out, err := Run()
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "built")
		})

		Convey("Should wrap a missing binary as a failure", func() {
			viper.Set(key.BuildCommand, "definitely-not-a-real-binary")
			_, err := Run()
			var failure *FailureError
			So(errors.As(err, &failure), ShouldBeTrue)
			So(failure.Command, ShouldEqual, "definitely-not-a-real-binary")
		})
	})
}
