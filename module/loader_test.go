package module

import (
	"errors"
	"testing"

	"github.com/provdev-cli/provdev/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func init() {
	filesystem.SetMemMapFs()
}

func write(path, content string) {
	lo.Must0(filesystem.API().WriteFile(path, []byte(content), 0644))
}

func TestResolve(t *testing.T) {
	Convey("Resolve", t, func() {
		filesystem.SetMemMapFs()
		write("/dist/demo/catalog.lua", "catalog = {}")

		Convey("Should resolve an existing path verbatim", func() {
			resolved, err := Resolve("/dist/demo/catalog.lua")
			So(err, ShouldBeNil)
			So(resolved, ShouldEqual, "/dist/demo/catalog.lua")
		})

		Convey("Should append the module extension to extensionless paths", func() {
			resolved, err := Resolve("/dist/demo/catalog")
			So(err, ShouldBeNil)
			So(resolved, ShouldEqual, "/dist/demo/catalog.lua")
		})

		Convey("Should not apply the fallback when an extension is present", func() {
			_, err := Resolve("/dist/demo/catalog.txt")
			var notFound *NotFoundError
			So(errors.As(err, &notFound), ShouldBeTrue)
			So(notFound.Path, ShouldEqual, "/dist/demo/catalog.txt")
		})

		Convey("Should fail for missing paths", func() {
			_, err := Resolve("/dist/demo/missing")
			var notFound *NotFoundError
			So(errors.As(err, &notFound), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Load", t, func() {
		filesystem.SetMemMapFs()

		Convey("Should record exports in declaration order", func() {
			write("/dist/demo/meta.lua", `
first = "a"
second = "b"
function third() return 1 end
`)
			mod, err := Load("/dist/demo/meta.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			So(mod.Exports(), ShouldResemble, []string{"first", "second", "third"})
		})

		Convey("Should not export locals", func() {
			write("/dist/demo/meta.lua", `
local hidden = true
visible = 1
`)
			mod, err := Load("/dist/demo/meta.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			So(mod.Exports(), ShouldResemble, []string{"visible"})
		})

		Convey("Should keep the final value of a reassigned export", func() {
			write("/dist/demo/meta.lua", `
count = 1
count = 2
`)
			mod, err := Load("/dist/demo/meta.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			value, ok := mod.Get("count")
			So(ok, ShouldBeTrue)
			So(FromLua(value), ShouldEqual, 2)
		})

		Convey("Should treat the chunk return value as the default export", func() {
			write("/dist/demo/meta.lua", `return { name = "demo" }`)
			mod, err := Load("/dist/demo/meta.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			def, ok := mod.Default()
			So(ok, ShouldBeTrue)
			So(def.Type(), ShouldEqual, lua.LTTable)
			So(mod.Exports(), ShouldBeEmpty)
		})

		Convey("Should observe on-disk edits on the very next load", func() {
			write("/dist/demo/catalog.lua", `catalog = { "old" }`)
			mod, err := Load("/dist/demo/catalog.lua")
			So(err, ShouldBeNil)
			first, _ := mod.Get("catalog")
			So(FromLua(first), ShouldResemble, []any{"old"})
			mod.Close()

			write("/dist/demo/catalog.lua", `catalog = { "new" }`)
			mod, err = Load("/dist/demo/catalog.lua")
			So(err, ShouldBeNil)
			defer mod.Close()
			second, _ := mod.Get("catalog")
			So(FromLua(second), ShouldResemble, []any{"new"})
		})

		Convey("Should fail with NotFoundError for missing modules", func() {
			_, err := Load("/dist/demo/absent.lua")
			var notFound *NotFoundError
			So(errors.As(err, &notFound), ShouldBeTrue)
		})

		Convey("Should surface syntax errors", func() {
			write("/dist/demo/broken.lua", `function (`)
			_, err := Load("/dist/demo/broken.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Should surface runtime errors from the module body", func() {
			write("/dist/demo/explosive.lua", `error("boom")`)
			_, err := Load("/dist/demo/explosive.lua")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "boom")
		})
	})
}
