package module

import (
	"testing"

	"github.com/provdev-cli/provdev/filesystem"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func TestResolveStrategy(t *testing.T) {
	Convey("Module.Resolve", t, func() {
		filesystem.SetMemMapFs()

		Convey("Should prefer the export named exactly like the request", func() {
			write("/dist/demo/search.lua", `
function other() return "other" end
function search() return "named" end
`)
			mod, err := Load("/dist/demo/search.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			fn, ok := mod.Resolve("search")
			So(ok, ShouldBeTrue)
			result, err := mod.Call(fn)
			So(err, ShouldBeNil)
			So(FromLua(result), ShouldEqual, "named")
		})

		Convey("Should fall back to the default export", func() {
			write("/dist/demo/search.lua", `return function() return "default" end`)
			mod, err := Load("/dist/demo/search.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			fn, ok := mod.Resolve("search")
			So(ok, ShouldBeTrue)
			result, err := mod.Call(fn)
			So(err, ShouldBeNil)
			So(FromLua(result), ShouldEqual, "default")
		})

		Convey("Should fall back to the first declared export", func() {
			write("/dist/demo/search.lua", `
function lookup() return "first" end
function another() return "second" end
`)
			mod, err := Load("/dist/demo/search.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			fn, ok := mod.Resolve("search")
			So(ok, ShouldBeTrue)
			result, err := mod.Call(fn)
			So(err, ShouldBeNil)
			So(FromLua(result), ShouldEqual, "first")
		})

		Convey("Should report nothing to serve for an empty module", func() {
			write("/dist/demo/empty.lua", `-- nothing exported`)
			mod, err := Load("/dist/demo/empty.lua")
			So(err, ShouldBeNil)
			defer mod.Close()

			_, ok := mod.Resolve("search")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCall(t *testing.T) {
	Convey("Module.Call", t, func() {
		filesystem.SetMemMapFs()
		write("/dist/demo/stream.lua", `
function stream(id, type)
	if id == "" then
		error("id is required")
	end
	return { id = id, type = type }
end
`)
		mod, err := Load("/dist/demo/stream.lua")
		So(err, ShouldBeNil)
		defer mod.Close()
		fn, _ := mod.Get("stream")

		Convey("Should pass arguments positionally", func() {
			result, err := mod.Call(fn, lua.LString("42"), lua.LString("movie"))
			So(err, ShouldBeNil)
			So(FromLua(result), ShouldResemble, map[string]any{"id": "42", "type": "movie"})
		})

		Convey("Should surface script errors", func() {
			_, err := mod.Call(fn, lua.LString(""), lua.LString(""))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "id is required")
		})

		Convey("Should reject non-callable values", func() {
			_, err := mod.Call(lua.LString("static"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExportMap(t *testing.T) {
	Convey("Module.ExportMap", t, func() {
		filesystem.SetMemMapFs()
		write("/dist/demo/meta.lua", `
name = "demo"
version = 2
function ignored() end
`)
		mod, err := Load("/dist/demo/meta.lua")
		So(err, ShouldBeNil)
		defer mod.Close()

		dump := mod.ExportMap()
		So(dump, ShouldResemble, map[string]any{"name": "demo", "version": 2})
	})
}
