package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/provdev-cli/provdev/config"
	"github.com/provdev-cli/provdev/filesystem"
	"github.com/provdev-cli/provdev/key"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func newTestServer() *Server {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
	viper.Set(key.DistRoot, "/dist")
	viper.Set(key.DistManifest, "manifest.json")
	return New()
}

func write(path, content string) {
	lo.Must0(filesystem.API().WriteFile(path, []byte(content), 0644))
}

func request(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	lo.Must0(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthAndStatus(t *testing.T) {
	Convey("Introspection endpoints", t, func() {
		s := newTestServer()

		Convey("GET /health", func() {
			rec := request(s, http.MethodGet, "/health")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["status"], ShouldEqual, "healthy")
			So(body["timestamp"], ShouldNotBeEmpty)
		})

		Convey("GET /status reflects the tree at call time", func() {
			lo.Must0(filesystem.API().MkdirAll("/dist/demo", 0755))
			body := decode(request(s, http.MethodGet, "/status"))
			So(body["providers"], ShouldEqual, 1)
			So(body["buildTime"], ShouldBeNil)

			// A provider added between two calls appears without a restart.
			lo.Must0(filesystem.API().MkdirAll("/dist/fresh", 0755))
			write("/dist/manifest.json", "{}")
			body = decode(request(s, http.MethodGet, "/status"))
			So(body["providers"], ShouldEqual, 2)
			So(body["buildTime"], ShouldNotBeNil)
		})

		Convey("GET /providers", func() {
			lo.Must0(filesystem.API().MkdirAll("/dist/demo", 0755))
			rec := request(s, http.MethodGet, "/providers")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var providers []string
			lo.Must0(json.Unmarshal(rec.Body.Bytes(), &providers))
			So(providers, ShouldResemble, []string{"demo"})
		})
	})
}

func TestManifest(t *testing.T) {
	Convey("GET /manifest.json", t, func() {
		s := newTestServer()

		Convey("Should 404 with an error body before the first build", func() {
			rec := request(s, http.MethodGet, "/manifest.json")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode(rec)["error"], ShouldNotBeEmpty)
		})

		Convey("Should serve the raw file contents", func() {
			write("/dist/manifest.json", `{"providers":["demo"]}`)
			rec := request(s, http.MethodGet, "/manifest.json")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, `{"providers":["demo"]}`)
		})
	})
}

func TestDispatchEndpoint(t *testing.T) {
	Convey("GET /{provider}/{function}", t, func() {
		s := newTestServer()

		Convey("Should serve a static catalog export unchanged", func() {
			write("/dist/demo/catalog.lua", `catalog = { "one", "two" }`)
			rec := request(s, http.MethodGet, "/demo/catalog")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body []any
			lo.Must0(json.Unmarshal(rec.Body.Bytes(), &body))
			So(body, ShouldResemble, []any{"one", "two"})
		})

		Convey("Should serve watch from stream.lua", func() {
			write("/dist/demo/stream.lua", `
function stream(id, type, ctx)
	return { id = id }
end
`)
			rec := request(s, http.MethodGet, "/demo/watch?id=42")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["id"], ShouldEqual, "42")
		})

		Convey("Should name provider and function in the 404 body", func() {
			rec := request(s, http.MethodGet, "/demo/posts")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			body := decode(rec)
			So(body["provider"], ShouldEqual, "demo")
			So(body["function"], ShouldEqual, "posts")
		})

		Convey("Should suggest a close provider name", func() {
			lo.Must0(filesystem.API().MkdirAll("/dist/demo", 0755))
			rec := request(s, http.MethodGet, "/demmo/posts")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode(rec)["hint"], ShouldContainSubstring, "demo")
		})

		Convey("Should observe an edited module on the next request", func() {
			write("/dist/demo/catalog.lua", `catalog = { "old" }`)
			first := request(s, http.MethodGet, "/demo/catalog")
			So(first.Body.String(), ShouldContainSubstring, "old")

			write("/dist/demo/catalog.lua", `catalog = { "new" }`)
			second := request(s, http.MethodGet, "/demo/catalog")
			So(second.Body.String(), ShouldContainSubstring, "new")
		})

		Convey("Should 404 for reserved provider names", func() {
			write("/dist/status/info.lua", `info = {}`)
			rec := request(s, http.MethodGet, "/status/info")
			// Claimed by the status route itself: chi answers /status, and
			// two-segment reserved paths fall through to the dispatcher 404.
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Should report execution failures with a stack", func() {
			write("/dist/demo/search.lua", `
function search(query, page, ctx)
	error("scrape failed")
end
`)
			rec := request(s, http.MethodGet, "/demo/search?query=x")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			body := decode(rec)
			So(body["error"], ShouldContainSubstring, "scrape failed")
			So(body["stack"], ShouldNotBeEmpty)
		})
	})
}

func TestSearchRedirect(t *testing.T) {
	Convey("GET /{provider}/search/{query}", t, func() {
		s := newTestServer()

		rec := request(s, http.MethodGet, "/demo/search/naruto")
		So(rec.Code, ShouldEqual, http.StatusFound)
		So(rec.Header().Get("Location"), ShouldEqual, "/demo/search?query=naruto")
	})
}

func TestDistEndpoint(t *testing.T) {
	Convey("GET /dist/{provider}/{file}", t, func() {
		s := newTestServer()

		Convey("Should dump module exports as JSON, with extension fallback", func() {
			write("/dist/demo/meta.lua", `
name = "demo"
function hidden() end
`)
			rec := request(s, http.MethodGet, "/dist/demo/meta")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec), ShouldResemble, map[string]any{"name": "demo"})
		})

		Convey("Should stream non-module files raw", func() {
			write("/dist/demo/notes.txt", "plain text")
			rec := request(s, http.MethodGet, "/dist/demo/notes.txt")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "plain text")
		})

		Convey("Should 404 with a hint for missing files", func() {
			rec := request(s, http.MethodGet, "/dist/demo/absent")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			body := decode(rec)
			So(body["error"], ShouldNotBeEmpty)
			So(body["hint"], ShouldNotBeEmpty)
		})
	})
}

func TestBuildEndpoint(t *testing.T) {
	Convey("POST /build", t, func() {
		s := newTestServer()

		Convey("Should report success for a passing build", func() {
			viper.Set(key.BuildCommand, "echo ok")
			rec := request(s, http.MethodPost, "/build")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["success"], ShouldEqual, true)
		})

		Convey("Should report the failure for a broken build", func() {
			viper.Set(key.BuildCommand, "definitely-not-a-real-binary")
			rec := request(s, http.MethodPost, "/build")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			body := decode(rec)
			So(body["success"], ShouldEqual, false)
			So(body["error"], ShouldNotBeEmpty)
		})
	})
}

func TestCatchAll(t *testing.T) {
	Convey("Unmatched routes", t, func() {
		s := newTestServer()

		rec := request(s, http.MethodGet, "/one/two/three/four")
		So(rec.Code, ShouldEqual, http.StatusNotFound)
		body := decode(rec)
		So(body["error"], ShouldNotBeEmpty)
		So(body["availableEndpoints"], ShouldNotBeEmpty)
	})
}

func TestCORS(t *testing.T) {
	Convey("CORS middleware", t, func() {
		s := newTestServer()

		Convey("Should allow any origin", func() {
			rec := request(s, http.MethodGet, "/health")
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("Should short-circuit preflight requests", func() {
			rec := request(s, http.MethodOptions, "/demo/catalog")
			So(rec.Code, ShouldEqual, http.StatusNoContent)
		})
	})
}
