// Package server exposes provider modules over the local development HTTP surface.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/provdev-cli/provdev/build"
	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/dispatch"
	"github.com/provdev-cli/provdev/filesystem"
	"github.com/provdev-cli/provdev/log"
	"github.com/provdev-cli/provdev/module"
)

// availableEndpoints is the surface advertised by the catch-all responder.
var availableEndpoints = []string{
	"GET /manifest.json",
	"GET /dist/{provider}/{file}",
	"GET /{provider}/{function}",
	"GET /{provider}/search/{query}",
	"POST /build",
	"GET /status",
	"GET /providers",
	"GET /health",
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	providers, err := s.reporter.Providers()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	var buildTime any
	if mtime, ok := s.reporter.ModTime().Get(); ok {
		buildTime = mtime.Format(time.RFC3339)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"port":         s.port,
		"providers":    len(providers),
		"providerList": providers,
		"buildTime":    buildTime,
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.reporter.Providers()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, providers)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	contents, err := s.reporter.Read()
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("manifest not found at %s; run the build step", s.reporter.Path()),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(contents)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	out, err := build.Run()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
			"output":  out,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "build completed",
	})
}

// handleDist serves files straight out of the module tree. A path that
// resolves to a module (after the extension fallback) answers with the
// module's JSON-serialized exports; anything else streams raw.
func (s *Server) handleDist(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	file := chi.URLParam(r, "file")
	path := filepath.Join(s.dispatcher.Root, provider, file)

	resolved, err := module.Resolve(path)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("no file %s under provider %q", file, provider),
			"hint":  "run the build step to regenerate the module tree",
		})
		return
	}

	if strings.HasSuffix(resolved, constant.ModuleExtension) {
		mod, err := module.Load(resolved)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error": err.Error(),
			})
			return
		}
		defer mod.Close()

		respondJSON(w, http.StatusOK, mod.ExportMap())
		return
	}

	contents, err := filesystem.API().ReadFile(resolved)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	if ctype := mime.TypeByExtension(filepath.Ext(resolved)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	_, _ = w.Write(contents)
}

// handleSearchRedirect rewrites the path-parameter form of search into the
// canonical query-parameter form instead of executing it directly.
func (s *Server) handleSearchRedirect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	query := chi.URLParam(r, "query")

	target := fmt.Sprintf("/%s/search?query=%s", provider, url.QueryEscape(query))
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	function := chi.URLParam(r, "function")

	result, err := s.dispatcher.Dispatch(provider, function, r.URL.Query())
	if err != nil {
		var notFound *dispatch.NotFoundError
		if errors.As(err, &notFound) {
			respondJSON(w, http.StatusNotFound, map[string]any{
				"error":    err.Error(),
				"provider": notFound.Provider,
				"function": notFound.Function,
				"hint":     s.providerHint(notFound.Provider),
			})
			return
		}

		var execErr *dispatch.ExecutionError
		if errors.As(err, &execErr) {
			log.Errorf("dispatch %s/%s: %s", provider, function, err)
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error": err.Error(),
				"stack": execErr.Stack(),
			})
			return
		}

		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// providerHint suggests the closest known provider name for a 404 body.
func (s *Server) providerHint(provider string) string {
	providers, err := s.reporter.Providers()
	if err != nil || len(providers) == 0 {
		return "run the build step to generate the module tree"
	}

	ranks := fuzzy.RankFindNormalizedFold(provider, providers)
	if len(ranks) == 0 {
		return fmt.Sprintf("known providers: %s", strings.Join(providers, ", "))
	}

	sort.Sort(ranks)
	return fmt.Sprintf("did you mean %q?", ranks[0].Target)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]any{
		"error":              fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
		"availableEndpoints": availableEndpoints,
	})
}
