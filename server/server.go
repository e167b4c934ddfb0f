// Package server exposes provider modules over the local development HTTP surface.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/provdev-cli/provdev/dispatch"
	"github.com/provdev-cli/provdev/key"
	"github.com/provdev-cli/provdev/log"
	"github.com/provdev-cli/provdev/manifest"
	"github.com/provdev-cli/provdev/util"
	"github.com/provdev-cli/provdev/where"
	"github.com/spf13/viper"
)

// shutdownGrace is how long in-flight requests get to finish on interrupt.
const shutdownGrace = 5 * time.Second

// Server wires the dispatcher, the manifest reporter and the route table
// into one HTTP listener.
type Server struct {
	host       string
	port       int
	dispatcher *dispatch.Dispatcher
	reporter   *manifest.Reporter
	router     chi.Router
}

// New assembles a Server from the global configuration.
func New() *Server {
	host := viper.GetString(key.ServerHost)
	port := viper.GetInt(key.ServerPort)

	baseURL := viper.GetString(key.ContextBaseURL)
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	root := where.Dist()

	s := &Server{
		host:       host,
		port:       port,
		dispatcher: dispatch.New(root, dispatch.Context{BaseURL: baseURL}),
		reporter:   manifest.New(root, viper.GetString(key.DistManifest)),
	}
	s.routes()
	return s
}

// routes builds the route table. Static routes register first so they can
// never be shadowed by the provider catch-alls; the dispatcher additionally
// rejects reserved provider names itself.
func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(cors)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/providers", s.handleProviders)
	r.Get("/manifest.json", s.handleManifest)
	r.Post("/build", s.handleBuild)
	r.Get("/dist/{provider}/{file}", s.handleDist)
	r.Get("/{provider}/search/{query}", s.handleSearchRedirect)
	r.Get("/{provider}/{function}", s.handleDispatch)
	r.NotFound(s.handleNotFound)

	s.router = r
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the listener fails or the process receives an
// interrupt, then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	srv := &http.Server{Addr: addr, Handler: s.router}

	providers, err := s.reporter.Providers()
	if err != nil {
		return err
	}

	log.Infof("serving %s from %s on http://%s",
		util.Quantify(len(providers), "provider", "providers"), s.dispatcher.Root, addr)
	fmt.Printf("provdev listening on http://%s (%s)\n",
		addr, util.Quantify(len(providers), "provider", "providers"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
