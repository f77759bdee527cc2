// Package server exposes the resolver over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"videoapi/internal/httputil"
	"videoapi/internal/media"
)

// User-facing messages. Scrape internals are never sent to clients.
const (
	ErrorMessage    = "Error! Please try again later!"
	NotFoundMessage = "Please try a different query! Nothing was found..."
	infoTemplate    = "This URL is not handled by videoapi! This API may break at any time because this URL has been scraped from: %s"
)

// Resolver is the resolution core.
type Resolver interface {
	ResolveMovie(ctx context.Context, title string) (string, bool, error)
	ResolveShow(ctx context.Context, title string, season, episode int) (string, bool, error)
	Search(ctx context.Context, query string) ([]media.CatalogEntry, error)
}

// Cache stores successful resolutions.
type Cache interface {
	Movie(ctx context.Context, title string) (string, bool, error)
	Episode(ctx context.Context, title string, season, episode int) (string, bool, error)
	PutMovie(ctx context.Context, title, url string) error
	PutEpisode(ctx context.Context, title string, season, episode int, url string) error
}

// Options configure the HTTP server.
type Options struct {
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SiteURL is the scraped origin, quoted in responses and sent as the
	// proxy's referer.
	SiteURL string
	// ProxyHosts are upstream hosts /proxy accepts before any stream has
	// been resolved, e.g. a CDN serving cached URLs from a previous run.
	ProxyHosts []string
}

// Server serves the API.
type Server struct {
	resolver Resolver
	cache    Cache
	client   *http.Client
	opts     Options
	hosts    *hostSet
	log      *zap.Logger
	http     *http.Server
}

// New creates a server. cache may be nil.
func New(resolver Resolver, cache Cache, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		resolver: resolver,
		cache:    cache,
		client:   httputil.NewClient(),
		opts:     opts,
		hosts:    newHostSet(opts.ProxyHosts),
		log:      log,
	}
	s.http = &http.Server{
		Addr:         opts.Listen,
		Handler:      s.Router(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger, cors)

	r.HandleFunc("/movie", s.handleMovie).Methods(http.MethodGet)
	r.HandleFunc("/show", s.handleShow).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/proxy", s.handleProxy).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.log.Info("server listening", zap.String("addr", s.opts.Listen))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
