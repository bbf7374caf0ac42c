// Package server exposes the documentation proxy over HTTP: redirects of
// historical paths, streaming of archive entries from the upstream
// repositories, the module listing and the admission webhook.
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/fetch"
	"github.com/reactor/docsproxy/internal/admission"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/metrics"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	Registry *core.Registry
	URLs     client.URLBuilder
	Fetcher  fetch.FetcherInterface
	Admitter *admission.Admitter
	Logger   *log.Logger

	resolver *fetch.Resolver
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and admissions.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// WithAdmitter replaces the admitter built from the fetcher.
func WithAdmitter(a *admission.Admitter) Option {
	return func(s *Server) {
		s.Admitter = a
	}
}

// New creates a Server proxying archive entries of reg through fetcher.
// A nil urls uses DocURLs for the default hosts.
func New(reg *core.Registry, urls client.URLBuilder, fetcher fetch.FetcherInterface, opts ...Option) *Server {
	if urls == nil {
		urls = client.NewDocURLs(client.DefaultHosts())
	}
	s := &Server{
		Registry: reg,
		URLs:     urls,
		Fetcher:  fetcher,
		Logger:   log.Default(),
		resolver: fetch.NewResolver(reg, urls),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Admitter == nil {
		s.Admitter = admission.New(reg, urls, fetcher.Status, admission.WithLogger(s.Logger))
	}
	return s
}

// Handler returns a router serving every route of s.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up all routes and middleware on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	get := func(path string, h http.HandlerFunc) {
		r.HandleFunc(path, h).Methods(http.MethodGet, http.MethodHead)
	}

	// historical entry points of the documentation site
	get("/docs/{module}/{version}/api", rewrite("/api", "/api/index.html"))
	get("/docs/{module}/{version}/reference/docs/{rest:.*}", rewrite("/reference/docs/", "/reference/"))
	get("/docs/{module}/{version}/reference", rewrite("/reference", "/reference/index.html"))
	get("/docs/{module}/{version}/api/{rest:.*}", s.proxy)
	get("/docs/{module}/{version}/reference/{rest:.*}", s.proxy)
	// dokka stylesheets are imported as ../style.css
	get("/docs/{module}/{version}/style.css", rewrite("/style.css", "/kdoc-api/style.css"))
	get("/docs/{module}/{version}/kdoc-api", rewrite("/kdoc-api", "/kdoc-api/index.html"))
	get("/docs/{module}/{version}/kdoc-api/{rest:.*}", s.proxy)

	get("/core/docs/reference/{rest:.*}", redirect(coreReadmeURL))
	get("/ext/docs/api/{rest:.*}", s.extDocs)
	get("/ipc/docs/api/{rest:.*}", rewrite("/ipc/docs/", "/docs/ipc/release/"))
	get("/netty/docs/api/{rest:.*}", rewrite("/netty/docs/", "/docs/netty/release/"))
	get("/2.x/{module}/api", legacyJavadoc)

	get("/modules", s.listModules)
	get("/modules/{module}", s.getModule)
	get("/status/upstreams", s.upstreamStatus)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/webhook/{module}/{version}", s.webhook).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.pageNotFound)

	r.Use(panicRecoveryMiddleware)
	r.Use(s.loggingMiddleware)
}
