package server

import (
	"context"
	"database/sql"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"acme-icecream/internal/flavor"
)

// BuildInfo identifies the running binary on /health and /metrics.
type BuildInfo struct {
	Version string
	Commit  string
}

type Config struct {
	Addr  string // e.g. ":3000"
	Build BuildInfo

	// DB backs /health and /ready. When Store is nil a flavor.Store is built
	// over DB; a nil DB gives a store that fails every call.
	DB    *sql.DB
	Store FlavorStore

	// Static is the front-end build; nil disables the catch-all.
	Static fs.FS

	// WriteRateLimit caps POST/PUT/DELETE per client IP per minute; zero
	// disables it.
	WriteRateLimit int
}

type Server struct {
	httpServer *http.Server
	store      FlavorStore
	db         *sql.DB
	static     fs.FS
	version    string
	metrics    *metrics
	limiter    *rateLimiter
}

func New(cfg Config) *Server {
	s := &Server{
		store:   cfg.Store,
		db:      cfg.DB,
		static:  cfg.Static,
		version: cfg.Build.Version,
		metrics: newMetrics(cfg.Build),
		limiter: newRateLimiter(cfg.WriteRateLimit, time.Minute),
	}
	if s.store == nil {
		s.store = flavor.NewStore(cfg.DB)
	}

	// Wrap middleware: requestID -> logging -> security headers -> gzip -> router
	var handler http.Handler = s.routes()
	handler = compressionMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.instrument)

	write := func(h http.HandlerFunc) http.Handler { return s.limiter.writesOnly(h) }
	// The collection answers with or without a trailing slash; StrictSlash
	// would answer POST with a redirect.
	for _, path := range []string{"/api/flavors", "/api/flavors/"} {
		r.HandleFunc(path, s.listFlavors).Methods(http.MethodGet)
		r.Handle(path, write(s.createFlavor)).Methods(http.MethodPost)
	}
	r.HandleFunc("/api/flavors/{id}", s.getFlavor).Methods(http.MethodGet)
	r.Handle("/api/flavors/{id}", write(s.updateFlavor)).Methods(http.MethodPut)
	r.Handle("/api/flavors/{id}", write(s.deleteFlavor)).Methods(http.MethodDelete)

	r.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.HandleReady).Methods(http.MethodGet)
	r.HandleFunc("/live", s.HandleLive).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(newStaticHandler(s.static)).Methods(http.MethodGet, http.MethodHead)
	return r
}

// Handler returns the fully wrapped handler, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.close()
	return s.httpServer.Shutdown(ctx)
}
