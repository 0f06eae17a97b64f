// Package api serves the layout engine and saved sessions over HTTP.
//
// The routes mirror what the web client calls:
//
//	GET  /health                   liveness probe
//	GET  /devices                  device catalog
//	POST /layout/calc              validate and calculate a configuration
//	POST /layout/svg               draw a configuration as SVG
//	POST /session                  save {config, colors}
//	GET  /sessions                 list saved sessions
//	GET  /session_id/{id}          load one session
//	GET  /session_id/{id}/layout   load and recalculate one session
//	GET  /metrics                  Prometheus exposition (when enabled)
//
// Errors are JSON objects with a "message" field; validation failures add
// an "errors" map from field to message.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sitegrid/pkg/config"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// Server is the HTTP front end. It is safe for concurrent use.
type Server struct {
	runner  *pipeline.Runner
	store   session.Store
	logger  *log.Logger
	cfg     config.Server
	metrics http.Handler
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets listen address, timeouts, CORS origins and body limit.
func WithConfig(cfg config.Server) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New builds a server around runner and store.
func New(runner *pipeline.Runner, store session.Store, opts ...Option) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, nil)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}
	s := &Server{
		runner: runner,
		store:  store,
		logger: log.Default(),
		cfg:    config.Default().Server,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.AllowedOrigins))
	r.Use(limitBody(s.cfg.MaxBodyBytes))

	r.Get("/health", s.handleHealth)
	r.Get("/devices", s.handleDevices)

	r.Route("/layout", func(r chi.Router) {
		r.Post("/calc", s.handleCalc)
		r.Post("/svg", s.handleSVG)
	})

	r.Post("/session", s.handleSaveSession)
	r.Get("/sessions", s.handleListSessions)
	r.Route("/session_id/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Get("/layout", s.handleSessionLayout)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then drains in-flight
// requests for up to the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
