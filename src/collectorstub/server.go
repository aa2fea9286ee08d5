// Package collectorstub is a stand-in for the dashboard collector API. It
// accepts every create request, remembers the payloads and answers with
// quoted record ids the way the real collector does. Useful for trying a
// job configuration locally and for end-to-end tests.
package collectorstub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/metrics"
)

// Payload is one request body the stub accepted.
type Payload struct {
	ID   string
	Path string
	Body json.RawMessage
}

// Server is the stub collector.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	token   string
	log     logger.Logger
	metrics metrics.Recorder

	mu       sync.Mutex
	received []Payload
	failures map[string]int   // path -> status to answer with
	items    map[string][]any // collector item type -> items
}

// Option configures a Server.
type Option func(*Server)

// WithToken makes the stub reject requests without "apiToken <token>".
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger logs each accepted payload.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics counts accepted and rejected payloads per path.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Server) { s.metrics = r }
}

// New creates a stub listening on addr once Start is called. The routes
// live under /api, matching the collector's default context path.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      logger.NewSilentLogger(),
		metrics:  metrics.NoopRecorder{},
		failures: make(map[string]int),
		items:    make(map[string][]any),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.authorize)

		r.Get(collector.PathPing, s.handlePing)
		r.Get(collector.PathCollectorItems+"{type}", s.handleItems)

		for _, path := range []string{
			collector.PathBuild,
			collector.PathArtifact,
			collector.PathTest,
			collector.PathStaticAnalysis,
			collector.PathDeploy,
		} {
			r.Post(path, s.handleCreate(path))
		}
	})
}

// Handler returns the stub's HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// FailWith makes every later request to path (e.g. "/artifact") answer code.
func (s *Server) FailWith(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = code
}

// AddItem registers a collector item returned for its type.
func (s *Server) AddItem(itemType string, item any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemType] = append(s.items[itemType], item)
}

// Received returns the accepted payloads for path in arrival order, or all
// payloads when path is empty.
func (s *Server) Received(path string) []Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Payload
	for _, p := range s.received {
		if path == "" || p.Path == path {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "apiToken "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]any{}, s.items[chi.URLParam(r, "type")]...)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (s *Server) handleCreate(path string) http.HandlerFunc {
	kind := strings.TrimPrefix(path, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		code, fail := s.failures[path]
		s.mu.Unlock()
		if fail {
			s.metrics.IncPublishResult(kind, metrics.ResultFailed)
			http.Error(w, http.StatusText(code), code)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(body) {
			s.metrics.IncPublishResult(kind, metrics.ResultFailed)
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		id := uuid.NewString()
		s.mu.Lock()
		s.received = append(s.received, Payload{ID: id, Path: path, Body: body})
		s.mu.Unlock()

		s.metrics.IncPublishResult(kind, metrics.ResultCreated)
		s.log.Info("accepted %s %s", path, id)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"` + id + `"`))
	}
}
