package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rcerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/render"
	"github.com/vango-dev/reconcile/pkg/scenario"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Server serves a scenario: a rendered page, the per-client mutation
// stream, recorded snapshots, health and metrics.
type Server struct {
	file       *scenario.File
	config     *Config
	logger     *slog.Logger
	collector  *metrics.Collector
	gatherer   prometheus.Gatherer
	middleware []func(http.Handler) http.Handler
	player     []scenario.Option
	upgrader   websocket.Upgrader
	router     chi.Router

	// base is cancelled by Shutdown and ends every session.
	base   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
	sessions   map[string]*session
	wg         sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records session, patch and transition metrics on c and
// serves g on the configured metrics path.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.collector = c
		s.gatherer = g
	}
}

// WithMiddleware adds HTTP middleware in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.middleware = append(s.middleware, mw...) }
}

// WithPlayerOptions passes options to every player the server creates.
func WithPlayerOptions(opts ...scenario.Option) Option {
	return func(s *Server) { s.player = append(s.player, opts...) }
}

// New creates a Server for f. A nil config selects DefaultConfig.
func New(f *scenario.File, config *Config, opts ...Option) *Server {
	config = config.withDefaults()
	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		file:     f,
		config:   config,
		logger:   slog.Default().With("component", "server"),
		base:     base,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(s.middleware...)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/snapshots", s.handleSnapshots)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.mu.Lock()
	if s.base.Err() != nil {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown ends every session and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.cancel()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Error("sessions did not stop", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// initialTree builds the tree of the first render step, or nil.
func (s *Server) initialTree() (*vdom.VNode, error) {
	for _, step := range s.file.Steps {
		if step.Render == "" {
			continue
		}
		node, err := s.file.Tree(step.Render)
		if err != nil {
			return nil, err
		}
		return node.Build(), nil
	}
	return nil, nil
}

// handlePage streams the document with the first rendered tree. A client
// clears the mount element when it receives the Hello frame.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	tree, err := s.initialTree()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	page := render.PageData{
		Body:   tree,
		Title:  s.file.Name,
		Socket: "/ws",
	}
	if page.Title == "" {
		page.Title = "reconcile"
	}
	if css := s.file.CSS(); css != "" {
		page.Styles = []string{css}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sr := render.NewStreamingRenderer(w, render.RendererConfig{})
	if err := sr.RenderPage(page); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

// handleSnapshots plays the scenario on a virtual clock and returns the
// recorded snapshots as JSON.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	p, err := scenario.NewPlayer(s.file, append([]scenario.Option{scenario.WithLogger(s.logger)}, s.player...)...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	snaps, err := p.Play(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if snaps == nil {
		snaps = []scenario.Snapshot{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snaps); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.Sessions(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(rcerrors.FromError(err, "E402").FormatJSON()))
}

func (s *Server) track(ss *session) {
	s.mu.Lock()
	s.sessions[ss.id] = ss
	s.mu.Unlock()
	if s.collector != nil {
		s.collector.ClientConnected()
	}
}

func (s *Server) untrack(ss *session) {
	s.mu.Lock()
	delete(s.sessions, ss.id)
	s.mu.Unlock()
	if s.collector != nil {
		s.collector.ClientDisconnected()
	}
}

func (s *Server) wsError(kind string) {
	if s.collector != nil {
		s.collector.WebSocketError(kind)
	}
}
