package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridcast-dev/gridcast/pkg/canvas"
	"github.com/gridcast-dev/gridcast/pkg/hub"
	"github.com/gridcast-dev/gridcast/pkg/life"
	"github.com/gridcast-dev/gridcast/pkg/middleware"
	"github.com/gridcast-dev/gridcast/pkg/snapshot"
)

// liveExportColor renders live cells in snapshot exports.
var liveExportColor = [3]uint8{0, 0, 0}

// Deps are the shared components the server operates on. All of them are
// constructed once at startup and owned by the caller.
type Deps struct {
	Engine     *life.Engine
	Dispatcher *canvas.Dispatcher
	Hub        *hub.Hub

	// Snapshots is the optional export backend. Nil disables export.
	Snapshots snapshot.Store
}

// Server is the HTTP/WebSocket server for gridcast.
type Server struct {
	config  *Config
	deps    Deps
	logger  *slog.Logger
	metrics *Metrics

	router     chi.Router
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a server over the given dependencies.
func New(cfg *Config, deps Deps) *Server {
	cfg = cfg.withDefaults()
	logger := slog.Default().With("component", "server")

	// The server owns its own registry so metrics never collide across
	// instances.
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, deps.Hub)

	s := &Server{
		config:  cfg,
		deps:    deps,
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestMetrics(
		middleware.WithNamespace(namespace),
		middleware.WithRegistry(registry),
	))
	r.Use(middleware.Trace(middleware.WithRequestFilter(func(req *http.Request) bool {
		return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
	})))
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/snapshot.png", s.handleSnapshotPNG)
	r.Post("/snapshot/export", s.handleSnapshotExport)
	if cfg.StaticDir != "" {
		r.Handle("/*", &staticHandler{dir: cfg.StaticDir})
	}
	s.router = r

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully: the HTTP
// listener stops, the hub closes, and every connection's pumps unwind.
func (s *Server) Run(ctx context.Context) error {
	driverCtx, cancelDriver := context.WithCancel(ctx)
	defer cancelDriver()
	if s.config.DriverInterval > 0 {
		d := &driver{
			hub:        s.deps.Hub,
			dispatcher: s.deps.Dispatcher,
			interval:   s.config.DriverInterval,
			autoStep:   s.config.DriverAutoStep,
			logger:     s.logger.With("component", "driver"),
			metrics:    s.metrics,
		}
		go d.run(driverCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.deps.Hub.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)

	// Shutdown does not touch hijacked WebSocket connections; closing the
	// hub ends every outbound pump, which unwinds each connection.
	s.deps.Hub.Close()

	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}

// handleWS upgrades the request and runs the connection to completion.
// The upgrade handshake itself stays in this layer; the connection only
// ever sees an established socket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	conn := newConn(ws, s.deps.Hub, s.deps.Dispatcher, s.config, s.logger, s.metrics)
	conn.run(context.Background())
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleSnapshotPNG renders the current simulation state as a PNG.
func (s *Server) handleSnapshotPNG(w http.ResponseWriter, _ *http.Request) {
	frame := snapshot.Frame{
		Width:  s.deps.Engine.Width(),
		Height: s.deps.Engine.Height(),
		RGB:    s.deps.Engine.FrameRGB(liveExportColor),
	}
	data, err := frame.PNG()
	if err != nil {
		s.logger.Error("snapshot render failed", "error", err)
		http.Error(w, "snapshot render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleSnapshotExport saves the current frame to the configured export
// backend and returns the object key.
func (s *Server) handleSnapshotExport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Snapshots == nil {
		http.Error(w, snapshot.ErrNoStore.Error(), http.StatusServiceUnavailable)
		return
	}

	frame := snapshot.Frame{
		Width:  s.deps.Engine.Width(),
		Height: s.deps.Engine.Height(),
		RGB:    s.deps.Engine.FrameRGB(liveExportColor),
	}
	data, err := frame.PNG()
	if err != nil {
		s.logger.Error("snapshot render failed", "error", err)
		http.Error(w, "snapshot render failed", http.StatusInternalServerError)
		return
	}

	key := snapshot.Key(time.Now())
	if err := s.deps.Snapshots.Save(r.Context(), key, data); err != nil {
		s.logger.Error("snapshot export failed", "error", err, "key", key)
		http.Error(w, "snapshot export failed", http.StatusBadGateway)
		return
	}

	s.logger.Info("snapshot exported", "key", key)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"key": key})
}
