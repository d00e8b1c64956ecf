package handlers

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"media-indexer/internal/indexer"
	"media-indexer/internal/logging"
	"media-indexer/internal/memory"
	"media-indexer/internal/middleware"
)

// StatusProvider reports the state of the current run. *indexer.Indexer
// implements it.
type StatusProvider interface {
	Status() indexer.Status
}

// Handlers serves the monitoring endpoints of a running indexer.
type Handlers struct {
	status  StatusProvider
	memory  *memory.Monitor
	started time.Time
}

// New returns Handlers for status. mon may be nil.
func New(status StatusProvider, mon *memory.Monitor) *Handlers {
	return &Handlers{status: status, memory: mon, started: time.Now()}
}

// NewRouter registers every endpoint on a new router.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/status", h.GetStatus).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)

	return r
}

// NewHandler returns the router wrapped in request logging and metrics.
func NewHandler(h *Handlers) http.Handler {
	router := NewRouter(h)
	instrumented := middleware.Metrics(middleware.DefaultMetricsConfig())(router)
	return middleware.Logger(middleware.DefaultLoggingConfig())(instrumented)
}

// Server is the optional monitoring HTTP server.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and starts serving in the background.
func Listen(addr string, h *Handlers) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           NewHandler(h),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
