// Package server exposes the vessel engine as a JSON REST surface for
// renderers and editor frontends.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/chazu/mandrel/pkg/engine"
	"github.com/chazu/mandrel/pkg/kernel"
	sdfxkernel "github.com/chazu/mandrel/pkg/kernel/sdfx"
)

// shutdownGrace bounds how long in-flight requests may drain after a
// shutdown signal.
const shutdownGrace = 5 * time.Second

// Config carries the environment-driven knobs.
type Config struct {
	// DefaultSegments applies to requests that leave segments unset.
	// Zero keeps the engine default.
	DefaultSegments int
}

// Server routes build, metrics, validation and DSL evaluation requests
// onto the engine. One evaluation engine and one solid kernel are
// shared across requests; both are safe for concurrent use.
type Server struct {
	log    *logrus.Logger
	cfg    Config
	engine *engine.Engine
	kernel kernel.Kernel
	router *mux.Router
}

// New wires the routes and backing engine.
func New(log *logrus.Logger, cfg Config) *Server {
	s := &Server{
		log:    log,
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: sdfxkernel.New(),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tank", s.handleBuild).Methods("POST")
	api.HandleFunc("/metrics", s.handleMetrics).Methods("POST")
	api.HandleFunc("/validate", s.handleValidate).Methods("POST")
	api.HandleFunc("/eval", s.handleEval).Methods("POST")
	api.HandleFunc("/types", s.handleTypes).Methods("GET")
	api.HandleFunc("/types/{name}", s.handleType).Methods("GET")
	api.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router = r

	return s
}

// Handler returns the routed handler with CORS applied. Split out from
// Run so tests can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	return cors(s.router)
}

// cors allows any origin. The server renders no UI itself; browser
// frontends live on their own dev hosts.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves on addr until ctx is canceled, then drains connections
// within the shutdown grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("tank server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
