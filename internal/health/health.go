// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package health is the mediator's small ambient ops HTTP surface:
// /healthz for liveness and /metrics for Prometheus scraping. It is
// not the TUI/CLI named in the Non-goals — just a process-health probe.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowmediator/mediator/internal/logging"
)

// Server is the health/metrics HTTP surface.
type Server struct {
	log    *logging.Logger
	router *mux.Router
	srv    *http.Server

	// Ready is consulted by /healthz; nil means always ready.
	Ready func() bool
}

// New builds a Server listening on addr, exporting reg's metrics at
// /metrics and liveness at /healthz.
func New(addr string, reg *prometheus.Registry, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	s := &Server{log: log.WithComponent("health"), router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	var metricsHandler http.Handler = promhttp.Handler()
	if reg != nil {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	s.router.Handle("/metrics", metricsHandler).Methods("GET")

	s.srv = &http.Server{Addr: addr, Handler: s.router}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ready := s.Ready == nil || s.Ready()
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Start begins serving in the background. A non-ErrServerClosed error
// from ListenAndServe is logged, not returned, matching the teacher's
// fire-and-forget control-plane HTTP server idiom.
func (s *Server) Start() {
	go func() {
		s.log.Info("starting health/metrics server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("health server error", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down within 5 seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
