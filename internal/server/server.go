// Package server exposes the keep-alive HTTP endpoints the hosting platform
// probes, plus operational metrics.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

// Server provides health, metrics and alert inspection endpoints.
type Server struct {
	store  storage.Storage
	mux    *http.ServeMux
	logger *slog.Logger
}

// New creates the HTTP server.
func New(store storage.Storage, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.handleRoot)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("flight alert bot running"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var err error
	var alerts any
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		var ownerID int64
		ownerID, err = strconv.ParseInt(owner, 10, 64)
		if err != nil {
			http.Error(w, "invalid owner_id", http.StatusBadRequest)
			return
		}
		alerts, err = s.store.ListByOwner(ctx, ownerID)
	} else {
		alerts, err = s.store.ListActive(ctx)
	}
	if err != nil {
		s.logger.Error("list alerts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}
