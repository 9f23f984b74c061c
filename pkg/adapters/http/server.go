package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/ports"
	"github.com/aretw0/boardom/pkg/snapshot"
)

// Server exposes stored snapshots and dispatch metrics over HTTP.
type Server struct {
	Store    ports.SnapshotStore
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewHandler creates the HTTP handler:
//
//	GET    /healthz
//	GET    /snapshots           JSON list of snapshot ids
//	GET    /snapshots/{id}      the snapshot as YAML
//	DELETE /snapshots/{id}
//	GET    /metrics             Prometheus exposition, when a gatherer is set
func NewHandler(store ports.SnapshotStore, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Store: store, Gatherer: gatherer, Logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.ListSnapshots)
		r.Get("/{id}", s.GetSnapshot)
		r.Delete("/{id}", s.DeleteSnapshot)
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListSnapshots handles GET /snapshots.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, "list snapshots", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"ids": ids}); err != nil {
		s.Logger.Warn("failed to write response", "err", err)
	}
}

// GetSnapshot handles GET /snapshots/{id}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Store.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "load snapshot", err)
		return
	}
	data, err := snapshot.Marshal(snap)
	if err != nil {
		s.fail(w, "encode snapshot", err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	if _, err := w.Write(data); err != nil {
		s.Logger.Warn("failed to write response", "err", err)
	}
}

// DeleteSnapshot handles DELETE /snapshots/{id}.
func (s *Server) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUsage):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}
