package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/snapshot"
)

// Status is the part of the watcher the endpoints report on.
type Status interface {
	Running() bool
	Snapshot() snapshot.View
}

type Server struct {
	status Status
	logger *zap.Logger
}

func NewServer(status Status, logger *zap.Logger) *Server {
	return &Server{
		status: status,
		logger: logger,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

// Health reports liveness and whether the poll timer is active.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Running: s.status.Running(),
	})
}

// Snapshot returns the last observed value of every cached resource.
func (s *Server) Snapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("writing response", zap.Error(err))
	}
}
