package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"bidash/internal/services"
)

// HealthHandler answers liveness/readiness probes.
type HealthHandler struct {
	service   *services.DashboardService
	logger    *slog.Logger
	version   string
	startedAt time.Time
}

// NewHealthHandler creates the handler.
func NewHealthHandler(service *services.DashboardService, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		service:   service,
		logger:    logger,
		version:   version,
		startedAt: time.Now().UTC(),
	}
}

// HealthCheck reports overall status plus snapshot bookkeeping. The server
// is healthy even before the first load; readiness is what gates traffic.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	}
	if ds, err := h.service.Snapshot(); err == nil {
		resp["loaded_at"] = ds.LoadedAt
		resp["marketing_records"] = len(ds.Marketing)
		resp["business_records"] = len(ds.Business)
	} else {
		resp["loaded_at"] = nil
	}
	render.JSON(w, r, resp)
}

// ReadinessCheck fails until the first snapshot has loaded.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Snapshot(); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "loading"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ready"})
}

// LivenessCheck always succeeds while the process is serving.
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}
