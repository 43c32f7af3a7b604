package api

import (
	"net/http"
	"time"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
)

// HealthSource reports aggregate and per-component health.
type HealthSource interface {
	IsHealthy() bool
	Components() map[string]bool
}

type HealthHandler struct {
	src HealthSource
}

func NewHealthHandler(src HealthSource) *HealthHandler {
	return &HealthHandler{src: src}
}

type healthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
	Timestamp  string          `json:"timestamp"`
}

// CheckHealth handles GET /api/health. It always answers 200 and reports
// status in the body.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	components := map[string]bool{}
	if h.src == nil || !h.src.IsHealthy() {
		status = "unhealthy"
	}
	if h.src != nil {
		components = h.src.Components()
	}
	respond.WriteJSON(w, http.StatusOK, healthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
