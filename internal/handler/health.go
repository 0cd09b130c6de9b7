package handler

import (
	"net/http"

	"github.com/thoughtstream-ai/reasoning-platform/internal/audit"
	"github.com/thoughtstream-ai/reasoning-platform/internal/config"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cfg      *config.Config
	natsSink *audit.NATSSink // nil when the NATS audit transport is disabled
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *config.Config, natsSink *audit.NATSSink) *HealthHandler {
	return &HealthHandler{
		cfg:      cfg,
		natsSink: natsSink,
	}
}

// Root handles GET /: service metadata and the route set.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chain of Thought Streaming API",
		"version": "1.0.0",
		"status":  "healthy",
		"endpoints": map[string]string{
			"chat":        "/chat",
			"chat_stream": "/chat/stream",
			"health":      "/health",
			"metrics":     "/metrics",
		},
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"config": map[string]interface{}{
			"model_deployment":   h.cfg.AzureModelDeployment,
			"api_version":        h.cfg.AzureAPIVersion,
			"compliance_logging": h.cfg.EnableComplianceLogging,
		},
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.natsSink != nil && !h.natsSink.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS audit transport not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
