package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// Pinger reports whether the generation backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	backend Pinger
}

// NewHealthHandler creates the health handler. backend may be nil, in which
// case readiness only reflects the process itself.
func NewHealthHandler(backend Pinger) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready, probing the generation backend.
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if h.backend != nil {
		if err := h.backend.Ping(ctx); err != nil {
			c.JSON(503, utils.H{
				"status":    "not_ready",
				"assistant": "unhealthy",
				"error":     err.Error(),
			})
			return
		}
	}
	c.JSON(200, utils.H{
		"status":    "ready",
		"assistant": "healthy",
	})
}
