// Package router wires handlers onto the Hertz server.
package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/lvyanru/weather-apiserver/internal/handler"
	"github.com/lvyanru/weather-apiserver/internal/middleware"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	chatHandler *handler.ChatHandler,
	sessionHandler *handler.SessionHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	// Health check routes
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// Session resources
	apiV1 := h.Group("/api/v1")
	{
		sessions := apiV1.Group("/sessions")
		{
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.GET("/:id/history", sessionHandler.GetHistory)
			sessions.DELETE("/:id", sessionHandler.DeleteSession)
		}
	}

	// OpenAI-compatible API
	v1 := h.Group("/v1")
	{
		// POST /v1/chat/completions, streaming via "stream": true
		v1.POST("/chat/completions", chatHandler.CreateChatCompletion)
		// GET /v1/heartbeat: SSE liveness stream
		v1.GET("/heartbeat", chatHandler.Heartbeat)
	}
}
