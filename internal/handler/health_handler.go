package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
)

var startTime = time.Now()

// HealthHandler provides health endpoint.
type HealthHandler struct {
	registry *service.ProviderRegistry
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(registry *service.ProviderRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// GetHealth responds with service status and per-provider health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	providers := gin.H{}
	for _, client := range h.registry.All() {
		status := "connected"
		if !client.IsHealthy() {
			status = "disconnected"
		}
		providers[string(client.Code())] = status
	}

	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":    "healthy",
		"version":   "1.0.0",
		"uptime":    int(time.Since(startTime).Seconds()),
		"providers": providers,
	})
}
