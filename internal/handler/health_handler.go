package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

var startTime = time.Now()

// PingFunc checks a dependency.
type PingFunc func(ctx context.Context) error

// ReferenceCounter reports how many reference rows exist per kind.
type ReferenceCounter interface {
	CountByKind(ctx context.Context) (map[models.ReferenceKind]int, error)
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks  map[string]PingFunc
	counter ReferenceCounter
}

// NewHealthHandler creates a new HealthHandler. counter may be nil.
func NewHealthHandler(checks map[string]PingFunc, counter ReferenceCounter) *HealthHandler {
	return &HealthHandler{checks: checks, counter: counter}
}

// GetHealth responds with dependency status and reference counts.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	deps := gin.H{}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			healthy = false
			deps[name] = gin.H{"status": "disconnected", "error": err.Error()}
			continue
		}
		deps[name] = gin.H{"status": "connected"}
	}

	data := gin.H{
		"status":       "healthy",
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	}
	if h.counter != nil {
		if counts, err := h.counter.CountByKind(ctx); err == nil {
			data["references"] = counts
		}
	}

	if !healthy {
		data["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, utils.Response{
			Success: false,
			Code:    http.StatusServiceUnavailable,
			Message: "Service is degraded",
			Data:    data,
		})
		return
	}
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
