package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"ai-tools-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	backend string
	started time.Time
	timeout time.Duration
}

func NewHealthHandler(backend string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		backend: backend,
		started: time.Now(),
		timeout: 3 * time.Second,
	}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and its dependencies
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	response := models.HealthResponse{
		Status:   "ok",
		Checks:   make(map[string]string, len(names)),
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Artifact: h.backend,
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			response.Checks[name] = "error: " + err.Error()
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	c.JSON(status, response)
}
