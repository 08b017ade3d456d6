package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness and dependency state
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. Each check runs with timeout.
func NewHealthHandler(checks map[string]HealthCheck, timeout time.Duration, log *zap.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{checks: checks, timeout: timeout, logger: log, now: time.Now}
}

// Health answers 200 when every check passes and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	components := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check(ctx)
		cancel()
		if err != nil {
			logger.L(c.Request.Context(), h.logger).Warn("Health check failed",
				zap.String("component", name),
				zap.Error(err),
			)
			components[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":     state,
		"time":       h.now().UTC().Format(time.RFC3339),
		"components": components,
	})
}
