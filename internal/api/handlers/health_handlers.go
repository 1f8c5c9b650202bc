package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bridgeport-service/bridgeport/internal/infrastructure/cache"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// HealthHandlers reports service health.
type HealthHandlers struct {
	db     *sqlx.DB
	redis  cache.RedisClient
	logger *logger.Logger
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(db *sqlx.DB, redis cache.RedisClient, log *logger.Logger) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis, logger: log}
}

// Health checks the service's dependencies and reports per-component
// status. Any degraded component turns the overall status unhealthy and
// the response into a 503.
func (h *HealthHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		components["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		components["database"] = gin.H{"status": "healthy"}
	}

	if err := h.redis.Ping(ctx); err != nil {
		components["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		components["redis"] = gin.H{"status": "healthy"}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready is the lightweight readiness probe.
func (h *HealthHandlers) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
