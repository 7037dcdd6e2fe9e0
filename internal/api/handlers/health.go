package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nftadvisor/valuation-go/internal/database"
	"github.com/nftadvisor/valuation-go/internal/telemetry"
)

type HealthHandler struct {
	db    *database.PostgresDB
	redis *database.RedisClient
}

func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type healthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Services  healthServices          `json:"services"`
	Resources telemetry.ResourceStats `json:"resources"`
}

type healthServices struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health reports service status. The cache and report store degrade
// gracefully, so their outages mark the service degraded, not down.
func (h *HealthHandler) Health(c *gin.Context) {
	response := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Services:  healthServices{Database: "ok", Redis: "ok"},
		Resources: telemetry.CollectResourceStats(),
	}

	if h.db == nil || h.db.HealthCheck(c.Request.Context()) != nil {
		response.Services.Database = "error"
		response.Status = "degraded"
	}
	if h.redis.HealthCheck(c.Request.Context()) != nil {
		response.Services.Redis = "error"
		response.Status = "degraded"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}
