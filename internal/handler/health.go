package handler

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db          *sql.DB
	redisClient *goredis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, redisClient *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, redisClient: redisClient}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Health handles GET /health. Any dependency failure degrades the status
// rather than failing the endpoint.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := HealthResponse{Status: "healthy", Postgres: "up", Redis: "up"}

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Postgres = "down"
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		resp.Status = "degraded"
		resp.Redis = "down"
	}

	respondJSON(c, http.StatusOK, resp)
}
