package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/database"
)

// HealthHandler reports dependency status
type HealthHandler struct {
	db    *database.Client
	cache *cache.Client
}

// NewHealthHandler creates a health handler. cacheClient may be nil.
func NewHealthHandler(db *database.Client, cacheClient *cache.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheClient}
}

// Check godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "disabled"}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	pool := h.db.Stats()
	status["db_open_connections"] = strconv.Itoa(pool.OpenConnections)
	status["db_in_use"] = strconv.Itoa(pool.InUse)

	if h.cache != nil {
		status["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			// the cache is optional
			status["redis"] = "unavailable"
		}
	}

	return c.JSON(code, status)
}

