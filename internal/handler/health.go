package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and the state of optional Redis.
type HealthHandler struct {
	Redis *redis.Client
}

// Health always answers 200 while the process serves requests.  Redis is
// reported as "disabled" when not configured and "down" when a ping fails;
// neither makes the service unhealthy.
func (h *HealthHandler) Health(c echo.Context) error {
	status := echo.Map{"status": "ok", "redis": "disabled"}
	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		status["redis"] = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		}
	}
	return c.JSON(http.StatusOK, status)
}
