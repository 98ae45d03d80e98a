package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/db"
	"github.com/Skotchmaster/videotube/internal/logging"
)

type HealthHandler struct {
	DB *gorm.DB
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Ready reports 503 until the database answers a ping.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := db.Ping(ctx, h.DB); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "error", err)
		return respond(c, http.StatusServiceUnavailable, nil, "database unavailable")
	}
	return respond(c, http.StatusOK, echo.Map{"db": "ok"}, "ready")
}
