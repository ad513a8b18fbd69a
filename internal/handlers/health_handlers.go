package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relist/internal/repositories"
)

type HealthHandlers struct {
	db repositories.DB
}

func NewHealthHandlers(db repositories.DB) *HealthHandlers {
	return &HealthHandlers{db: db}
}

func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the database connection.
func (h *HealthHandlers) Ready(c echo.Context) error {
	var one int
	if err := h.db.QueryRow(c.Request().Context(), "SELECT 1").Scan(&one); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
