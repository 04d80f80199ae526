package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pulse/services"
)

type HistoryHandlers struct {
	history *services.HistoryService
}

func NewHistoryHandlers(history *services.HistoryService) *HistoryHandlers {
	return &HistoryHandlers{history: history}
}

// GetNetworkHistory - GET /api/history/network?hours=24
func (h *HistoryHandlers) GetNetworkHistory(c echo.Context) error {
	hours := 24
	if raw := c.QueryParam("hours"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			hours = v
		}
	}
	if hours > 24*90 {
		hours = 24 * 90
	}

	snapshots := h.history.GetNetworkHistory(hours)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"hours":     hours,
		"count":     len(snapshots),
		"snapshots": snapshots,
	})
}
