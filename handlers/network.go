package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulse/analytics"
)

// GetOverview godoc
// @Summary Get network overview
// @Description Returns node counts, version distribution and aggregate gauges
// @Tags network
// @Produce json
// @Success 200 {object} models.NetworkOverview
// @Router /api/network/overview [get]
func (h *Handler) GetOverview(c echo.Context) error {
	overview, stale, found := h.Cache.GetNetworkOverview(false)
	if !found {
		overview, stale, found = h.Cache.GetNetworkOverview(true)
	}

	if !found {
		// Cache cold: compute directly from the registry.
		fresh := analytics.BuildNetworkOverview(h.Collector.GetNodes(), time.Now())
		overview = &fresh
		stale = false
	}

	setCacheHeaders(c, stale)
	return c.JSON(http.StatusOK, overview)
}

// GetStats godoc
// @Summary Get detailed network statistics
// @Description Returns CPU/RAM percentile breakdowns, storage and uptime aggregates
// @Tags network
// @Produce json
// @Success 200 {object} models.NetworkStats
// @Router /api/network/stats [get]
func (h *Handler) GetStats(c echo.Context) error {
	stats, stale, found := h.Cache.GetNetworkStats(false)
	if !found {
		stats, stale, found = h.Cache.GetNetworkStats(true)
	}

	if !found {
		fresh := analytics.BuildNetworkStats(h.Collector.GetNodes())
		stats = &fresh
		stale = false
	}

	setCacheHeaders(c, stale)
	return c.JSON(http.StatusOK, stats)
}

func setCacheHeaders(c echo.Context, stale bool) {
	if stale {
		c.Response().Header().Set("X-Data-Stale", "true")
		c.Response().Header().Set("Cache-Control", "max-age=30")
	} else {
		c.Response().Header().Set("Cache-Control", "max-age=60")
	}
}
