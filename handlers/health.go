package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pulse/analytics"
	"pulse/models"
)

// GetNetworkHealth godoc
// @Summary Get network-wide health summary
// @Tags health
// @Produce json
// @Success 200 {object} models.NetworkHealthSummary
// @Router /api/health/network [get]
func (h *Handler) GetNetworkHealth(c echo.Context) error {
	summary, stale, found := h.Cache.GetNetworkHealth(false)
	if !found {
		summary, stale, found = h.Cache.GetNetworkHealth(true)
	}

	if !found {
		_, fresh := h.Analytics.ScoreAll()
		summary = &fresh
		stale = false
	}

	setCacheHeaders(c, stale)
	return c.JSON(http.StatusOK, summary)
}

// GetNodeHealth godoc
// @Summary Get one node's health score
// @Tags health
// @Produce json
// @Param id path string true "Node ID"
// @Success 200 {object} models.HealthScore
// @Failure 404 {object} ErrorResponse
// @Router /api/health/nodes/{id} [get]
func (h *Handler) GetNodeHealth(c echo.Context) error {
	id := c.Param("id")

	score, err := h.Analytics.NodeHealth(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, score)
}

// GetLeaderboard godoc
// @Summary Rank nodes by health score or a raw metric
// @Tags health
// @Produce json
// @Param metric query string false "Ranking metric: uptime, cpu, ram, storage (default: health score)"
// @Param order query string false "top or bottom (default: top)"
// @Param limit query int false "Max results (default: 25)"
// @Success 200 {object} LeaderboardResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/health/leaderboard [get]
func (h *Handler) GetLeaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 25
	}
	if limit > 200 {
		limit = 200
	}

	order := c.QueryParam("order")
	if order == "" {
		order = analytics.OrderTop
	}
	if !analytics.ValidRankOrder(order) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order: " + order})
	}

	if metric := c.QueryParam("metric"); metric != "" {
		if !analytics.ValidRankMetric(metric) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid metric: " + metric})
		}
		ranks := h.Analytics.MetricLeaderboard(metric, order, limit)
		return c.JSON(http.StatusOK, MetricLeaderboardResponse{
			Metric:  metric,
			Order:   order,
			Count:   len(ranks),
			Entries: ranks,
		})
	}

	scores := h.Analytics.Leaderboard(order, limit)

	return c.JSON(http.StatusOK, LeaderboardResponse{
		Count:   len(scores),
		Entries: scores,
	})
}

type LeaderboardResponse struct {
	Count   int                  `json:"count"`
	Entries []models.HealthScore `json:"entries"`
}

type MetricLeaderboardResponse struct {
	Metric  string            `json:"metric"`
	Order   string            `json:"order"`
	Count   int               `json:"count"`
	Entries []models.NodeRank `json:"entries"`
}
