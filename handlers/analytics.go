package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulse/analytics"
	"pulse/services"
)

type AnalyticsHandlers struct {
	svc     *services.AnalyticsService
	history *services.HistoryService
	mongo   *services.MongoDBService
}

func NewAnalyticsHandlers(svc *services.AnalyticsService, history *services.HistoryService, mongo *services.MongoDBService) *AnalyticsHandlers {
	return &AnalyticsHandlers{svc: svc, history: history, mongo: mongo}
}

// GetNodeBaseline - GET /api/analytics/nodes/:id/baseline?metric=cpu_percent&days=7
func (h *AnalyticsHandlers) GetNodeBaseline(c echo.Context) error {
	id := c.Param("id")
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = services.MetricCPU
	}
	if !services.ValidMetric(metric) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown metric %q", metric),
		})
	}
	days := queryDays(c, 7)

	baseline, err := h.svc.NodeBaseline(c.Request().Context(), id, metric, days)
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, baseline)
}

// GetNodeDeviations - GET /api/analytics/nodes/:id/deviations?days=7
func (h *AnalyticsHandlers) GetNodeDeviations(c echo.Context) error {
	id := c.Param("id")
	days := queryDays(c, 7)

	deviations, err := h.svc.NodeDeviations(c.Request().Context(), id, days, time.Now())
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"node_id":    id,
		"days":       days,
		"deviations": deviations,
	})
}

// GetNodeDegradation - GET /api/analytics/nodes/:id/degradation?days=7
func (h *AnalyticsHandlers) GetNodeDegradation(c echo.Context) error {
	id := c.Param("id")
	days := queryDays(c, 7)

	indicators, err := h.svc.NodeDegradation(c.Request().Context(), id, days)
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "not enough samples for trend analysis",
			})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, indicators)
}

// GetNodeRecommendations - GET /api/analytics/nodes/:id/recommendations
func (h *AnalyticsHandlers) GetNodeRecommendations(c echo.Context) error {
	id := c.Param("id")

	recs, err := h.svc.NodeRecommendations(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"node_id":         id,
		"recommendations": recs,
	})
}

// GetNodePeers - GET /api/analytics/nodes/:id/peers
func (h *AnalyticsHandlers) GetNodePeers(c echo.Context) error {
	id := c.Param("id")

	analysis, err := h.svc.NodePeerAnalysis(c.Request().Context(), id, time.Now())
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, analysis)
}

// GetNetworkPeers - GET /api/analytics/peers
func (h *AnalyticsHandlers) GetNetworkPeers(c echo.Context) error {
	report, err := h.svc.NetworkPeerReport(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, report)
}

// GetForecast - GET /api/analytics/forecast?days=30
func (h *AnalyticsHandlers) GetForecast(c echo.Context) error {
	days := queryDays(c, 30)

	forecast, err := h.svc.NetworkForecast(c.Request().Context(), days, time.Now())
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "not enough history for a forecast",
			})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, forecast)
}

// GetGrowth - GET /api/analytics/growth?days=30
func (h *AnalyticsHandlers) GetGrowth(c echo.Context) error {
	days := queryDays(c, 30)

	report, comparison, err := h.svc.GrowthReport(c.Request().Context(), days, time.Now())
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "not enough history for growth modeling",
			})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"report":     report,
		"comparison": comparison,
	})
}

// GetStorageGrowth - GET /api/analytics/storage-growth?days=30
func (h *AnalyticsHandlers) GetStorageGrowth(c echo.Context) error {
	days := queryDays(c, 30)

	report, err := h.history.GetStorageGrowth(days)
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "not enough history yet",
			})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, report)
}

// GetRecentlyJoined - GET /api/analytics/recently-joined?days=7
func (h *AnalyticsHandlers) GetRecentlyJoined(c echo.Context) error {
	days := queryDays(c, 7)

	results, err := h.mongo.GetRecentlyJoinedNodes(c.Request().Context(), days)
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, results)
}
