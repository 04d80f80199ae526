package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"pulse/analytics"
	"pulse/config"
	"pulse/models"
	"pulse/services"
	"pulse/utils"
)

type Handler struct {
	Cfg       *config.Config
	Cache     *services.CacheService
	Collector *services.Collector
	Analytics *services.AnalyticsService
	Mongo     *services.MongoDBService
}

func NewHandler(cfg *config.Config, cache *services.CacheService, collector *services.Collector, analytics *services.AnalyticsService, mongo *services.MongoDBService) *Handler {
	return &Handler{
		Cfg:       cfg,
		Cache:     cache,
		Collector: collector,
		Analytics: analytics,
		Mongo:     mongo,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetNodes godoc
// @Summary Get all nodes with pagination
// @Description Returns a paginated list of all known nodes
// @Tags nodes
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 50, max: 500)"
// @Param status query string false "Filter by liveness (active, inactive)"
// @Param sort query string false "Sort field (storage, uptime, peers, last_seen)"
// @Param order query string false "Sort order (asc, desc) (default: desc)"
// @Success 200 {object} NodesResponse
// @Router /api/nodes [get]
func (h *Handler) GetNodes(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	statusFilter := c.QueryParam("status")
	sortField := c.QueryParam("sort")
	sortOrder := c.QueryParam("order")
	if sortOrder == "" {
		sortOrder = "desc"
	}

	// Cache first, registry as fallback
	nodes, stale, found := h.Cache.GetNodes(false)
	if !found {
		nodes, stale, found = h.Cache.GetNodes(true)
	}
	if !found {
		nodes = h.Collector.GetNodes()
	}

	// Filter by liveness
	if statusFilter != "" {
		filtered := make([]*models.Node, 0, len(nodes))
		for _, n := range nodes {
			if (statusFilter == "active") == n.IsActive {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	sortNodes(nodes, sortField, sortOrder)

	total := len(nodes)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	if stale {
		c.Response().Header().Set("X-Data-Stale", "true")
	}

	return c.JSON(http.StatusOK, NodesResponse{
		Nodes:      nodes[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

type NodesResponse struct {
	Nodes      []*models.Node `json:"nodes"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func sortNodes(nodes []*models.Node, field, order string) {
	less := func(a, b *models.Node) bool { return a.ID < b.ID }

	switch field {
	case "storage":
		less = func(a, b *models.Node) bool {
			return nodeStorage(a) < nodeStorage(b)
		}
	case "uptime":
		less = func(a, b *models.Node) bool {
			return nodeUptime(a) < nodeUptime(b)
		}
	case "peers":
		less = func(a, b *models.Node) bool {
			return a.PeerCount < b.PeerCount
		}
	case "last_seen":
		less = func(a, b *models.Node) bool {
			return a.LastSeen.Before(b.LastSeen)
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if order == "asc" {
			return less(nodes[i], nodes[j])
		}
		return less(nodes[j], nodes[i])
	})
}

func nodeStorage(n *models.Node) int64 {
	if n.Metrics == nil {
		return 0
	}
	return n.Metrics.StorageBytes
}

func nodeUptime(n *models.Node) int64 {
	if n.Metrics == nil || n.Metrics.UptimeSeconds == nil {
		return 0
	}
	return *n.Metrics.UptimeSeconds
}

// GetNode godoc
// @Summary Get a single node
// @Tags nodes
// @Produce json
// @Param id path string true "Node ID"
// @Success 200 {object} NodeDetailResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/nodes/{id} [get]
func (h *Handler) GetNode(c echo.Context) error {
	id := c.Param("id")

	node, _, found := h.Cache.GetNode(id, true)
	if !found {
		node, found = h.Collector.GetNode(id)
	}
	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "node not found"})
	}

	resp := NodeDetailResponse{Node: node}
	if node.Version != "" {
		status, needsUpgrade, severity := utils.CheckVersionStatus(node.Version, nil)
		resp.VersionStatus = status
		resp.NeedsUpgrade = needsUpgrade
		resp.VersionSeverity = severity
		if needsUpgrade {
			resp.UpgradeMessage = utils.GetUpgradeMessage(node.Version, nil)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

type NodeDetailResponse struct {
	*models.Node
	VersionStatus   string `json:"version_status,omitempty"`
	VersionSeverity string `json:"version_severity,omitempty"`
	NeedsUpgrade    bool   `json:"needs_upgrade"`
	UpgradeMessage  string `json:"upgrade_message,omitempty"`
}

// GetNodeMetrics godoc
// @Summary Get a node's metric history
// @Tags nodes
// @Produce json
// @Param id path string true "Node ID"
// @Param days query int false "Lookback window in days (default: 7)"
// @Param aggregation query string false "raw, hourly or daily (default: hourly)"
// @Success 200 {object} NodeMetricsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/nodes/{id}/metrics [get]
func (h *Handler) GetNodeMetrics(c echo.Context) error {
	id := c.Param("id")
	days := queryDays(c, 7)

	agg := c.QueryParam("aggregation")
	if agg == "" {
		agg = analytics.AggregationHourly
	}
	if !analytics.ValidAggregation(agg) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid aggregation: " + agg})
	}

	points, err := h.Analytics.NodeMetricHistory(c.Request().Context(), id, days, agg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, NodeMetricsResponse{
		NodeID:      id,
		Days:        days,
		Aggregation: agg,
		Points:      points,
	})
}

type NodeMetricsResponse struct {
	NodeID      string               `json:"node_id"`
	Days        int                  `json:"days"`
	Aggregation string               `json:"aggregation"`
	Points      []models.MetricPoint `json:"points"`
}

// queryDays parses the days query param with a default and sane bounds.
func queryDays(c echo.Context, def int) int {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = def
	}
	if days > 365 {
		days = 365
	}
	return days
}

// GetStatus returns backend status
func (h *Handler) GetStatus(c echo.Context) error {
	nodes := h.Collector.GetNodes()

	active := 0
	for _, n := range nodes {
		if n.IsActive {
			active++
		}
	}

	status := map[string]interface{}{
		"status":      "running",
		"known_nodes": len(nodes),
		"active":      active,
		"cache_mode":  string(h.Cache.GetCacheMode()),
		"timestamp":   time.Now(),
	}

	if h.Mongo.Enabled() {
		if dbStats, err := h.Mongo.GetDatabaseStats(c.Request().Context()); err == nil {
			status["database"] = dbStats
		}
	}

	return c.JSON(http.StatusOK, status)
}

// GetHealth returns OK
func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
