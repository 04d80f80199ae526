package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulse/services"
)

type CacheHandlers struct {
	cache *services.CacheService
}

func NewCacheHandlers(cache *services.CacheService) *CacheHandlers {
	return &CacheHandlers{cache: cache}
}

// GetCacheStatus - GET /cache/status
func (h *CacheHandlers) GetCacheStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cache.GetCacheStats())
}

// ClearCache - POST /cache/clear
func (h *CacheHandlers) ClearCache(c echo.Context) error {
	if err := h.cache.ClearCache(); err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "cleared",
		"cache_mode": string(h.cache.GetCacheMode()),
		"timestamp":  time.Now().UTC(),
	})
}
