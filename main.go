package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"pulse/config"
	"pulse/handlers"
	"pulse/middleware"
	"pulse/services"
	"pulse/utils"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("=== Configuration ===")
	log.Printf("Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Redis: %s", cfg.Redis.Address)
	log.Printf("MongoDB: %s (enabled=%v)", cfg.MongoDB.Database, cfg.MongoDB.Enabled)
	log.Printf("Polling: stats=%ds peers=%ds", cfg.Polling.StatsInterval, cfg.Polling.PeersInterval)

	// 2. Core Services
	geo := utils.NewGeoResolver(cfg.GeoIP.DBPath)
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg)
	if err != nil {
		log.Printf("⚠️  MongoDB connection failed: %v", err)
		log.Println("Historical analytics will be limited to the in-memory window")
		mongoService = services.NewDisabledMongoDBService()
	}
	defer mongoService.Close()

	cache := services.NewCacheService(cfg)
	collector := services.NewCollector(cfg, mongoService, geo)
	analyticsService := services.NewAnalyticsService(cfg, collector, mongoService, cache)
	historyService := services.NewHistoryService(cfg, collector, mongoService)

	// 3. Start Background Services
	log.Println("=== Starting Services ===")

	collector.Start()
	log.Println("✓ Collector started")

	cache.StartHealthLoop()
	log.Println("✓ Cache Service started")
	log.Printf("   Mode: %s", cache.GetCacheMode())

	analyticsService.Start()
	log.Println("✓ Analytics Service started")

	historyService.Start()
	log.Println("✓ History Service started")

	log.Println("=== All Services Running ===")

	// 4. Web Server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.LoggerMiddleware())
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic: %v", r)
					c.Error(fmt.Errorf("internal server error"))
				}
			}()
			return next(c)
		}
	})

	// 5. Handlers
	h := handlers.NewHandler(cfg, cache, collector, analyticsService, mongoService)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsService, historyService, mongoService)
	historyHandlers := handlers.NewHistoryHandlers(historyService)
	cacheHandlers := handlers.NewCacheHandlers(cache)

	// 6. Routes
	// System
	e.GET("/health", h.GetHealth)
	e.GET("/cache/status", cacheHandlers.GetCacheStatus)
	e.POST("/cache/clear", cacheHandlers.ClearCache)

	api := e.Group("/api")

	// Core endpoints
	api.GET("/status", h.GetStatus)
	api.GET("/nodes", h.GetNodes)
	api.GET("/nodes/:id", h.GetNode)
	api.GET("/nodes/:id/metrics", h.GetNodeMetrics)

	// Network endpoints
	network := api.Group("/network")
	network.GET("/overview", h.GetOverview)
	network.GET("/stats", h.GetStats)

	// Health scoring endpoints
	health := api.Group("/health")
	health.GET("/network", h.GetNetworkHealth)
	health.GET("/nodes/:id", h.GetNodeHealth)
	health.GET("/leaderboard", h.GetLeaderboard)

	// Analytics endpoints
	analytics := api.Group("/analytics")
	analytics.GET("/nodes/:id/baseline", analyticsHandlers.GetNodeBaseline)
	analytics.GET("/nodes/:id/deviations", analyticsHandlers.GetNodeDeviations)
	analytics.GET("/nodes/:id/degradation", analyticsHandlers.GetNodeDegradation)
	analytics.GET("/nodes/:id/recommendations", analyticsHandlers.GetNodeRecommendations)
	analytics.GET("/nodes/:id/peers", analyticsHandlers.GetNodePeers)
	analytics.GET("/peers", analyticsHandlers.GetNetworkPeers)
	analytics.GET("/forecast", analyticsHandlers.GetForecast)
	analytics.GET("/growth", analyticsHandlers.GetGrowth)
	analytics.GET("/storage-growth", analyticsHandlers.GetStorageGrowth)
	analytics.GET("/recently-joined", analyticsHandlers.GetRecentlyJoined)

	// History endpoints
	history := api.Group("/history")
	history.GET("/network", historyHandlers.GetNetworkHistory)

	// 7. Start Server with Graceful Shutdown
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		log.Printf("🚀 Server running on http://%s", serverAddr)

		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("shutting down the server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Graceful shutdown initiated...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop Background Services
	log.Println("Stopping services...")
	historyService.Stop()
	analyticsService.Stop()
	cache.Stop()
	collector.Stop()
	log.Println("✓ All services stopped")

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	log.Println("✓ Server exited cleanly")
}
