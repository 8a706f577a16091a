package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/shopcompare-api/internal/app"
	"github.com/windoze95/shopcompare-api/internal/handlers"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/middleware"
	"github.com/windoze95/shopcompare-api/internal/ws"
)

// SetupRouter sets up the Gin router.
func SetupRouter(a *app.App) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origins := a.Config.EnvVars.CorsOrigins; len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, logger.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	searchHandler := handlers.NewSearchHandler(a.Search)
	historyHandler := handlers.NewHistoryHandler(a.History)
	catalogHandler := handlers.NewCatalogHandler(a.Catalog)

	// Searches may hit the AI provider, so HTTP and WebSocket searches share
	// one per-IP budget.
	searchLimiter := middleware.NewIPRateLimiter(a.Config.EnvVars.RateLimitRPS, 10*time.Minute)
	go searchLimiter.RunCleanup(context.Background(), time.Minute)
	limitSearch := searchLimiter.Middleware()

	api := r.Group("/v1")
	{
		// Search-related routes

		// Run a search
		api.GET("/search", limitSearch, searchHandler.Search)
		// Get the recent search history
		api.GET("/history", historyHandler.GetHistory)
		// Re-run a search from the history
		api.POST("/history/:index/search", limitSearch, searchHandler.SearchHistoryEntry)

		// Reference data

		api.GET("/platforms", catalogHandler.ListPlatforms)
		api.GET("/catalog", catalogHandler.ListCatalog)
	}

	// WebSocket search sessions; every recorded search is pushed to all of them.
	hub := ws.NewHub()
	go hub.Run()
	a.History.OnChange(hub.BroadcastHistory)
	sessionHandler := ws.NewSearchHandler(hub, a.Search, a.History, a.Config.EnvVars.CorsOrigins)
	sessionHandler.Limiter = searchLimiter
	r.GET("/v1/ws/search", sessionHandler.HandleSearchSession)

	return r
}
