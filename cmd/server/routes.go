package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"homestash/internal/auth"
	"homestash/internal/catalog"
	"homestash/internal/config"
	"homestash/internal/inventory"
	"homestash/internal/media"
	"homestash/internal/search"
	"homestash/pkg/middleware"
)

type routerDeps struct {
	cfg          *config.Config
	redisClient  *redis.Client
	authService  *auth.Service
	authHandler  *auth.Handler
	catalog      *catalog.Handler
	search       *search.Handler
	inventory    *inventory.Handler
	mediaHandler *media.Handler
}

func buildRouter(deps routerDeps) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "inventory-catalog"})
	})

	api := router.Group("/api")
	api.Use(deps.authService.Middleware())
	if deps.redisClient != nil {
		limiter := middleware.NewRateLimiter(deps.redisClient, deps.cfg.RateLimitPerMinute)
		api.Use(limiter.Limit())
	}

	api.POST("/auth/login", deps.authHandler.Login)

	api.GET("/meta", deps.catalog.Meta)
	api.GET("/tags/search", deps.catalog.SearchTags)
	api.GET("/item-group/search", deps.catalog.SearchGroups)
	api.GET("/locations/search", deps.catalog.SearchLocations)
	api.POST("/tags", deps.catalog.CreateTag)
	api.POST("/locations", deps.catalog.CreateLocation)
	api.POST("/batteries", deps.catalog.CreateBattery)
	api.POST("/item-group", deps.catalog.UpsertGroup)

	items := api.Group("/items")
	deps.search.RegisterRoutes(items)
	items.POST("", deps.inventory.UpsertItem)
	items.DELETE("", deps.inventory.DeleteItem)

	if deps.mediaHandler != nil {
		items.PUT("/:id/photo", deps.mediaHandler.UploadItemPhoto)
		items.GET("/:id/photo", deps.mediaHandler.GetItemPhoto)
	}

	return router
}
