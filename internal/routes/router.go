package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/backend"
	"almacen-front/internal/config"
	"almacen-front/internal/delivery/http/handler"
	"almacen-front/internal/middleware"
	"almacen-front/internal/scale"
	"almacen-front/internal/session"
	movementUC "almacen-front/internal/usecase/movement"
	reviewUC "almacen-front/internal/usecase/review"
)

func SetupRoutes(cfg *config.Config, store *session.Store, api *backend.Client, feed *scale.Feed) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	if cfg.RateLimit.GeneralRPS > 0 {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"logged_in": store.Valid(),
			"scale":     feed.Reading().Connected,
		})
	})

	movementService := movementUC.NewService(api, feed)
	reviewService := reviewUC.NewService(api, movementService.Catalog)

	authHandler := handler.NewAuthHandler(api, store)
	movementHandler := handler.NewMovementHandler(movementService)
	albaranHandler := handler.NewAlbaranHandler(api, store)
	reviewHandler := handler.NewReviewHandler(api, store, reviewService)
	panelHandler := handler.NewPanelHandler(feed, movementService, cfg.Scanner.Window)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.SessionGuard(store))
		{
			movementHandler.RegisterRoutes(protected)
			albaranHandler.RegisterRoutes(protected)
			reviewHandler.RegisterRoutes(protected)
			panelHandler.RegisterRoutes(protected)
		}
	}

	return router
}
