package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	healthHandler := handlers.NewHealthHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	capacityHandler := handlers.NewCapacityHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade, facade)

	engine.GET("/health", healthHandler.Health)
	engine.POST("/webhook", checkoutHandler.Webhook)

	api := engine.Group("/api")
	api.POST("/cart/estimate", checkoutHandler.Estimate)
	api.POST("/checkout/session", checkoutHandler.Session)
	api.POST("/orders", checkoutHandler.PlaceOrder)
	api.GET("/capacity", capacityHandler.Status)
	api.GET("/capacity/remaining", capacityHandler.Remaining)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AdminRequired(facade))
	adminAuth.GET("/orders", adminHandler.Orders)
	adminAuth.GET("/orders/:id", adminHandler.Order)
	adminAuth.POST("/orders/:id/resend", adminHandler.Resend)
	adminAuth.GET("/subscribers", adminHandler.Subscribers)

	return engine
}
