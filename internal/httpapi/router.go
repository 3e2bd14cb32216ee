package httpapi

import (
	"net/http"

	"kickstep-be/internal/logger"
	"kickstep-be/internal/middleware"
	"kickstep-be/internal/payment/webhook"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Availability *AvailabilityHandler
	Cart         *CartHandler
	Orders       *OrderHandler
	Webhook      *webhook.Handler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.LoggingMiddleware())
	r.Use(middleware.AuthMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Callbacks authenticate by signature, not by user token.
	r.POST("/webhooks/payment", deps.Webhook.Handle)

	api := r.Group("/", middleware.RateLimit())
	{
		api.GET("/products/:id/availability", deps.Availability.Get)

		authed := api.Group("/", middleware.RequireAuth())
		{
			authed.GET("/cart", deps.Cart.List)
			authed.POST("/cart/lines", deps.Cart.AddLine)
			authed.PATCH("/cart/lines/:variantId", deps.Cart.SetQuantity)
			authed.DELETE("/cart/lines/:variantId", deps.Cart.RemoveLine)

			authed.POST("/checkout", middleware.RateLimitStrict(), deps.Orders.Checkout)

			authed.GET("/orders", deps.Orders.List)
			authed.GET("/orders/:id", deps.Orders.Get)
		}

		admin := api.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.PATCH("/orders/:id/status", deps.Orders.UpdateStatus)
			admin.GET("/metrics", deps.Orders.Metrics)
		}
	}

	return r
}
