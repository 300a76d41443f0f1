package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/DannyP4/ecommerce-funiro/controllers/order"
	"github.com/DannyP4/ecommerce-funiro/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth(d.Cfg.JWTSecret))
	{
		// The customer's own orders
		orders.GET("/", orderControllers.GetMyOrdersHandler(d.DB))
		orders.GET("/:orderID", orderControllers.GetOrderHandler(d.DB))

		// Customer-initiated cancel (pending orders only)
		orders.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(d.DB))
	}
}
