package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/DannyP4/ecommerce-funiro/controllers/admin"
	orderControllers "github.com/DannyP4/ecommerce-funiro/controllers/order"
	"github.com/DannyP4/ecommerce-funiro/middleware"
)

func SetupAdminRoutes(r *gin.Engine, d Deps) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(d.Cfg.JWTSecret), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", adminControllers.DashboardHandler(d.DB))

		admin.GET("/orders", orderControllers.GetAllOrdersHandler(d.DB))
		admin.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatusHandler(d.DB))
		admin.GET("/orders/:orderID/events", orderControllers.GetStatusEventsHandler(d.DB))

		// Live feed of placed orders for the dashboard
		admin.GET("/orders/ws", d.Hub.WebSocketHandler())
	}

	// The scheduled reporting job authenticates with a shared API key.
	reports := r.Group("/reports")
	reports.Use(middleware.RequireAPIKey(d.Cfg.ReportAPIKey))
	{
		reports.GET("/revenue", adminControllers.RevenueReportHandler(d.DB))
	}
}
