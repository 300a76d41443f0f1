package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DannyP4/ecommerce-funiro/middleware"
)

func SetupCheckoutRoutes(r *gin.Engine, d Deps) {
	checkout := r.Group("/checkout")
	checkout.Use(middleware.RequireAuth(d.Cfg.JWTSecret))
	{
		// Delivery info for the current order, held in the session
		checkout.POST("/delivery-info", d.Checkout.StoreDeliveryInfoHandler())

		// Place the order (COD or VNPay redirect)
		checkout.POST("/", d.Checkout.PlaceOrderHandler())

		// Gateway return URL, verified and reconciled against the order
		checkout.GET("/vnpay/return", d.Checkout.VNPayReturnHandler())
	}
}
