package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/DannyP4/ecommerce-funiro/controllers/cart"
	"github.com/DannyP4/ecommerce-funiro/middleware"
)

func SetupCartRoutes(r *gin.Engine, d Deps) {
	cart := r.Group("/cart")
	cart.Use(middleware.RequireAuth(d.Cfg.JWTSecret))
	{
		cart.GET("/", cartControllers.GetCart(d.Shipping))
		cart.POST("/items", cartControllers.UpdateCartItem(d.DB))
		cart.DELETE("/items/:product_id", cartControllers.DeleteCartItem())
		cart.DELETE("/", cartControllers.ClearCart())
	}
}
