package routes

import (
	"github.com/gin-gonic/gin"

	productControllers "github.com/DannyP4/ecommerce-funiro/controllers/product"
)

func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")
	{
		products.GET("/", productControllers.GetProductsHandler(d.DB))
		products.GET("/:productID", productControllers.GetProductHandler(d.DB))
	}
}
