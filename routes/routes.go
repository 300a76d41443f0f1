package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/config"
	checkoutControllers "github.com/DannyP4/ecommerce-funiro/controllers/checkout"
	orderControllers "github.com/DannyP4/ecommerce-funiro/controllers/order"
	"github.com/DannyP4/ecommerce-funiro/shipping"
)

// Deps bundles everything the route groups need.
type Deps struct {
	DB       *gorm.DB
	Cfg      config.Config
	Checkout *checkoutControllers.Checkout
	Hub      *orderControllers.Hub
	Shipping shipping.Policy
}

// SetupRoutes is the single entry point that wires up all route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// Public catalog
	SetupProductRoutes(r, d)

	// Customer routes (JWT-protected): cart, checkout, orders
	SetupCartRoutes(r, d)
	SetupCheckoutRoutes(r, d)
	SetupOrderRoutes(r, d)

	// Admin routes (JWT + admin role; report pull by API key)
	SetupAdminRoutes(r, d)
}
