package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/models"
	"github.com/DannyP4/ecommerce-funiro/session"
	"github.com/DannyP4/ecommerce-funiro/shipping"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItem adds a product to the session cart or changes its quantity.
// The unit price is remembered at add-time for display; order items are
// re-priced from the product at checkout.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}
		if product.Stock != nil && *product.Stock < input.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for product: " + product.Name})
			return
		}

		scope := session.FromContext(c)
		cart := session.CartFrom(scope)
		cart[product.ID] = session.Line{Quantity: input.Quantity, Price: product.Price}
		session.PutCart(scope, cart)
		if err := scope.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"product_id": product.ID, "quantity": input.Quantity})
	}
}

// GetCart returns the cart lines with a shipping quote for the running total.
func GetCart(policy shipping.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := session.FromContext(c)
		cart := session.CartFrom(scope)

		lines := make([]gin.H, 0, len(cart))
		shippingLines := make([]shipping.Line, 0, len(cart))
		for id, line := range cart {
			lines = append(lines, gin.H{
				"product_id": id,
				"quantity":   line.Quantity,
				"price":      line.Price,
			})
			shippingLines = append(shippingLines, shipping.Line{Quantity: line.Quantity, Price: line.Price})
		}
		quote := policy.Quote(shipping.Subtotal(shippingLines))

		c.JSON(http.StatusOK, gin.H{
			"items":        lines,
			"subtotal":     quote.Subtotal,
			"shipping_fee": quote.ShippingFee,
			"total":        quote.Total,
		})
	}
}

// DeleteCartItem removes one product from the session cart.
func DeleteCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		scope := session.FromContext(c)
		cart := session.CartFrom(scope)
		if _, ok := cart[uint(productID)]; !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		delete(cart, uint(productID))
		session.PutCart(scope, cart)
		if err := scope.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// ClearCart empties the session cart.
func ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := session.FromContext(c)
		scope.Forget(session.CartKey)
		if err := scope.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
