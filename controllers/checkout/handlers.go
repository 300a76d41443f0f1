package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DannyP4/ecommerce-funiro/inventory"
	"github.com/DannyP4/ecommerce-funiro/middleware"
	"github.com/DannyP4/ecommerce-funiro/models"
	"github.com/DannyP4/ecommerce-funiro/session"
)

type DeliveryInfoRequest struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
	Country       string `json:"country" binding:"required"`
	City          string `json:"city" binding:"required"`
	District      string `json:"district" binding:"required"`
	Ward          string `json:"ward"`
}

type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// StoreDeliveryInfoHandler keeps the delivery info in the session for the
// current order only.
func (h *Checkout) StoreDeliveryInfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeliveryInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		scope := session.FromContext(c)
		session.PutDelivery(scope, session.Delivery{
			RecipientName: req.RecipientName,
			Email:         req.Email,
			PhoneNumber:   req.PhoneNumber,
			Country:       req.Country,
			City:          req.City,
			District:      req.District,
			Ward:          req.Ward,
		})
		if err := scope.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Delivery information saved"})
	}
}

// PlaceOrderHandler validates the session state and dispatches to the COD or
// VNPay flow.
func (h *Checkout) PlaceOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		method, err := models.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		scope := session.FromContext(c)
		cart := session.CartFrom(scope)
		if len(cart) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrCartEmpty.Error()})
			return
		}
		delivery, ok := session.DeliveryFrom(scope)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrDeliveryInfoMissing.Error()})
			return
		}

		switch method {
		case models.PaymentMethodCOD:
			order, err := h.PlaceOrderCOD(customerID, cart, delivery)
			if err != nil {
				respondCheckoutError(c, err)
				return
			}
			session.ClearCheckout(scope)
			if err := scope.Save(); err != nil {
				h.Log.WithError(err).Warn("failed to clear checkout session state")
			}
			c.JSON(http.StatusCreated, gin.H{
				"message":  "Order placed successfully",
				"order_id": order.ID,
			})

		case models.PaymentMethodVNPay:
			pay, order, err := h.PlaceOrderVNPay(customerID, cart, delivery, c.ClientIP())
			if err != nil {
				respondCheckoutError(c, err)
				return
			}
			// Cart stays in the session until the gateway confirms payment.
			c.JSON(http.StatusOK, gin.H{
				"order_id":    order.ID,
				"payment_url": pay.URL,
				"txn_ref":     pay.TxnRef,
			})
		}
	}
}

// VNPayReturnHandler receives the gateway redirect back into the shop and
// reconciles the payment against the order.
func (h *Checkout) VNPayReturnHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		result, err := h.ReconcileCallback(customerID, c.Request.URL.Query())
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		if result.Success && !result.Replayed {
			scope := session.FromContext(c)
			session.ClearCheckout(scope)
			if err := scope.Save(); err != nil {
				h.Log.WithError(err).Warn("failed to clear checkout session state")
			}
		}

		if result.Success {
			c.JSON(http.StatusOK, gin.H{
				"message":        "Payment successful. Your order has been placed.",
				"order_id":       result.Order.ID,
				"status":         result.Order.Status,
				"payment_status": result.Order.PaymentStatus,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Payment failed: " + result.Message,
			"order_id":       result.Order.ID,
			"status":         result.Order.Status,
			"payment_status": result.Order.PaymentStatus,
		})
	}
}

// respondCheckoutError maps domain errors onto HTTP responses.
func respondCheckoutError(c *gin.Context, err error) {
	var validation *ValidationError
	var notFound *ProductNotFoundError
	var insufficient *inventory.InsufficientStockError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusConflict, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{"error": insufficient.Error()})
	case errors.Is(err, inventory.ErrProductNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "A product in your cart is no longer available"})
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment response"})
	case errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, ErrOrderOwnershipMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Order does not belong to this customer"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process checkout"})
	}
}
