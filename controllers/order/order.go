package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/middleware"
	"github.com/DannyP4/ecommerce-funiro/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusConflict means another write moved the order's status between
	// our read and our conditional update.
	ErrStatusConflict = errors.New("order status changed concurrently, please retry")
	// ErrNotCancellable rejects a customer cancel on an order that already
	// left the pending state.
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Core Logic --------

// ApplyStatusTransition validates newStatus against the transition table and
// applies it together with its audit record in one transaction. The current
// status is re-checked by the conditional update, so a concurrent transition
// (or a customer cancel) cannot be raced past. A no-op request returns the
// order unchanged and records nothing.
func ApplyStatusTransition(db *gorm.DB, orderID uint, newStatus models.OrderStatus, actor string) (*models.Order, bool, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}

	if order.Status == newStatus {
		return &order, false, nil
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, false, &models.InvalidTransitionError{From: order.Status, To: newStatus}
	}

	current := order.Status
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, current).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		event := models.StatusEvent{OrderID: orderID, Status: newStatus, Actor: actor}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, false, err
	}

	order.Status = newStatus
	return &order, true, nil
}

// CancelOrder is the customer-initiated path into the cancelled state,
// allowed from pending only. The pending guard is re-checked inside the
// transaction so an admin approval cannot be raced past.
func CancelOrder(db *gorm.DB, orderID, customerID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ? AND customer_id = ?", orderID, customerID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == models.OrderStatusCancelled {
		return &order, nil
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrNotCancellable
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		event := models.StatusEvent{
			OrderID: orderID,
			Status:  models.OrderStatusCancelled,
			Actor:   fmt.Sprintf("customer:%d", customerID),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	return &order, nil
}

// -------- Handlers --------

// GetMyOrdersHandler lists the authenticated customer's orders, most recent
// first, with items and delivery info eagerly attached.
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.
			Where("customer_id = ?", customerID).
			Preload("Items").
			Preload("Items.Product").
			Preload("DeliveryInfo").
			Order("order_date DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderHandler returns one of the customer's orders with the full
// aggregate loaded.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		var order models.Order
		if err := db.
			Where("id = ? AND customer_id = ?", orderID, customerID).
			Preload("Items").
			Preload("Items.Product").
			Preload("DeliveryInfo").
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// CancelOrderHandler lets the customer cancel a pending order.
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		order, err := CancelOrder(db, uint(orderID), customerID)
		if err != nil {
			switch {
			case errors.Is(err, ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			case errors.Is(err, ErrNotCancellable):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			case errors.Is(err, ErrStatusConflict):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order_id": order.ID, "status": order.Status})
	}
}

// GetAllOrdersHandler lists every order for the admin dashboard.
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.
			Preload("Customer").
			Preload("Items").
			Preload("Items.Product").
			Preload("DeliveryInfo").
			Order("order_date DESC")

		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseOrderStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("status = ?", parsed)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler applies an admin status transition.
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actor := fmt.Sprintf("admin:%d", adminID)
		order, changed, err := ApplyStatusTransition(db, uint(orderID), newStatus, actor)
		if err != nil {
			var invalid *models.InvalidTransitionError
			switch {
			case errors.Is(err, ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			case errors.As(err, &invalid):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error()})
			case errors.Is(err, ErrStatusConflict):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			}
			return
		}

		message := "Order status updated"
		if !changed {
			message = "Order status unchanged"
		}
		c.JSON(http.StatusOK, gin.H{"message": message, "order_id": order.ID, "status": order.Status})
	}
}

// GetStatusEventsHandler returns the audit trail for an order.
func GetStatusEventsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		var events []models.StatusEvent
		if err := db.
			Where("order_id = ?", orderID).
			Order("created_at ASC").
			Find(&events).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status events"})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}
