package adminControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/models"
)

// DashboardHandler returns the order counters and revenue figures shown on
// the admin dashboard. Revenue counts orders that reached delivering or
// delivered.
func DashboardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusApproved,
			models.OrderStatusRejected,
			models.OrderStatusDelivering,
			models.OrderStatusDelivered,
			models.OrderStatusCancelled,
		}

		counts := make(map[string]int64, len(statuses))
		for _, status := range statuses {
			var n int64
			if err := db.Model(&models.Order{}).Where("status = ?", status).Count(&n).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
				return
			}
			counts[string(status)] = n
		}

		var paidLastWeek int64
		weekAgo := time.Now().AddDate(0, 0, -7)
		if err := db.Model(&models.Order{}).
			Where("payment_status = ? AND order_date >= ?", models.PaymentStatusPaid, weekAgo).
			Count(&paidLastWeek).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
			return
		}

		var revenue decimal.Decimal
		if err := db.Model(&models.Order{}).
			Where("status IN ?", []models.OrderStatus{models.OrderStatusDelivering, models.OrderStatusDelivered}).
			Select("COALESCE(SUM(total_cost), 0)").
			Scan(&revenue).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders_by_status":      counts,
			"paid_orders_last_week": paidLastWeek,
			"total_revenue":         revenue,
		})
	}
}
