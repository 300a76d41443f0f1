package adminControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/models"
)

// RevenueReportHandler exports the day's paid, non-cancelled orders as an
// xlsx workbook. The date query parameter defaults to today.
func RevenueReportHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		day := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
			day = parsed
		}
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		to := from.AddDate(0, 0, 1)

		var orders []models.Order
		if err := db.
			Where("payment_status = ? AND status <> ?", models.PaymentStatusPaid, models.OrderStatusCancelled).
			Where("order_date >= ? AND order_date < ?", from, to).
			Preload("Customer").
			Preload("Items").
			Preload("Items.Product").
			Order("order_date DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Revenue " + from.Format("2006-01-02"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"OrderID", "Customer", "OrderDate", "Status", "PaymentMethod",
			"Items", "ShippingFee", "TotalCost",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		totalRevenue := decimal.Zero
		for _, order := range orders {
			itemCount := 0
			for _, item := range order.Items {
				itemCount += item.Quantity
			}

			row := sheet.AddRow()
			row.AddCell().SetValue(order.ID)
			row.AddCell().SetValue(order.Customer.Name)
			row.AddCell().SetValue(order.OrderDate.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(string(order.Status))
			row.AddCell().SetValue(string(order.PaymentMethod))
			row.AddCell().SetValue(itemCount)
			row.AddCell().SetValue(order.ShippingFee.String())
			row.AddCell().SetValue(order.TotalCost.String())

			totalRevenue = totalRevenue.Add(order.TotalCost)
		}

		summaryRow := sheet.AddRow()
		summaryRow.AddCell().SetValue("Total")
		for i := 0; i < len(headers)-2; i++ {
			summaryRow.AddCell()
		}
		summaryRow.AddCell().SetValue(totalRevenue.String())

		c.Header("Content-Disposition", "attachment; filename=revenue-"+from.Format("2006-01-02")+".xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
