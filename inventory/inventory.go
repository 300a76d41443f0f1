// Package inventory is the stock ledger. Reserve and Release are the only
// writers of product stock. Reservation is a single conditional update so
// that two concurrent checkouts can never both pass a read-time check and
// oversell; the conditional update is the concurrency control, no lock is
// exposed to callers.
package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/models"
)

// ErrProductNotFound is returned when the product does not exist.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError names the product that could not be reserved.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Reserve atomically decrements stock by qty if at least qty is available.
// Products with NULL stock are unlimited: reservation succeeds without a
// decrement. Must run inside the order transaction so a failed line rolls
// back the whole order.
func Reserve(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid reserve quantity %d for product %d", qty, productID)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("reserve stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// The guard did not match: the product is missing, unlimited, or short.
	var product models.Product
	if err := tx.Select("id", "stock").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	if product.Stock == nil {
		return nil // unlimited stock, nothing to decrement
	}
	return &InsufficientStockError{ProductID: productID, Requested: qty, Available: *product.Stock}
}

// Release returns previously reserved stock, for compensating refund or
// cancel flows. Unlimited-stock products are left untouched.
func Release(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid release quantity %d for product %d", qty, productID)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("release stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
	}
	return nil
}
