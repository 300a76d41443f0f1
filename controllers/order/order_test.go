package orderControllers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DannyP4/ecommerce-funiro/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.StatusEvent{}))
	return db
}

func createOrder(t *testing.T, db *gorm.DB, customerID uint, status models.OrderStatus) models.Order {
	t.Helper()
	order := models.Order{
		CustomerID:    customerID,
		OrderDate:     time.Now(),
		ShippingFee:   decimal.NewFromInt(30000),
		TotalCost:     decimal.NewFromInt(230000),
		Status:        status,
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func auditTrail(t *testing.T, db *gorm.DB, orderID uint) []models.StatusEvent {
	t.Helper()
	var events []models.StatusEvent
	require.NoError(t, db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&events).Error)
	return events
}

func TestApplyStatusTransition(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 1, models.OrderStatusPending)

	updated, changed, err := ApplyStatusTransition(db, order.ID, models.OrderStatusApproved, "admin:7")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusApproved, updated.Status)

	events := auditTrail(t, db, order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, models.OrderStatusApproved, events[0].Status)
	assert.Equal(t, "admin:7", events[0].Actor)
}

func TestApplyStatusTransitionFullLifecycle(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 1, models.OrderStatusPending)

	for _, status := range []models.OrderStatus{
		models.OrderStatusApproved,
		models.OrderStatusDelivering,
		models.OrderStatusDelivered,
	} {
		_, changed, err := ApplyStatusTransition(db, order.ID, status, "admin:7")
		require.NoError(t, err)
		require.True(t, changed)
	}

	events := auditTrail(t, db, order.ID)
	require.Len(t, events, 3)
	assert.Equal(t, models.OrderStatusApproved, events[0].Status)
	assert.Equal(t, models.OrderStatusDelivering, events[1].Status)
	assert.Equal(t, models.OrderStatusDelivered, events[2].Status)
}

// Skipping a state is rejected and the error names what is allowed instead.
func TestApplyStatusTransitionSkipRejected(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 1, models.OrderStatusApproved)

	_, _, err := ApplyStatusTransition(db, order.ID, models.OrderStatusDelivered, "admin:7")
	var invalid *models.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), string(models.OrderStatusDelivering))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusApproved, stored.Status)
	assert.Empty(t, auditTrail(t, db, order.ID))
}

func TestApplyStatusTransitionTerminal(t *testing.T) {
	db := newTestDB(t)

	for _, terminal := range []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusRejected,
		models.OrderStatusCancelled,
	} {
		order := createOrder(t, db, 1, terminal)
		_, _, err := ApplyStatusTransition(db, order.ID, models.OrderStatusPending, "admin:7")
		var invalid *models.InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "from %s", terminal)
	}
}

// Re-asserting the current status succeeds without writing an audit record.
func TestApplyStatusTransitionNoOp(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 1, models.OrderStatusApproved)

	updated, changed, err := ApplyStatusTransition(db, order.ID, models.OrderStatusApproved, "admin:7")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.OrderStatusApproved, updated.Status)
	assert.Empty(t, auditTrail(t, db, order.ID))
}

func TestApplyStatusTransitionMissingOrder(t *testing.T) {
	db := newTestDB(t)
	_, _, err := ApplyStatusTransition(db, 9999, models.OrderStatusApproved, "admin:7")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrderFromPending(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 42, models.OrderStatusPending)

	cancelled, err := CancelOrder(db, order.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	events := auditTrail(t, db, order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, models.OrderStatusCancelled, events[0].Status)
	assert.Equal(t, "customer:42", events[0].Actor)
}

func TestCancelOrderAfterApprovalRejected(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 42, models.OrderStatusApproved)

	_, err := CancelOrder(db, order.ID, 42)
	assert.ErrorIs(t, err, ErrNotCancellable)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusApproved, stored.Status)
}

// Cancelling an already cancelled order is an idempotent success with no
// second audit record.
func TestCancelOrderIdempotent(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 42, models.OrderStatusPending)

	_, err := CancelOrder(db, order.ID, 42)
	require.NoError(t, err)

	again, err := CancelOrder(db, order.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
	assert.Len(t, auditTrail(t, db, order.ID), 1)
}

// A customer cannot cancel another customer's order; ownership is part of
// the lookup, so the order simply is not found.
func TestCancelOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	order := createOrder(t, db, 42, models.OrderStatusPending)

	_, err := CancelOrder(db, order.ID, 99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
