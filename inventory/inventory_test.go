package inventory

import (
	"path/filepath"
	"sync"
	"testing"

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
	// One connection serializes concurrent test goroutines the way a
	// busy-handling production pool would.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, stock *int) models.Product {
	t.Helper()
	product := models.Product{
		Name:  "Oak Table",
		Price: decimal.NewFromInt(100),
		Stock: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func intPtr(v int) *int { return &v }

func stockOf(t *testing.T, db *gorm.DB, id uint) *int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.Stock
}

func TestReserveDecrements(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(5))

	require.NoError(t, Reserve(db, product.ID, 2))
	assert.Equal(t, 3, *stockOf(t, db, product.ID))
}

func TestReserveInsufficient(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(5))

	err := Reserve(db, product.ID, 10)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, product.ID, insufficient.ProductID)
	assert.Equal(t, 10, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Available)

	// Nothing was decremented.
	assert.Equal(t, 5, *stockOf(t, db, product.ID))
}

func TestReserveExactStock(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(5))

	require.NoError(t, Reserve(db, product.ID, 5))
	assert.Equal(t, 0, *stockOf(t, db, product.ID))

	err := Reserve(db, product.ID, 1)
	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
}

func TestReserveUnlimitedStock(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, nil)

	require.NoError(t, Reserve(db, product.ID, 1000))
	assert.Nil(t, stockOf(t, db, product.ID), "unlimited stock stays untouched")
}

func TestReserveMissingProduct(t *testing.T) {
	db := newTestDB(t)
	assert.ErrorIs(t, Reserve(db, 9999, 1), ErrProductNotFound)
}

func TestReserveInvalidQuantity(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(5))
	assert.Error(t, Reserve(db, product.ID, 0))
	assert.Error(t, Reserve(db, product.ID, -1))
	assert.Equal(t, 5, *stockOf(t, db, product.ID))
}

// Concurrent reservations summing past the available stock: exactly enough
// succeed to exhaust it, the rest fail, and stock never goes negative.
func TestReserveConcurrent(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(10))

	const workers = 25
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- Reserve(db, product.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		failed++
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, failed)
	assert.Equal(t, 0, *stockOf(t, db, product.ID))
}

func TestRelease(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, intPtr(3))

	require.NoError(t, Reserve(db, product.ID, 3))
	require.NoError(t, Release(db, product.ID, 3))
	assert.Equal(t, 3, *stockOf(t, db, product.ID))
}

func TestReleaseUnlimited(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db, nil)

	require.NoError(t, Release(db, product.ID, 4))
	assert.Nil(t, stockOf(t, db, product.ID))
}

func TestReleaseMissingProduct(t *testing.T) {
	db := newTestDB(t)
	assert.ErrorIs(t, Release(db, 9999, 1), ErrProductNotFound)
}
