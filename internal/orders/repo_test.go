package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Payment{},
	))
	return conn
}

func seedDBProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          "USB-C Hub",
		Slug:          "usb-c-hub",
		Price:         decimal.RequireFromString("35"),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedDBOrder(t *testing.T, conn *gorm.DB, userID int64, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:          userID,
		Status:          status,
		Subtotal:        decimal.RequireFromString("35"),
		DiscountAmount:  decimal.Zero,
		TotalAmount:     decimal.RequireFromString("35"),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: "1 Vo Van Ngan",
		ReceiverPhone:   "0900000000",
	}
	require.NoError(t, conn.Create(order).Error)
	// gorm stamps created_at itself; backdate explicitly for window tests.
	require.NoError(t, conn.Model(order).Update("created_at", createdAt).Error)
	order.CreatedAt = createdAt
	return order
}

func TestDecrementStockGuard(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedDBProduct(t, conn, 2)

	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "guard must refuse once stock is exhausted")

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, product.ID).Error)
	assert.Equal(t, 0, reloaded.StockQuantity)
	assert.Equal(t, 2, reloaded.SoldCount)
}

func TestDecrementStockInactiveProduct(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedDBProduct(t, conn, 5)
	require.NoError(t, conn.Model(product).Update("is_active", false).Error)

	ok, err := repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateOrderIfStatusGuard(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedDBOrder(t, conn, 1, enums.OrderStatusNew, time.Now())

	ok, err := repo.UpdateOrderIfStatus(ctx, order.ID, enums.OrderStatusNew, map[string]any{
		"status": enums.OrderStatusCancelled,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// the row no longer holds status new; a second writer must lose
	ok, err = repo.UpdateOrderIfStatus(ctx, order.ID, enums.OrderStatusNew, map[string]any{
		"status": enums.OrderStatusConfirmed,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	var reloaded models.Order
	require.NoError(t, conn.First(&reloaded, order.ID).Error)
	assert.Equal(t, enums.OrderStatusCancelled, reloaded.Status)
}

func TestFindNewOrderIDsBeforeCutoff(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now()
	stale := seedDBOrder(t, conn, 1, enums.OrderStatusNew, now.Add(-time.Hour))
	seedDBOrder(t, conn, 1, enums.OrderStatusNew, now.Add(-time.Minute))
	seedDBOrder(t, conn, 1, enums.OrderStatusConfirmed, now.Add(-time.Hour))

	ids, err := repo.FindNewOrderIDsBefore(ctx, now.Add(-InstantCancelWindow))
	require.NoError(t, err)
	assert.Equal(t, []int64{stale.ID}, ids)
}

func TestListFiltersAndPagination(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		seedDBOrder(t, conn, 1, enums.OrderStatusNew, now.Add(-time.Duration(i)*time.Minute))
	}
	seedDBOrder(t, conn, 2, enums.OrderStatusConfirmed, now)

	userID := int64(1)
	orders, total, err := repo.List(ctx, ListFilters{UserID: &userID}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)

	status := enums.OrderStatusConfirmed
	orders, total, err = repo.List(ctx, ListFilters{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(2), orders[0].UserID)
}

func TestFindDetailPreloadsAssociations(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedDBProduct(t, conn, 5)
	order := seedDBOrder(t, conn, 1, enums.OrderStatusNew, time.Now())

	require.NoError(t, conn.Create(&models.OrderItem{
		OrderID:     order.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    1,
		LineTotal:   product.Price,
	}).Error)
	require.NoError(t, conn.Create(&models.OrderStatusHistory{
		OrderID:   order.ID,
		ToStatus:  enums.OrderStatusNew,
		ChangedBy: "user:1",
	}).Error)

	detail, err := repo.FindDetail(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, product.Name, detail.Items[0].ProductName)
	require.Len(t, detail.StatusHistory, 1)
	assert.Equal(t, enums.OrderStatusNew, detail.StatusHistory[0].ToStatus)
}
