package coupons

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
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Coupon{},
		&models.CouponUsage{},
	))
	return conn
}

func seedCoupon(t *testing.T, conn *gorm.DB, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:           "SAVE10",
		DiscountType:   enums.DiscountTypePercentage,
		DiscountValue:  decimal.RequireFromString("10"),
		MinOrderAmount: decimal.Zero,
		Scope:          enums.CouponScopeAll,
		StartsAt:       time.Now().Add(-time.Hour),
		ExpiresAt:      time.Now().Add(time.Hour),
		IsActive:       true,
	}
	if mutate != nil {
		mutate(coupon)
	}
	require.NoError(t, conn.Create(coupon).Error)
	return coupon
}

func TestFindActiveByCodeUppercasesAndFiltersInactive(t *testing.T) {
	conn := setupCouponsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedCoupon(t, conn, nil)

	found, err := repo.FindActiveByCode(ctx, "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", found.Code)

	require.NoError(t, conn.Model(&models.Coupon{}).Where("code = ?", "SAVE10").Update("is_active", false).Error)
	_, err = repo.FindActiveByCode(ctx, "SAVE10")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIncrementUsageIfUnderLimit(t *testing.T) {
	conn := setupCouponsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	limit := 2
	coupon := seedCoupon(t, conn, func(c *models.Coupon) {
		c.UsageLimit = &limit
	})

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsageIfUnderLimit(ctx, coupon.ID)
		require.NoError(t, err)
		assert.True(t, ok, "increment %d should pass", i+1)
	}

	ok, err := repo.IncrementUsageIfUnderLimit(ctx, coupon.ID)
	require.NoError(t, err)
	assert.False(t, ok, "third increment must hit the guard")

	var reloaded models.Coupon
	require.NoError(t, conn.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 2, reloaded.UsageCount)
}

func TestIncrementUsageUnlimitedCoupon(t *testing.T) {
	conn := setupCouponsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	coupon := seedCoupon(t, conn, nil)

	for i := 0; i < 5; i++ {
		ok, err := repo.IncrementUsageIfUnderLimit(ctx, coupon.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestCountUsagesByUser(t *testing.T) {
	conn := setupCouponsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	coupon := seedCoupon(t, conn, nil)

	for orderID := int64(1); orderID <= 3; orderID++ {
		require.NoError(t, repo.InsertUsage(ctx, &models.CouponUsage{
			CouponID:       coupon.ID,
			UserID:         9,
			OrderID:        orderID,
			DiscountAmount: decimal.RequireFromString("5"),
		}))
	}
	require.NoError(t, repo.InsertUsage(ctx, &models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         10,
		OrderID:        4,
		DiscountAmount: decimal.RequireFromString("5"),
	}))

	count, err := repo.CountUsagesByUser(ctx, coupon.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestFindProductCategoryIDs(t *testing.T) {
	conn := setupCouponsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := &models.Category{Name: "Laptops", Slug: "laptops", IsActive: true}
	require.NoError(t, conn.Create(category).Error)
	product := &models.Product{
		CategoryID:    category.ID,
		Name:          "ThinkPad",
		Slug:          "thinkpad",
		Price:         decimal.RequireFromString("1500"),
		StockQuantity: 3,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(product).Error)

	categories, err := repo.FindProductCategoryIDs(ctx, []int64{product.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{product.ID: category.ID}, categories)

	empty, err := repo.FindProductCategoryIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
