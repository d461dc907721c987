package coupons

import (
	"context"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// Repository defines persistence operations for coupon tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id int64) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	List(ctx context.Context, params pagination.Params) ([]models.Coupon, int64, error)
	CountUsagesByUser(ctx context.Context, couponID, userID int64) (int64, error)
	InsertUsage(ctx context.Context, usage *models.CouponUsage) error
	IncrementUsageIfUnderLimit(ctx context.Context, couponID int64) (bool, error)
	FindProductCategoryIDs(ctx context.Context, productIDs []int64) (map[int64]int64, error)
}
