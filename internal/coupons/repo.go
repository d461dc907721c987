package coupons

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Coupon, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

func (r *repository) CountUsagesByUser(ctx context.Context, couponID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *repository) InsertUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// IncrementUsageIfUnderLimit bumps usage_count atomically. The guarded update
// is what makes concurrent redemptions unable to overrun usage_limit.
func (r *repository) IncrementUsageIfUnderLimit(ctx context.Context, couponID int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET usage_count = usage_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)
	`, couponID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindProductCategoryIDs(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	if len(productIDs) == 0 {
		return map[int64]int64{}, nil
	}

	var rows []struct {
		ID         int64
		CategoryID int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "category_id").
		Where("id IN ?", productIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	categories := make(map[int64]int64, len(rows))
	for _, row := range rows {
		categories[row.ID] = row.CategoryID
	}
	return categories, nil
}
