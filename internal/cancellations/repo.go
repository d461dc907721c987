package cancellations

import (
	"context"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.CancelRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.CancelRequest, error) {
	var request models.CancelRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) HasPendingForOrder(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CancelRequest{}).
		Where("order_id = ? AND status = ?", orderID, enums.CancelRequestStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateIfPending(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CancelRequest{}).
		Where("id = ? AND status = ?", id, enums.CancelRequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteIfPending(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.CancelRequestStatusPending).
		Delete(&models.CancelRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.CancelRequest, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.CancelRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.CancelRequest
	err := query.
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
