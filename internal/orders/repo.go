package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindDetail(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_histories.id ASC")
		}).
		Preload("Payment").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateOrderIfStatus applies updates only while the order still holds the
// expected status. A false return means a concurrent transition won the row
// since it was loaded.
func (r *repository) UpdateOrderIfStatus(ctx context.Context, id int64, from enums.OrderStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindNewOrderIDsBefore(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND created_at <= ?", enums.OrderStatusNew, cutoff).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) FindProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock removes purchased quantity and bumps sold_count in one
// guarded statement. A false return means the product went inactive or ran
// out of stock since it was loaded.
func (r *repository) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?,
			sold_count = sold_count + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active AND stock_quantity >= ?
	`, qty, qty, productID, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
