package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindDetail(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, id int64, updates map[string]any) error
	UpdateOrderIfStatus(ctx context.Context, id int64, from enums.OrderStatus, updates map[string]any) (bool, error)
	FindNewOrderIDsBefore(ctx context.Context, cutoff time.Time) ([]int64, error)
	FindProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
}
