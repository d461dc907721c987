package cancellations

import (
	"context"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// Repository persists cancel requests and reads the orders they refer to.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.CancelRequest) error
	FindByID(ctx context.Context, id int64) (*models.CancelRequest, error)
	HasPendingForOrder(ctx context.Context, orderID int64) (bool, error)
	// UpdateIfPending applies updates only while the request is still pending.
	// A false return means another writer resolved it first.
	UpdateIfPending(ctx context.Context, id int64, updates map[string]any) (bool, error)
	DeleteIfPending(ctx context.Context, id int64) (bool, error)
	FindOrder(ctx context.Context, orderID int64) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.CancelRequest, int64, error)
}
