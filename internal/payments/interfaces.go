package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// Repository persists payment rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID int64) (*models.Payment, error)
	// UpdateStatusIf applies updates only while the payment is still in one of
	// the given statuses. A false return means another writer moved it first.
	UpdateStatusIf(ctx context.Context, id int64, from []enums.PaymentStatus, updates map[string]any) (bool, error)
}
