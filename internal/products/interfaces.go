package products

import (
	"context"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// Repository reads the product catalog.
type Repository interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}
