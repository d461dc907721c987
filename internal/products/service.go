package products

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// Service exposes the read-only catalog surface used by cart building.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductList, error)
	GetDetail(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductList, error) {
	products, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductList{
		Products: products,
		Page:     pagination.NewPage(params, total),
	}, nil
}

// GetDetail returns one product. Inactive products read as missing so delisted
// items disappear from the storefront without a hard delete.
func (s *service) GetDetail(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
