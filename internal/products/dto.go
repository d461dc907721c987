package products

import (
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// ListFilters narrows the catalog listing.
type ListFilters struct {
	CategoryID *int64
	Search     string
}

// ProductList is one page of the catalog.
type ProductList struct {
	Products []models.Product `json:"products"`
	Page     pagination.Page  `json:"page"`
}
