package controllers

import (
	"net/http"
	"strings"

	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	"github.com/uteshop/uteshop-backend/internal/products"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

// ProductsList pages through the active catalog with optional category and
// search filters.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := products.ListFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		filters.CategoryID, err = validators.ParseQueryInt64(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductDetail returns one active product.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetDetail(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
