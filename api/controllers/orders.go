package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/uteshop/uteshop-backend/api/middleware"
	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string                   `json:"shipping_address" validate:"required"`
	ReceiverPhone   string                   `json:"receiver_phone" validate:"required"`
	Note            *string                  `json:"note,omitempty"`
	CouponCode      *string                  `json:"coupon_code,omitempty"`
	PaymentMethod   string                   `json:"payment_method" validate:"required,oneof=cod e_wallet"`
}

type updateOrderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason,omitempty"`
}

// OrdersCreate places a new order for the authenticated customer.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		items := make([]orders.CreateOrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, orders.CreateOrderItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			UserID:          middleware.UserIDFromContext(r.Context()),
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			ReceiverPhone:   req.ReceiverPhone,
			Note:            req.Note,
			CouponCode:      req.CouponCode,
			PaymentMethod:   method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersList returns the authenticated customer's orders, optionally filtered
// by status.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := orderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		filters.UserID = &userID

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrdersAdminList returns orders across all customers with optional status
// and user filters.
func OrdersAdminList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := orderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.UserID, err = validators.ParseQueryInt64(r, "user_id")
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

// OrderDetail returns one order with items, history, and payment. Customers
// only see their own orders; admins see everything.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetDetail(r.Context(), orderID,
			middleware.UserIDFromContext(r.Context()), middleware.IsAdmin(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderUpdateStatus moves an order along its lifecycle on behalf of an admin.
func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:   orderID,
			To:        status,
			Reason:    req.Reason,
			ChangedBy: "admin:" + strconv.FormatInt(middleware.UserIDFromContext(r.Context()), 10),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderListFilters(r *http.Request) (orders.ListFilters, error) {
	var filters orders.ListFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filters.Status = &status
	}
	return filters, nil
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive id").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
