package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uteshop/uteshop-backend/api/middleware"
	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	"github.com/uteshop/uteshop-backend/internal/coupons"
	"github.com/uteshop/uteshop-backend/internal/products"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type validateCouponRequest struct {
	Code  string                   `json:"code" validate:"required"`
	Items []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createCouponRequest struct {
	Code           string           `json:"code" validate:"required"`
	Description    *string          `json:"description,omitempty"`
	DiscountType   string           `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue  decimal.Decimal  `json:"discount_value" validate:"required"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	Scope          string           `json:"scope" validate:"omitempty,oneof=all category product"`
	AppliesToIDs   []int64          `json:"applies_to_ids,omitempty"`
	UsageLimit     *int             `json:"usage_limit,omitempty" validate:"omitempty,gt=0"`
	PerUserLimit   *int             `json:"per_user_limit,omitempty" validate:"omitempty,gt=0"`
	StartsAt       time.Time        `json:"starts_at" validate:"required"`
	ExpiresAt      time.Time        `json:"expires_at" validate:"required"`
}

// CouponValidate prices a coupon against the customer's cart without redeeming
// it. Cart lines are repriced server-side from the live catalog.
func CouponValidate(svc coupons.Service, catalog products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := make([]coupons.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			product, err := catalog.GetDetail(r.Context(), item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			cart = append(cart, coupons.CartItem{
				ProductID: product.ID,
				Price:     product.EffectivePrice(),
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.Validate(r.Context(), req.Code, middleware.UserIDFromContext(r.Context()), cart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CouponCreate registers a new discount code on behalf of an admin.
func CouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(req.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		scope := enums.CouponScopeAll
		if req.Scope != "" {
			scope, err = enums.ParseCouponScope(req.Scope)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
		}

		coupon, err := svc.CreateCoupon(r.Context(), coupons.CreateCouponInput{
			Code:           req.Code,
			Description:    req.Description,
			DiscountType:   discountType,
			DiscountValue:  req.DiscountValue,
			MaxDiscount:    req.MaxDiscount,
			MinOrderAmount: req.MinOrderAmount,
			Scope:          scope,
			AppliesToIDs:   req.AppliesToIDs,
			UsageLimit:     req.UsageLimit,
			PerUserLimit:   req.PerUserLimit,
			StartsAt:       req.StartsAt,
			ExpiresAt:      req.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// CouponList pages through all coupons for admin review.
func CouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCoupons(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
