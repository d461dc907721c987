package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// CartItem is the snapshot of one cart line handed to the validator.
type CartItem struct {
	ProductID int64
	Price     decimal.Decimal
	Quantity  int
}

// ValidationResult reports the outcome of checking a code against a cart.
// Business rejections set Valid=false with a reason; they are not errors.
type ValidationResult struct {
	Valid          bool            `json:"valid"`
	Message        string          `json:"message,omitempty"`
	CouponID       int64           `json:"coupon_id,omitempty"`
	Code           string          `json:"code,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// CreateCouponInput carries the admin-facing fields for a new coupon.
type CreateCouponInput struct {
	Code           string
	Description    *string
	DiscountType   enums.DiscountType
	DiscountValue  decimal.Decimal
	MaxDiscount    *decimal.Decimal
	MinOrderAmount decimal.Decimal
	Scope          enums.CouponScope
	AppliesToIDs   []int64
	UsageLimit     *int
	PerUserLimit   *int
	StartsAt       time.Time
	ExpiresAt      time.Time
}

// CouponList wraps one page of coupons for the admin listing.
type CouponList struct {
	Coupons []models.Coupon `json:"coupons"`
	Page    pagination.Page `json:"page"`
}
