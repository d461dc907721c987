package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// Coupon represents a discount code with global and per-user usage limits.
type Coupon struct {
	ID             int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code           string             `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Description    *string            `gorm:"column:description" json:"description,omitempty"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null" json:"discount_type"`
	DiscountValue  decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null" json:"discount_value"`
	MaxDiscount    *decimal.Decimal   `gorm:"column:max_discount;type:numeric(12,2)" json:"max_discount,omitempty"`
	MinOrderAmount decimal.Decimal    `gorm:"column:min_order_amount;type:numeric(12,2);not null;default:0" json:"min_order_amount"`
	Scope          enums.CouponScope  `gorm:"column:scope;type:text;not null;default:'all'" json:"scope"`
	AppliesToIDs   []int64            `gorm:"column:applies_to_ids;type:jsonb;serializer:json" json:"applies_to_ids,omitempty"`
	UsageLimit     *int               `gorm:"column:usage_limit" json:"usage_limit,omitempty"`
	UsageCount     int                `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	PerUserLimit   *int               `gorm:"column:per_user_limit" json:"per_user_limit,omitempty"`
	StartsAt       time.Time          `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt      time.Time          `gorm:"column:expires_at;not null" json:"expires_at"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
