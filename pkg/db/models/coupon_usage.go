package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponUsage records one redemption of a coupon against an order.
type CouponUsage struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CouponID       int64           `gorm:"column:coupon_id;not null;index:idx_coupon_usages_coupon_user" json:"coupon_id"`
	UserID         int64           `gorm:"column:user_id;not null;index:idx_coupon_usages_coupon_user" json:"user_id"`
	OrderID        int64           `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null" json:"discount_amount"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
