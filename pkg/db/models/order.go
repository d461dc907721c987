package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// Order represents a customer order and its money totals.
type Order struct {
	ID              int64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID          int64                `gorm:"column:user_id;not null;index" json:"user_id"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'new';index" json:"status"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal      `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	CouponID        *int64               `gorm:"column:coupon_id;index" json:"coupon_id,omitempty"`
	CouponCode      *string              `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'cod'" json:"payment_method"`
	ShippingAddress string               `gorm:"column:shipping_address;not null" json:"shipping_address"`
	ReceiverPhone   string               `gorm:"column:receiver_phone;not null" json:"receiver_phone"`
	Note            *string              `gorm:"column:note" json:"note,omitempty"`
	ConfirmedAt     *time.Time           `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt     *time.Time           `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
	Payment         *Payment             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment,omitempty"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
