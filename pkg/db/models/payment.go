package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// Payment records the single payment attempt attached to an order.
type Payment struct {
	ID              int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID         int64               `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	Method          enums.PaymentMethod `gorm:"column:method;type:text;not null" json:"method"`
	Status          enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	TransactionID   *string             `gorm:"column:transaction_id;uniqueIndex" json:"transaction_id,omitempty"`
	GatewayResponse *string             `gorm:"column:gateway_response" json:"-"`
	PaidAt          *time.Time          `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
