package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem captures the price snapshot of each item within an order.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   int64           `gorm:"column:product_id;not null;index" json:"product_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
