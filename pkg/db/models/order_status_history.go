package models

import (
	"time"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit trail of order transitions.
// FromStatus is null only for the row recording the initial status.
type OrderStatusHistory struct {
	ID         int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID    int64              `gorm:"column:order_id;not null;index" json:"order_id"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status;type:text" json:"from_status,omitempty"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;type:text;not null" json:"to_status"`
	Reason     *string            `gorm:"column:reason" json:"reason,omitempty"`
	ChangedBy  string             `gorm:"column:changed_by;not null" json:"changed_by"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
