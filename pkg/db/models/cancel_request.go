package models

import (
	"time"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// CancelRequest tracks a customer's pending request to cancel an order.
// At most one pending request may exist per order.
type CancelRequest struct {
	ID          int64                     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID     int64                     `gorm:"column:order_id;not null;index" json:"order_id"`
	UserID      int64                     `gorm:"column:user_id;not null;index" json:"user_id"`
	Reason      string                    `gorm:"column:reason;not null" json:"reason"`
	Status      enums.CancelRequestStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	AdminNote   *string                   `gorm:"column:admin_note" json:"admin_note,omitempty"`
	ProcessedBy *string                   `gorm:"column:processed_by" json:"processed_by,omitempty"`
	ProcessedAt *time.Time                `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
