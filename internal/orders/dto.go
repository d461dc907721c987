package orders

import (
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// CreateOrderItemInput is one requested cart line.
type CreateOrderItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	UserID          int64
	Items           []CreateOrderItemInput
	ShippingAddress string
	ReceiverPhone   string
	Note            *string
	CouponCode      *string
	PaymentMethod   enums.PaymentMethod
}

// UpdateStatusInput captures a requested status change and its actor.
type UpdateStatusInput struct {
	OrderID   int64
	To        enums.OrderStatus
	Reason    *string
	ChangedBy string
}

// ListFilters narrows order listings.
type ListFilters struct {
	UserID *int64
	Status *enums.OrderStatus
}

// OrderList wraps one page of orders.
type OrderList struct {
	Orders []models.Order  `json:"orders"`
	Page   pagination.Page `json:"page"`
}

// AutoConfirmResult reports the outcome of the sweep for one order.
type AutoConfirmResult struct {
	OrderID int64  `json:"order_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
