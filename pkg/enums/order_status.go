package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusPreparing       OrderStatus = "preparing"
	OrderStatusShipping        OrderStatus = "shipping"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusCancelRequested OrderStatus = "cancel_requested"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusCancelRequested,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
