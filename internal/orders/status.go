package orders

import (
	"time"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// transitions is the single canonical state machine for order statuses.
// Every status change in the system, whether driven by admins, the cancel
// workflow, payment webhooks, or the auto-confirm sweep, goes through
// Service.Transition, which consults this table and nothing else.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusNew:             {enums.OrderStatusConfirmed, enums.OrderStatusCancelled, enums.OrderStatusCancelRequested},
	enums.OrderStatusConfirmed:       {enums.OrderStatusPreparing, enums.OrderStatusCancelled, enums.OrderStatusCancelRequested},
	enums.OrderStatusPreparing:       {enums.OrderStatusShipping, enums.OrderStatusCancelled},
	enums.OrderStatusShipping:        {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:       {},
	enums.OrderStatusCancelled:       {},
	enums.OrderStatusCancelRequested: {enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
}

// CanTransition reports whether the table allows moving from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InstantCancelWindow bounds how long after placement a customer may cancel a
// still-new order without admin review. The auto-confirm sweep uses the same
// cutoff, so an order is either instantly cancellable or already eligible for
// confirmation, never both.
const InstantCancelWindow = 30 * time.Minute

// CancellableByCustomer reports whether the owner may cancel instantly,
// without going through admin review.
func CancellableByCustomer(order *models.Order, now time.Time) bool {
	if order == nil {
		return false
	}
	return order.Status == enums.OrderStatusNew && now.Sub(order.CreatedAt) < InstantCancelWindow
}
