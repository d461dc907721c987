package payments

import (
	"time"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

// UpdateStatusInput carries a requested payment status change, typically from
// the gateway webhook.
type UpdateStatusInput struct {
	PaymentID       int64
	Status          enums.PaymentStatus
	TransactionID   *string
	GatewayResponse *string
	PaidAt          *time.Time
}
