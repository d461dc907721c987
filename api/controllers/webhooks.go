package controllers

import (
	"net/http"

	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/internal/payments"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type paymentWebhookRequest struct {
	OrderID         int64   `json:"order_id" validate:"required,gt=0"`
	Status          string  `json:"status" validate:"required,oneof=completed failed cancelled"`
	TransactionID   *string `json:"transaction_id,omitempty"`
	GatewayResponse *string `json:"gateway_response,omitempty"`
}

// PaymentWebhook ingests gateway notifications for e-wallet payments. The
// payment record is settled first; the order then follows: a completed payment
// confirms it, a failed or cancelled one cancels it. Replayed deliveries lose
// the status guard on the payment row and come back as a conflict.
func PaymentWebhook(paySvc payments.Service, orderSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentWebhookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		payment, err := paySvc.GetByOrderID(r.Context(), req.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err = paySvc.UpdateStatus(r.Context(), payments.UpdateStatusInput{
			PaymentID:       payment.ID,
			Status:          status,
			TransactionID:   req.TransactionID,
			GatewayResponse: req.GatewayResponse,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderStatus := enums.OrderStatusCancelled
		reason := "payment " + status.String()
		if status == enums.PaymentStatusCompleted {
			orderStatus = enums.OrderStatusConfirmed
		}

		if _, err := orderSvc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:   req.OrderID,
			To:        orderStatus,
			Reason:    &reason,
			ChangedBy: "system",
		}); err != nil {
			// The payment already settled; an order that moved on (for
			// example an admin confirmed it first) is not a delivery failure.
			if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if logg != nil {
				ctx := logg.WithOrderID(r.Context(), req.OrderID)
				logg.Warn(ctx, "payment settled but order transition skipped")
			}
		}

		responses.WriteSuccess(w, payment)
	}
}
