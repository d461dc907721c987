package controllers

import (
	"net/http"
	"strconv"

	"github.com/uteshop/uteshop-backend/api/middleware"
	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	"github.com/uteshop/uteshop-backend/internal/cancellations"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type createCancelRequestRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required"`
}

type processCancelRequestRequest struct {
	Status    string  `json:"status" validate:"required,oneof=approved rejected"`
	AdminNote *string `json:"admin_note,omitempty"`
}

// CancelRequestCreate files a cancellation request for one of the customer's
// orders. Fresh orders are cancelled on the spot; older ones go to review.
func CancelRequestCreate(svc cancellations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCancelRequestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), cancellations.CreateInput{
			OrderID: req.OrderID,
			UserID:  middleware.UserIDFromContext(r.Context()),
			Reason:  req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// CancelRequestWithdraw lets the customer retract a still-pending request.
func CancelRequestWithdraw(svc cancellations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Withdraw(r.Context(), requestID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"withdrawn": true})
	}
}

// CancelRequestList returns cancellation requests for admin review, optionally
// filtered by status.
func CancelRequestList(svc cancellations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters cancellations.ListFilters
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseCancelRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CancelRequestProcess approves or rejects a pending request, driving the
// underlying order to cancelled or back to confirmed.
func CancelRequestProcess(svc cancellations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req processCancelRequestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseCancelRequestStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		request, err := svc.Process(r.Context(), cancellations.ProcessInput{
			RequestID:   requestID,
			Status:      status,
			AdminNote:   req.AdminNote,
			ProcessedBy: "admin:" + strconv.FormatInt(middleware.UserIDFromContext(r.Context()), 10),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
