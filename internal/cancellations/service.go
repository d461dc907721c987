package cancellations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderEngine interface {
	Transition(ctx context.Context, tx *gorm.DB, input orders.UpdateStatusInput) (*models.Order, error)
}

// Service mediates between customer cancellation requests and the order
// status engine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.CancelRequest, error)
	Process(ctx context.Context, input ProcessInput) (*models.CancelRequest, error)
	Withdraw(ctx context.Context, requestID, userID int64) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*RequestList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	orders orderEngine
	now    func() time.Time
}

// NewService builds a cancellation service with the required dependencies.
func NewService(repo Repository, tx txRunner, orderEngine orderEngine) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cancellations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orderEngine == nil {
		return nil, fmt.Errorf("order engine required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		orders: orderEngine,
		now:    time.Now,
	}, nil
}

// Create files a cancellation request for one of the caller's orders. Orders
// still new and younger than the instant window are cancelled on the spot;
// everything else goes to admin review, parking the order in cancel_requested.
// The request row and the order status change commit or roll back together.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.CancelRequest, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var created *models.CancelRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusNew && order.Status != enums.OrderStatusConfirmed {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s can no longer be cancelled through this path", order.Status),
			)
		}

		pending, err := repo.HasPendingForOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending cancel requests")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, "a pending cancel request already exists for this order")
		}

		reason := strings.TrimSpace(input.Reason)
		actor := fmt.Sprintf("user:%d", input.UserID)
		request := &models.CancelRequest{
			OrderID: order.ID,
			UserID:  input.UserID,
			Reason:  reason,
			Status:  enums.CancelRequestStatusPending,
		}

		if orders.CancellableByCustomer(order, s.now()) {
			now := s.now()
			note := "auto-approved: cancelled within the instant cancellation window"
			processedBy := "system"
			request.Status = enums.CancelRequestStatusApproved
			request.AdminNote = &note
			request.ProcessedBy = &processedBy
			request.ProcessedAt = &now

			if err := repo.Create(ctx, request); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cancel request")
			}
			_, err := s.orders.Transition(ctx, tx, orders.UpdateStatusInput{
				OrderID:   order.ID,
				To:        enums.OrderStatusCancelled,
				Reason:    &reason,
				ChangedBy: actor,
			})
			if err != nil {
				return err
			}
		} else {
			if err := repo.Create(ctx, request); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cancel request")
			}
			_, err := s.orders.Transition(ctx, tx, orders.UpdateStatusInput{
				OrderID:   order.ID,
				To:        enums.OrderStatusCancelRequested,
				Reason:    &reason,
				ChangedBy: actor,
			})
			if err != nil {
				return err
			}
		}

		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Process resolves a pending request. Approval cancels the order; rejection
// returns it to confirmed. Both go through the transition table.
func (s *service) Process(ctx context.Context, input ProcessInput) (*models.CancelRequest, error) {
	if input.RequestID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.Status != enums.CancelRequestStatusApproved && input.Status != enums.CancelRequestStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("request can only be approved or rejected, got %q", input.Status))
	}
	if input.ProcessedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required to process request")
	}

	var processed *models.CancelRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cancel request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cancel request")
		}
		if request.Status != enums.CancelRequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancel request already processed")
		}

		now := s.now()
		updates := map[string]any{
			"status":       input.Status,
			"processed_by": input.ProcessedBy,
			"processed_at": now,
		}
		if input.AdminNote != nil {
			updates["admin_note"] = input.AdminNote
		}
		ok, err := repo.UpdateIfPending(ctx, request.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cancel request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancel request already processed")
		}

		target := enums.OrderStatusConfirmed
		if input.Status == enums.CancelRequestStatusApproved {
			target = enums.OrderStatusCancelled
		}
		reason := fmt.Sprintf("cancel request %s", input.Status)
		if _, err := s.orders.Transition(ctx, tx, orders.UpdateStatusInput{
			OrderID:   request.OrderID,
			To:        target,
			Reason:    &reason,
			ChangedBy: input.ProcessedBy,
		}); err != nil {
			return err
		}

		request.Status = input.Status
		request.AdminNote = input.AdminNote
		request.ProcessedBy = &input.ProcessedBy
		request.ProcessedAt = &now
		processed = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return processed, nil
}

// Withdraw lets the request's owner take back a still-pending request. The
// row is deleted and the order returns to confirmed.
func (s *service) Withdraw(ctx context.Context, requestID, userID int64) error {
	if requestID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, requestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cancel request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cancel request")
		}
		if request.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cancel request does not belong to user")
		}
		if request.Status != enums.CancelRequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancel request already processed")
		}

		ok, err := repo.DeleteIfPending(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cancel request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancel request already processed")
		}

		reason := "cancel request withdrawn by customer"
		_, err = s.orders.Transition(ctx, tx, orders.UpdateStatusInput{
			OrderID:   request.OrderID,
			To:        enums.OrderStatusConfirmed,
			Reason:    &reason,
			ChangedBy: fmt.Sprintf("user:%d", userID),
		})
		return err
	})
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*RequestList, error) {
	requests, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cancel requests")
	}
	return &RequestList{
		Requests: requests,
		Page:     pagination.NewPage(params, total),
	}, nil
}
