package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
)

// transitions holds the allowed payment status changes. Only pending payments
// can complete, fail, or cancel; only completed payments can refund.
var transitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending:   {enums.PaymentStatusCompleted, enums.PaymentStatusFailed, enums.PaymentStatusCancelled},
	enums.PaymentStatusCompleted: {enums.PaymentStatusRefunded},
	enums.PaymentStatusFailed:    {},
	enums.PaymentStatusCancelled: {},
	enums.PaymentStatusRefunded:  {},
}

func canTransition(from, to enums.PaymentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Service owns the payment row attached to each order.
type Service interface {
	CreatePending(ctx context.Context, tx *gorm.DB, orderID int64, method enums.PaymentMethod, amount decimal.Decimal) error
	GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payment, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a payment service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &service{
		repo: repo,
		now:  time.Now,
	}, nil
}

// CreatePending inserts the pending payment row inside the order transaction.
func (s *service) CreatePending(ctx context.Context, tx *gorm.DB, orderID int64, method enums.PaymentMethod, amount decimal.Decimal) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to create payment")
	}
	if orderID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount cannot be negative")
	}

	payment := &models.Payment{
		OrderID: orderID,
		Method:  method,
		Status:  enums.PaymentStatusPending,
		Amount:  amount,
	}
	if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	payment, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

// UpdateStatus moves a payment through its lifecycle. The status guard runs in
// the UPDATE itself, so two concurrent webhook deliveries cannot both win.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payment, error) {
	if input.PaymentID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", input.Status))
	}

	payment, err := s.repo.FindByID(ctx, input.PaymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	if !canTransition(payment.Status, input.Status) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment transition %s -> %s is not allowed", payment.Status, input.Status),
		)
	}

	updates := map[string]any{"status": input.Status}
	if input.TransactionID != nil {
		updates["transaction_id"] = input.TransactionID
	}
	if input.GatewayResponse != nil {
		updates["gateway_response"] = input.GatewayResponse
	}
	if input.Status == enums.PaymentStatusCompleted {
		paidAt := s.now()
		if input.PaidAt != nil {
			paidAt = *input.PaidAt
		}
		updates["paid_at"] = paidAt
	}

	ok, err := s.repo.UpdateStatusIf(ctx, payment.ID, []enums.PaymentStatus{payment.Status}, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment was updated concurrently")
	}

	return s.repo.FindByID(ctx, payment.ID)
}
