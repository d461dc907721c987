package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/internal/payments"
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
)

type stubPaymentsService struct {
	payment         *models.Payment
	getErr          error
	updateErr       error
	lastUpdateInput payments.UpdateStatusInput
}

func (s *stubPaymentsService) CreatePending(ctx context.Context, tx *gorm.DB, orderID int64, method enums.PaymentMethod, amount decimal.Decimal) error {
	return nil
}

func (s *stubPaymentsService) GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	return s.payment, s.getErr
}

func (s *stubPaymentsService) UpdateStatus(ctx context.Context, input payments.UpdateStatusInput) (*models.Payment, error) {
	s.lastUpdateInput = input
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.payment, nil
}

func TestPaymentWebhookCompletesPaymentAndConfirmsOrder(t *testing.T) {
	paySvc := &stubPaymentsService{payment: &models.Payment{ID: 11, OrderID: 5, Status: enums.PaymentStatusCompleted}}
	orderSvc := &stubOrdersService{order: &models.Order{ID: 5, Status: enums.OrderStatusConfirmed}}
	handler := PaymentWebhook(paySvc, orderSvc, nil)

	body := `{"order_id": 5, "status": "completed", "transaction_id": "tx-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if paySvc.lastUpdateInput.PaymentID != 11 || paySvc.lastUpdateInput.Status != enums.PaymentStatusCompleted {
		t.Fatalf("unexpected payment update %+v", paySvc.lastUpdateInput)
	}
	if paySvc.lastUpdateInput.TransactionID == nil || *paySvc.lastUpdateInput.TransactionID != "tx-123" {
		t.Fatalf("expected transaction id to pass through")
	}
	if orderSvc.lastUpdateInput.To != enums.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed, got %q", orderSvc.lastUpdateInput.To)
	}
	if orderSvc.lastUpdateInput.ChangedBy != "system" {
		t.Fatalf("unexpected actor %q", orderSvc.lastUpdateInput.ChangedBy)
	}
}

func TestPaymentWebhookFailureCancelsOrder(t *testing.T) {
	paySvc := &stubPaymentsService{payment: &models.Payment{ID: 11, OrderID: 5, Status: enums.PaymentStatusFailed}}
	orderSvc := &stubOrdersService{order: &models.Order{ID: 5, Status: enums.OrderStatusCancelled}}
	handler := PaymentWebhook(paySvc, orderSvc, nil)

	body := `{"order_id": 5, "status": "failed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if orderSvc.lastUpdateInput.To != enums.OrderStatusCancelled {
		t.Fatalf("expected order cancelled, got %q", orderSvc.lastUpdateInput.To)
	}
	if orderSvc.lastUpdateInput.Reason == nil || *orderSvc.lastUpdateInput.Reason != "payment failed" {
		t.Fatalf("unexpected reason %+v", orderSvc.lastUpdateInput.Reason)
	}
}

func TestPaymentWebhookReplayLosesGuard(t *testing.T) {
	paySvc := &stubPaymentsService{
		payment:   &models.Payment{ID: 11, OrderID: 5, Status: enums.PaymentStatusCompleted},
		updateErr: pkgerrors.New(pkgerrors.CodeStateConflict, "payment transition completed -> completed is not allowed"),
	}
	handler := PaymentWebhook(paySvc, &stubOrdersService{}, nil)

	body := `{"order_id": 5, "status": "completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestPaymentWebhookToleratesOrderAlreadyMoved(t *testing.T) {
	paySvc := &stubPaymentsService{payment: &models.Payment{ID: 11, OrderID: 5, Status: enums.PaymentStatusCompleted}}
	orderSvc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "transition confirmed -> confirmed is not allowed")}
	handler := PaymentWebhook(paySvc, orderSvc, nil)

	body := `{"order_id": 5, "status": "completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	// Payment settlement already happened; the stale order transition is logged, not fatal.
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPaymentWebhookUnknownOrder(t *testing.T) {
	paySvc := &stubPaymentsService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")}
	handler := PaymentWebhook(paySvc, &stubOrdersService{}, nil)

	body := `{"order_id": 999, "status": "completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
