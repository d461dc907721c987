package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/internal/coupons"
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponApplier interface {
	Apply(ctx context.Context, tx *gorm.DB, code string, userID, orderID int64, cart []coupons.CartItem) (*coupons.ValidationResult, error)
}

// PaymentRecorder creates the pending payment row inside the order transaction.
type PaymentRecorder interface {
	CreatePending(ctx context.Context, tx *gorm.DB, orderID int64, method enums.PaymentMethod, amount decimal.Decimal) error
}

// Service owns order creation, the status state machine, and the sweep.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetDetail(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Transition(ctx context.Context, tx *gorm.DB, input UpdateStatusInput) (*models.Order, error)
	AutoConfirm(ctx context.Context) ([]AutoConfirmResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	coupons  couponApplier
	payments PaymentRecorder
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, couponSvc couponApplier, payments PaymentRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon applier required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment recorder required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		coupons:  couponSvc,
		payments: payments,
		now:      time.Now,
	}, nil
}

// Create places an order atomically: stock validation and decrement, order,
// items, coupon redemption, pending payment, and the initial history row all
// commit or roll back together.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if input.ShippingAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if input.ReceiverPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver phone required")
	}
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		productIDs := make([]int64, 0, len(input.Items))
		for _, item := range input.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := repo.FindProductsByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[int64]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(input.Items))
		cart := make([]coupons.CartItem, 0, len(input.Items))

		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", item.ProductID))
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("product %s is not available", product.Name))
			}
			if product.StockQuantity < item.Quantity {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %s", product.Name))
			}

			unitPrice := product.EffectivePrice()
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   unitPrice,
				Quantity:    item.Quantity,
				LineTotal:   lineTotal,
			})
			cart = append(cart, coupons.CartItem{
				ProductID: product.ID,
				Price:     unitPrice,
				Quantity:  item.Quantity,
			})
		}

		// The guarded decrement is the authoritative stock check under
		// concurrency; the read above only produces a friendlier error.
		for _, item := range input.Items {
			ok, err := repo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %s", byID[item.ProductID].Name))
			}
		}

		order := &models.Order{
			UserID:          input.UserID,
			Status:          enums.OrderStatusNew,
			Subtotal:        subtotal,
			DiscountAmount:  decimal.Zero,
			TotalAmount:     subtotal,
			PaymentMethod:   method,
			ShippingAddress: input.ShippingAddress,
			ReceiverPhone:   input.ReceiverPhone,
			Note:            input.Note,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		if input.CouponCode != nil && *input.CouponCode != "" {
			result, err := s.coupons.Apply(ctx, tx, *input.CouponCode, input.UserID, order.ID, cart)
			if err != nil {
				return err
			}
			order.DiscountAmount = result.DiscountAmount
			order.TotalAmount = subtotal.Sub(result.DiscountAmount)
			order.CouponID = &result.CouponID
			order.CouponCode = &result.Code
			updates := map[string]any{
				"discount_amount": order.DiscountAmount,
				"total_amount":    order.TotalAmount,
				"coupon_id":       order.CouponID,
				"coupon_code":     order.CouponCode,
			}
			if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply order discount")
			}
		}

		if err := s.payments.CreatePending(ctx, tx, order.ID, method, order.TotalAmount); err != nil {
			return err
		}

		initial := &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  enums.OrderStatusNew,
			ChangedBy: actorForUser(input.UserID),
		}
		if err := repo.AppendHistory(ctx, initial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetDetail(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	orders, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{
		Orders: orders,
		Page:   pagination.NewPage(params, total),
	}, nil
}

// UpdateStatus runs one transition in its own transaction.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.Transition(ctx, tx, input)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Transition validates the requested change against the canonical table, then
// updates the order and appends the matching history row inside the caller's
// transaction. Set-once timestamps are stamped the first time a status is
// reached and never cleared.
func (s *service) Transition(ctx context.Context, tx *gorm.DB, input UpdateStatusInput) (*models.Order, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for status transition")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.To))
	}
	if input.ChangedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required for status transition")
	}

	repo := s.repo.WithTx(tx)

	order, err := repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !CanTransition(order.Status, input.To) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("transition %s -> %s is not allowed", order.Status, input.To),
		)
	}

	now := s.now()
	updates := map[string]any{"status": input.To}
	switch input.To {
	case enums.OrderStatusConfirmed:
		if order.ConfirmedAt == nil {
			updates["confirmed_at"] = now
			order.ConfirmedAt = &now
		}
	case enums.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
			order.DeliveredAt = &now
		}
	case enums.OrderStatusCancelled:
		if order.CancelledAt == nil {
			updates["cancelled_at"] = now
			order.CancelledAt = &now
		}
	}

	// The status guard is the authoritative check against concurrent
	// transitions; the CanTransition call above only ran on a snapshot.
	from := order.Status
	ok, err := repo.UpdateOrderIfStatus(ctx, order.ID, from, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order moved out of %s concurrently", from),
		)
	}

	entry := &models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: &from,
		ToStatus:   input.To,
		Reason:     input.Reason,
		ChangedBy:  input.ChangedBy,
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
	}

	order.Status = input.To
	return order, nil
}

// AutoConfirm advances every order still new after the timeout. Orders are
// processed independently; one failure never aborts the batch, and a second
// immediate run finds nothing left to confirm.
func (s *service) AutoConfirm(ctx context.Context) ([]AutoConfirmResult, error) {
	cutoff := s.now().Add(-InstantCancelWindow)
	ids, err := s.repo.FindNewOrderIDsBefore(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale new orders")
	}

	reason := "auto-confirmed after timeout"
	results := make([]AutoConfirmResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.UpdateStatus(ctx, UpdateStatusInput{
			OrderID:   id,
			To:        enums.OrderStatusConfirmed,
			Reason:    &reason,
			ChangedBy: "system",
		})
		result := AutoConfirmResult{OrderID: id, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}

func actorForUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
