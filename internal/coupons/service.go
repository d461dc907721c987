package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db"
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

var oneHundred = decimal.NewFromInt(100)

// Service exposes coupon validation, redemption, and admin management.
type Service interface {
	Validate(ctx context.Context, code string, userID int64, cart []CartItem) (*ValidationResult, error)
	Apply(ctx context.Context, tx *gorm.DB, code string, userID, orderID int64, cart []CartItem) (*ValidationResult, error)
	CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	ListCoupons(ctx context.Context, params pagination.Params) (*CouponList, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a coupon service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{
		repo: repo,
		now:  time.Now,
	}, nil
}

// Validate checks a code against a cart snapshot and prices the discount.
// Business rejections come back as Valid=false; only infrastructure failures error.
func (s *service) Validate(ctx context.Context, code string, userID int64, cart []CartItem) (*ValidationResult, error) {
	return s.validateWith(ctx, s.repo, code, userID, cart)
}

// Apply re-runs validation inside the caller's transaction, bumps the usage
// counter under its limit guard, and records one usage row for the order.
// Unlike Validate, a business rejection here is an error: the caller is in the
// middle of creating an order and must roll the whole transaction back.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, code string, userID, orderID int64, cart []CartItem) (*ValidationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required to apply coupon")
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	repo := s.repo.WithTx(tx)

	result, err := s.validateWith(ctx, repo, code, userID, cart)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, result.Message)
	}

	ok, err := repo.IncrementUsageIfUnderLimit(ctx, result.CouponID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage count")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon usage limit reached")
	}

	// The increment above holds the coupon row until this transaction ends,
	// so concurrent redemptions queue behind it. Re-counting here sees every
	// usage row committed by transactions that held the row earlier; the count
	// inside validateWith ran before the row was taken and only produces the
	// friendlier early rejection.
	coupon, err := repo.FindByID(ctx, result.CouponID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload coupon")
	}
	if coupon.PerUserLimit != nil {
		used, err := repo.CountUsagesByUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usages")
		}
		if used >= int64(*coupon.PerUserLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "you have reached the usage limit for this coupon")
		}
	}

	usage := &models.CouponUsage{
		CouponID:       result.CouponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: result.DiscountAmount,
	}
	if err := repo.InsertUsage(ctx, usage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
	}

	return result, nil
}

func (s *service) validateWith(ctx context.Context, repo Repository, code string, userID int64, cart []CartItem) (*ValidationResult, error) {
	if strings.TrimSpace(code) == "" {
		return invalidResult("coupon code required", decimal.Zero), nil
	}
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(cart) == 0 {
		return invalidResult("cart is empty", decimal.Zero), nil
	}

	coupon, err := repo.FindActiveByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return invalidResult("coupon does not exist", decimal.Zero), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	now := s.now()
	if now.Before(coupon.StartsAt) {
		return invalidResult("coupon is not yet valid", decimal.Zero), nil
	}
	if now.After(coupon.ExpiresAt) {
		return invalidResult("coupon has expired", decimal.Zero), nil
	}

	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return invalidResult("coupon usage limit reached", decimal.Zero), nil
	}

	if coupon.PerUserLimit != nil {
		used, err := repo.CountUsagesByUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usages")
		}
		if used >= int64(*coupon.PerUserLimit) {
			return invalidResult("you have reached the usage limit for this coupon", decimal.Zero), nil
		}
	}

	subtotal, err := s.applicableSubtotal(ctx, repo, coupon, cart)
	if err != nil {
		return nil, err
	}
	if !subtotal.IsPositive() {
		return invalidResult("coupon does not apply to any item in this order", decimal.Zero), nil
	}
	if subtotal.LessThan(coupon.MinOrderAmount) {
		return invalidResult(
			fmt.Sprintf("order subtotal %s is below the coupon minimum %s", subtotal.StringFixed(2), coupon.MinOrderAmount.StringFixed(2)),
			subtotal,
		), nil
	}

	discount := computeDiscount(coupon, subtotal)

	return &ValidationResult{
		Valid:          true,
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalAmount:    subtotal.Sub(discount),
	}, nil
}

// applicableSubtotal sums price*quantity over the cart lines the coupon covers.
// Category scoping needs a product lookup to resolve each line's category.
func (s *service) applicableSubtotal(ctx context.Context, repo Repository, coupon *models.Coupon, cart []CartItem) (decimal.Decimal, error) {
	switch coupon.Scope {
	case enums.CouponScopeAll:
		return sumLines(cart), nil

	case enums.CouponScopeProduct:
		ids := toIDSet(coupon.AppliesToIDs)
		var matched []CartItem
		for _, item := range cart {
			if ids[item.ProductID] {
				matched = append(matched, item)
			}
		}
		return sumLines(matched), nil

	case enums.CouponScopeCategory:
		productIDs := make([]int64, 0, len(cart))
		for _, item := range cart {
			productIDs = append(productIDs, item.ProductID)
		}
		categories, err := repo.FindProductCategoryIDs(ctx, productIDs)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product categories")
		}
		ids := toIDSet(coupon.AppliesToIDs)
		var matched []CartItem
		for _, item := range cart {
			if ids[categories[item.ProductID]] {
				matched = append(matched, item)
			}
		}
		return sumLines(matched), nil

	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown coupon scope %q", coupon.Scope))
	}
}

// computeDiscount prices the discount, caps percentage discounts at
// max_discount, clamps to the subtotal, and rounds to 2 decimal places.
func computeDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(oneHundred)
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case enums.DiscountTypeFixedAmount:
		discount = coupon.DiscountValue
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

func (s *service) CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.DiscountType))
	}
	if !input.DiscountValue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue.GreaterThan(oneHundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.MinOrderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount cannot be negative")
	}
	scope := input.Scope
	if scope == "" {
		scope = enums.CouponScopeAll
	}
	if !scope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid coupon scope %q", scope))
	}
	if scope != enums.CouponScopeAll && len(input.AppliesToIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scoped coupons require applies_to_ids")
	}
	if !input.ExpiresAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be after the start date")
	}

	coupon := &models.Coupon{
		Code:           code,
		Description:    input.Description,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		MaxDiscount:    input.MaxDiscount,
		MinOrderAmount: input.MinOrderAmount,
		Scope:          scope,
		AppliesToIDs:   input.AppliesToIDs,
		UsageLimit:     input.UsageLimit,
		PerUserLimit:   input.PerUserLimit,
		StartsAt:       input.StartsAt,
		ExpiresAt:      input.ExpiresAt,
		IsActive:       true,
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("coupon code %s already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) ListCoupons(ctx context.Context, params pagination.Params) (*CouponList, error) {
	coupons, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return &CouponList{
		Coupons: coupons,
		Page:    pagination.NewPage(params, total),
	}, nil
}

func invalidResult(message string, subtotal decimal.Decimal) *ValidationResult {
	return &ValidationResult{
		Valid:          false,
		Message:        message,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		FinalAmount:    subtotal,
	}
}

func sumLines(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func toIDSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
