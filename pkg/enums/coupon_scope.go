package enums

import "fmt"

// CouponScope limits which cart items a coupon applies to.
type CouponScope string

const (
	CouponScopeAll      CouponScope = "all"
	CouponScopeCategory CouponScope = "category"
	CouponScopeProduct  CouponScope = "product"
)

var validCouponScopes = []CouponScope{
	CouponScopeAll,
	CouponScopeCategory,
	CouponScopeProduct,
}

// String implements fmt.Stringer.
func (c CouponScope) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponScope.
func (c CouponScope) IsValid() bool {
	for _, candidate := range validCouponScopes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponScope converts raw input into a CouponScope.
func ParseCouponScope(value string) (CouponScope, error) {
	for _, candidate := range validCouponScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon scope %q", value)
}
