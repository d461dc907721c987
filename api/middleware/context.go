package middleware

import (
	"context"

	"github.com/uteshop/uteshop-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

// UserIDFromContext returns the authenticated user id, or zero when absent.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

// RoleFromContext returns the authenticated role, or empty when absent.
func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

// IsAdmin reports whether the request was made by an admin account.
func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == enums.UserRoleAdmin
}

// WithIdentity injects identity into the context, mainly for handler tests.
func WithIdentity(ctx context.Context, userID int64, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
