package auth

import (
	"context"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}
