package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/uteshop/uteshop-backend/pkg/auth"
	"github.com/uteshop/uteshop-backend/pkg/config"
	"github.com/uteshop/uteshop-backend/pkg/db"
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/security"
)

const minPasswordLength = 8

// Service handles registration, login, and profile reads.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
}

type service struct {
	repo    Repository
	jwtCfg  config.JWTConfig
	passCfg config.PasswordConfig
	now     func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig, passCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:    repo,
		jwtCfg:  jwtCfg,
		passCfg: passCfg,
		now:     time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}

	hash, err := security.HashPassword(input.Password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.sessionFor(user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login time")
	}

	return s.sessionFor(user)
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) sessionFor(user *models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{User: user, AccessToken: token}, nil
}
