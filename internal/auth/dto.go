package auth

import "github.com/uteshop/uteshop-backend/pkg/db/models"

// RegisterInput creates a new customer account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
}

// LoginInput authenticates an existing account.
type LoginInput struct {
	Email    string
	Password string
}

// Session is a freshly authenticated user with their access token.
type Session struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}
