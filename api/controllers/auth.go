package controllers

import (
	"net/http"

	"github.com/uteshop/uteshop-backend/api/middleware"
	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/api/validators"
	internalauth "github.com/uteshop/uteshop-backend/internal/auth"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func AuthRegister(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), internalauth.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			Phone:    req.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func AuthLogin(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), internalauth.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func AuthProfile(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
