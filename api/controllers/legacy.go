package controllers

import (
	"net/http"
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/api/validators"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

// The legacy endpoints predate hashed credentials and JWT sessions.
// They keep the original storefront clients working against the
// plain-password user layout.

type legacyLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LegacyLogin authenticates against the plain-password layout, creating
// the account on first use.
func LegacyLogin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload legacyLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		email := strings.TrimSpace(payload.Email)
		user, err := svc.LegacyAuthenticate(r.Context(), email, payload.Password)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			user, err = svc.LegacyRegister(r.Context(), email, payload.Password)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, user)
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type legacyResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// LegacyResetPassword overwrites the stored plain password.
func LegacyResetPassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload legacyResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.LegacyResetPassword(r.Context(), strings.TrimSpace(payload.Email), payload.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "password updated"})
	}
}

type legacyUpdateProfileRequest struct {
	Email   string `json:"email" validate:"required"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Gender  string `json:"gender"`
	Age     string `json:"age"`
}

// LegacyUpdateProfile patches the mutable columns of the legacy layout.
// Empty fields leave the stored values untouched.
func LegacyUpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload legacyUpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var update users.LegacyProfileUpdate
		if payload.Name != "" {
			update.Name = &payload.Name
		}
		if payload.Phone != "" {
			update.Phone = &payload.Phone
		}
		if payload.Address != "" {
			update.Address = &payload.Address
		}
		if payload.Gender != "" {
			update.Gender = &payload.Gender
		}
		if payload.Age != "" {
			update.Age = &payload.Age
		}
		if err := svc.LegacyUpdateProfile(r.Context(), strings.TrimSpace(payload.Email), update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "profile updated"})
	}
}
