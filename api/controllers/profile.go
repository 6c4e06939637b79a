package controllers

import (
	"net/http"
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/api/middleware"
	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/api/validators"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

// ProfileFetch returns the authenticated user's profile.
func ProfileFetch(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		user, err := svc.ByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type updateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	State    *string `json:"state,omitempty"`
	Pincode  *string `json:"pincode,omitempty"`
}

// ProfileUpdate patches the authenticated user's profile. Setting a
// username claims it, so the handle is validated and checked for
// collisions against other accounts first.
func ProfileUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Username != nil && *payload.Username != "" {
			if err := validators.ValidateUsername(*payload.Username); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			existing, err := svc.ByUsername(r.Context(), *payload.Username)
			if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if err == nil && !strings.EqualFold(existing.Email, email) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "username already taken"))
				return
			}
		}

		update := users.ProfileUpdate{
			Username: payload.Username,
			FullName: payload.FullName,
			Phone:    payload.Phone,
			Address:  payload.Address,
			City:     payload.City,
			State:    payload.State,
			Pincode:  payload.Pincode,
		}
		if err := svc.UpdateProfile(r.Context(), email, update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "profile updated"})
	}
}
