package controllers

import (
	"net/http"
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/api/validators"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/marketing"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required"`
}

// Subscribe joins the newsletter; a repeat signup is a quiet success.
func Subscribe(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		email := strings.TrimSpace(payload.Email)
		if err := validators.ValidateEmail(email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Subscribe(r.Context(), email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "subscribed"})
	}
}

type marketingSendRequest struct {
	Subject  string `json:"subject" validate:"required"`
	Content  string `json:"content" validate:"required"`
	TestMode bool   `json:"test_mode"`
}

// MarketingSend blasts a campaign to the subscriber roster. Test mode
// stops after the first recipient.
func MarketingSend(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload marketingSendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sent, err := svc.SendCampaign(r.Context(), payload.Subject, payload.Content, payload.TestMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"message": "campaign dispatched",
			"sent":    sent,
		})
	}
}
