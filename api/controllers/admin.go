package controllers

import (
	"net/http"

	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/marketing"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/orders"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

// AdminStats serves the dashboard aggregates.
func AdminStats(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.DashboardStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminOrders lists every order, newest first.
func AdminOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The service hands out the cached slice, so reverse a copy
		// rather than flipping sheet order for every other reader.
		reversed := make([]orders.Order, len(list))
		for i, order := range list {
			reversed[len(list)-1-i] = order
		}

		responses.WriteSuccess(w, map[string]any{"orders": reversed})
	}
}

// AdminSubscribers lists the newsletter roster.
func AdminSubscribers(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subscribers, err := svc.Subscribers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"subscribers": subscribers})
	}
}
