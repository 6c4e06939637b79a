package controllers

import (
	"net/http"

	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
)

// Root serves the storefront landing probe.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"message": "The Wild Nuts API",
			"status":  "running",
		})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WildNuts-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}
