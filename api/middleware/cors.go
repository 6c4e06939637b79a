package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows every origin. The storefront is served from a separate
// host that changes per deploy, so the policy stays open; credentials
// ride in the Authorization header, not cookies.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}).Handler
}
