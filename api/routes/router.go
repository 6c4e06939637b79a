package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/The-WildNuts/The-Wild-Nuts/api/controllers"
	"github.com/The-WildNuts/The-Wild-Nuts/api/middleware"
	authsvc "github.com/The-WildNuts/The-Wild-Nuts/internal/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/marketing"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/orders"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/wishlist"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/redis"
)

// RouterParams groups everything the HTTP surface needs.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	Redis     *redis.Client
	Registry  *prometheus.Registry
	Auth      authsvc.Service
	Catalog   catalog.Service
	Users     users.Service
	Wishlist  wishlist.Service
	Orders    orders.Service
	Marketing marketing.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	loginLimit := passthrough()
	registerLimit := passthrough()
	if p.Redis != nil {
		loginLimit = middleware.AuthRateLimit(loginPolicy, p.Redis, logg)
		registerLimit = middleware.AuthRateLimit(registerPolicy, p.Redis, logg)
	}

	r.Get("/", controllers.Root())
	r.Get("/health/live", controllers.HealthLive(cfg))
	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(p.Catalog, logg))
		r.Get("/products", controllers.ListProducts(p.Catalog, logg))
		r.Get("/brands", controllers.ListBrands(p.Catalog, logg))
		r.Post("/subscribe", controllers.Subscribe(p.Marketing, logg))
		r.Get("/orders/{orderId}", controllers.OrderTracking(p.Orders, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimit).Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.With(loginLimit).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.With(loginLimit).Post("/forgot-password", controllers.ForgotPassword(p.Auth, logg))
			r.Post("/verify-otp", controllers.VerifyOTP(p.Auth, logg))
			r.Post("/reset-password", controllers.ResetPassword(p.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Post("/logout", controllers.AuthLogout(p.Auth, logg))
		})

		r.With(loginLimit).Post("/admin/login", controllers.AdminLogin(p.Auth, logg))

		// Legacy storefront endpoints kept for backward compatibility.
		r.Post("/login-password", controllers.LegacyLogin(p.Users, logg))
		r.Post("/reset-password", controllers.LegacyResetPassword(p.Users, logg))
		r.Post("/update-profile", controllers.LegacyUpdateProfile(p.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", controllers.ProfileFetch(p.Users, logg))
				r.Put("/profile", controllers.ProfileUpdate(p.Users, logg))
				r.Get("/wishlist", controllers.WishlistFetch(p.Wishlist, logg))
				r.Post("/wishlist/{productId}", controllers.WishlistAdd(p.Wishlist, logg))
				r.Delete("/wishlist/{productId}", controllers.WishlistRemove(p.Wishlist, logg))
				r.Get("/cart", controllers.CartFetch(p.Wishlist, logg))
				r.Post("/cart/{productId}", controllers.CartAdd(p.Wishlist, logg))
				r.Delete("/cart/{productId}", controllers.CartRemove(p.Wishlist, logg))
				r.Get("/orders", controllers.UserOrders(p.Orders, logg))
			})

			r.Post("/orders", controllers.OrderCreate(p.Orders, p.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Put("/orders/{orderId}/status", controllers.OrderStatusUpdate(p.Orders, logg))
				r.Put("/products/{productId}/offer", controllers.SetProductOffer(p.Catalog, logg))
				r.Post("/marketing/send", controllers.MarketingSend(p.Marketing, logg))
				r.Get("/admin/stats", controllers.AdminStats(p.Orders, logg))
				r.Get("/admin/orders", controllers.AdminOrders(p.Orders, logg))
				r.Get("/admin/subscribers", controllers.AdminSubscribers(p.Marketing, logg))
			})
		})
	})

	return r
}

func passthrough() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}
