package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/The-WildNuts/The-Wild-Nuts/api/routes"
	authsvc "github.com/The-WildNuts/The-Wild-Nuts/internal/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/marketing"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/orders"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/otp"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/wishlist"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/mailer"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/metrics"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)

	var store sheets.API
	if cfg.FeatureFlags.UseMemoryStore {
		logg.Warn(context.Background(), "memory store enabled, data will not persist")
		store = sheets.NewMemory()
	} else {
		client, err := sheets.NewClient(context.Background(), cfg.Sheets, storeMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap sheets client", err)
			os.Exit(1)
		}
		store = client
	}

	cache := sheets.NewCache(sheets.CacheParams{
		TTL:     cfg.Cache.TTL,
		Metrics: storeMetrics,
	})

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	mail := mailer.New(cfg.SMTP, logg)

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Store: store, Cache: cache, Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	usersSvc, err := users.NewService(users.ServiceParams{
		Store: store, Cache: cache, Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	otpSvc, err := otp.NewService(otp.ServiceParams{Store: store, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:  usersSvc,
		OTP:    otpSvc,
		Mailer: mail,
		JWT:    cfg.JWT,
		Admin:  cfg.Admin,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		Store: store, Cache: cache, Catalog: catalogSvc, Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Store: store, Cache: cache, Users: usersSvc, Mailer: mail, Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	marketingSvc, err := marketing.NewService(marketing.ServiceParams{
		Store: store, Cache: cache, Mailer: mail, Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create marketing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:    cfg,
			Logger:    logg,
			Redis:     redisClient,
			Registry:  registry,
			Auth:      authService,
			Catalog:   catalogSvc,
			Users:     usersSvc,
			Wishlist:  wishlistSvc,
			Orders:    ordersSvc,
			Marketing: marketingSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
