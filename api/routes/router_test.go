package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/The-WildNuts/The-Wild-Nuts/internal/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/marketing"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/orders"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/otp"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/wishlist"
	pkgauth "github.com/The-WildNuts/The-Wild-Nuts/pkg/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

type noopMailer struct{}

func (noopMailer) SendOTP(context.Context, string, string) error             { return nil }
func (noopMailer) SendWelcome(context.Context, string, string) error         { return nil }
func (noopMailer) SendOrderStatus(ctx context.Context, to, orderID, name, status string) error {
	return nil
}
func (noopMailer) SendOrderCancelled(ctx context.Context, to, orderID, name string) error {
	return nil
}
func (noopMailer) SendMarketing(context.Context, string, string, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:          "router-secret",
			Issuer:          "the-wild-nuts",
			ExpirationHours: 24,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *sheets.Memory) {
	t.Helper()

	store := sheets.NewMemory()
	store.Seed("Master", []string{"Product Name", "Category", "Price_250g"}, [][]string{
		{"Almonds", "Nuts", "280"},
	})

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	cache := sheets.NewCache(sheets.CacheParams{TTL: time.Minute})
	cfg := testConfig()

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Store: store, Cache: cache, Logger: logg})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	usersSvc, err := users.NewService(users.ServiceParams{Store: store, Cache: cache, Logger: logg})
	if err != nil {
		t.Fatalf("users service: %v", err)
	}
	otpSvc, err := otp.NewService(otp.ServiceParams{Store: store, Logger: logg})
	if err != nil {
		t.Fatalf("otp service: %v", err)
	}
	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:  usersSvc,
		OTP:    otpSvc,
		Mailer: noopMailer{},
		JWT:    cfg.JWT,
		Admin:  config.AdminConfig{},
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		Store: store, Cache: cache, Catalog: catalogSvc, Logger: logg,
	})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Store: store, Cache: cache, Users: usersSvc, Mailer: noopMailer{}, Logger: logg,
	})
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	marketingSvc, err := marketing.NewService(marketing.ServiceParams{
		Store: store, Cache: cache, Mailer: noopMailer{}, Logger: logg,
	})
	if err != nil {
		t.Fatalf("marketing service: %v", err)
	}

	router := NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logg,
		Auth:      authService,
		Catalog:   catalogSvc,
		Users:     usersSvc,
		Wishlist:  wishlistSvc,
		Orders:    ordersSvc,
		Marketing: marketingSvc,
	})
	return router, store
}

func mintRouterToken(t *testing.T, role string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		Email:    "priya@example.com",
		Username: "priya",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/", "/api/products", "/api/categories", "/api/brands", "/health/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestUserRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/profile"},
		{http.MethodGet, "/api/user/wishlist"},
		{http.MethodGet, "/api/user/cart"},
		{http.MethodGet, "/api/user/orders"},
		{http.MethodPost, "/api/orders"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestAdminRoutesRejectUserRole(t *testing.T) {
	router, _ := newTestRouter(t)
	token := mintRouterToken(t, pkgauth.RoleUser)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodGet, "/api/admin/subscribers"},
		{http.MethodPut, "/api/products/almonds/offer"},
		{http.MethodPost, "/api/marketing/send"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestAdminStatsWithAdminToken(t *testing.T) {
	router, _ := newTestRouter(t)
	token := mintRouterToken(t, pkgauth.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data orders.Stats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrdersCount != 0 {
		t.Fatalf("expected empty stats, got %+v", envelope.Data)
	}
}

func TestRegisterThenProfileRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"priya@example.com","password":"Str0ngPass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data authsvc.Session `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("expected session token")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var profile struct {
		Data users.User `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile response: %v", err)
	}
	if profile.Data.Email != "priya@example.com" {
		t.Fatalf("unexpected profile email %q", profile.Data.Email)
	}
}
