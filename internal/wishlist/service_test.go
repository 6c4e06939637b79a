package wishlist

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

func newTestService(t *testing.T) (Service, *sheets.Memory) {
	t.Helper()
	store := sheets.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := sheets.NewCache(sheets.CacheParams{Clock: func() time.Time { return now }})
	logg := logger.New(logger.Options{ServiceName: "wishlist-test", Output: io.Discard})

	store.Seed("Master", []string{"Product Name", "Category", "250g"}, [][]string{
		{"Almonds", "Nuts", "280"},
		{"Cashews", "Nuts", "320"},
	})
	cat, err := catalog.NewService(catalog.ServiceParams{Store: store, Cache: cache, Logger: logg})
	if err != nil {
		t.Fatalf("catalog.NewService: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Store:   store,
		Cache:   cache,
		Catalog: cat,
		Logger:  logg,
		Clock:   func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestAddToWishlistDedups(t *testing.T) {
	svc, store := newTestService(t)

	for i := 0; i < 3; i++ {
		if err := svc.AddToWishlist(context.Background(), "a@example.com", "Almonds"); err != nil {
			t.Fatalf("AddToWishlist: %v", err)
		}
	}
	rows, err := store.Rows(context.Background(), "User_Wishlist")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("re-adding must not duplicate, got %d rows", len(rows))
	}

	items, err := svc.Wishlist(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("Wishlist: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "Almonds" {
		t.Fatalf("unexpected wishlist: %v", items)
	}
}

func TestWishlistSkipsCartRows(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed("User_Wishlist", wishlistHeader, [][]string{
		{"a@example.com", "Almonds", "2025-06-01 10:00:00", ""},
		{"a@example.com", "", "2025-06-01 10:01:00", "Cashews"},
		{"b@example.com", "Cashews", "2025-06-01 10:02:00", ""},
	})

	items, err := svc.Wishlist(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("Wishlist: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "Almonds" {
		t.Fatalf("cart rows and other users must be excluded: %v", items)
	}
}

func TestRemoveFromWishlistFirstMatchOnly(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed("User_Wishlist", wishlistHeader, [][]string{
		{"a@example.com", "Almonds", "2025-06-01 10:00:00", ""},
		{"a@example.com", "Almonds", "2025-06-01 10:05:00", ""},
	})

	if err := svc.RemoveFromWishlist(context.Background(), "a@example.com", "Almonds"); err != nil {
		t.Fatalf("RemoveFromWishlist: %v", err)
	}
	rows, _ := store.Rows(context.Background(), "User_Wishlist")
	if len(rows) != 1 {
		t.Fatalf("only the first match should be deleted, got %d rows", len(rows))
	}

	if err := svc.RemoveFromWishlist(context.Background(), "a@example.com", "Pistachios"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCartHydratesProducts(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed("User_Wishlist", wishlistHeader, [][]string{
		{"a@example.com", "", "2025-06-01 10:00:00", "Cashews"},
		{"a@example.com", "", "2025-06-01 10:01:00", "Discontinued"},
	})

	items, err := svc.Cart(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unknown products must be dropped, got %v", items)
	}
	item := items[0]
	if item.Name != "Cashews" || item.Price != 320 {
		t.Fatalf("cart item not hydrated: %+v", item)
	}
	if item.Quantity != 1 || item.Variant != "250g" {
		t.Fatalf("defaults not applied: %+v", item)
	}
}

func TestAddToCartIsAppendOnly(t *testing.T) {
	svc, store := newTestService(t)

	for i := 0; i < 2; i++ {
		if err := svc.AddToCart(context.Background(), "a@example.com", "Almonds"); err != nil {
			t.Fatalf("AddToCart: %v", err)
		}
	}
	rows, _ := store.Rows(context.Background(), "User_Wishlist")
	if len(rows) != 2 {
		t.Fatalf("cart history is a log, got %d rows", len(rows))
	}
	if rows[0]["Product_ID"] != "" || rows[0]["Add_Card_Product"] != "Almonds" {
		t.Fatalf("cart rows must leave Product_ID empty: %v", rows[0])
	}
}

func TestRemoveFromCartDeletesAllMatches(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed("User_Wishlist", wishlistHeader, [][]string{
		{"a@example.com", "", "2025-06-01 10:00:00", "Almonds"},
		{"a@example.com", "Cashews", "2025-06-01 10:01:00", ""},
		{"a@example.com", "", "2025-06-01 10:02:00", "Almonds"},
		{"b@example.com", "", "2025-06-01 10:03:00", "Almonds"},
	})

	if err := svc.RemoveFromCart(context.Background(), "a@example.com", "Almonds"); err != nil {
		t.Fatalf("RemoveFromCart: %v", err)
	}
	rows, _ := store.Rows(context.Background(), "User_Wishlist")
	if len(rows) != 2 {
		t.Fatalf("all of the user's matches should go, got %d rows", len(rows))
	}
	if rows[0]["Product_ID"] != "Cashews" || rows[1]["Email"] != "b@example.com" {
		t.Fatalf("wrong rows survived: %v", rows)
	}
}
