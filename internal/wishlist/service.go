package wishlist

import (
	"context"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"go.uber.org/multierr"
)

// The User_Wishlist worksheet is shared by two record kinds: wishlist
// rows carry Product_ID, cart-history rows carry Add_Card_Product and
// leave Product_ID empty. The Email/Added_At columns are common.
const (
	worksheetWishlist = "User_Wishlist"
	cacheKeyWishlist  = "User_Wishlist"
)

var wishlistHeader = []string{"Email", "Product_ID", "Added_At", "Add_Card_Product"}

// Item is one wishlist entry.
type Item struct {
	ProductID string `json:"product_id"`
	AddedAt   string `json:"added_at"`
}

// CartItem is a cart-history entry hydrated with catalog details.
type CartItem struct {
	catalog.Product
	AddedAt  string `json:"added_at"`
	Quantity int    `json:"quantity"`
	Variant  string `json:"variant"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store   sheets.API
	Cache   *sheets.Cache
	Catalog catalog.Service
	Logger  *logger.Logger
	Clock   func() time.Time
}

// Service manages the shared wishlist/cart-history worksheet.
type Service interface {
	Wishlist(ctx context.Context, email string) ([]Item, error)
	AddToWishlist(ctx context.Context, email, productID string) error
	RemoveFromWishlist(ctx context.Context, email, productID string) error
	Cart(ctx context.Context, email string) ([]CartItem, error)
	AddToCart(ctx context.Context, email, productID string) error
	RemoveFromCart(ctx context.Context, email, productID string) error
}

type service struct {
	store   sheets.API
	cache   *sheets.Cache
	catalog catalog.Service
	logg    *logger.Logger
	clock   func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		store:   params.Store,
		cache:   params.Cache,
		catalog: params.Catalog,
		logg:    params.Logger,
		clock:   params.Clock,
	}, nil
}

// rows returns the shared worksheet from cache, empty when the sheet
// has not been created yet.
func (s *service) rows(ctx context.Context) ([]sheets.Row, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyWishlist, func(ctx context.Context) ([]sheets.Row, error) {
		rows, err := s.store.Rows(ctx, worksheetWishlist)
		if err != nil {
			if sheets.NotFound(err) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist sheet")
		}
		return rows, nil
	})
}

// Wishlist lists the user's wishlist rows, skipping cart-history rows.
func (s *service) Wishlist(ctx context.Context, email string) ([]Item, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	items := []Item{}
	for _, row := range rows {
		if row["Email"] != email || row["Product_ID"] == "" {
			continue
		}
		items = append(items, Item{ProductID: row["Product_ID"], AddedAt: row["Added_At"]})
	}
	return items, nil
}

// AddToWishlist appends a wishlist row unless the product is already
// listed. Re-adding an existing product is a no-op, not an error.
func (s *service) AddToWishlist(ctx context.Context, email, productID string) error {
	if email == "" || productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and product id are required")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetWishlist, wishlistHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wishlist sheet")
	}

	// Fresh scan so the dedup sees rows newer than the cache.
	rows, err := s.store.Rows(ctx, worksheetWishlist)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist sheet")
	}
	for _, row := range rows {
		if row["Email"] == email && row["Product_ID"] == productID {
			return nil
		}
	}

	now := s.clock().Format(sheets.TimeLayout)
	if err := s.store.AppendRow(ctx, worksheetWishlist, []string{email, productID, now, ""}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append wishlist row")
	}
	s.cache.Invalidate(cacheKeyWishlist)
	return nil
}

// RemoveFromWishlist deletes the first matching wishlist row.
func (s *service) RemoveFromWishlist(ctx context.Context, email, productID string) error {
	rows, err := s.store.Rows(ctx, worksheetWishlist)
	if err != nil {
		if sheets.NotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in wishlist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist sheet")
	}
	for idx, row := range rows {
		if row["Email"] != email || row["Product_ID"] != productID {
			continue
		}
		if err := s.store.DeleteRow(ctx, worksheetWishlist, idx+2); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishlist row")
		}
		s.cache.Invalidate(cacheKeyWishlist)
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in wishlist")
}

// Cart lists the user's cart-history rows hydrated with catalog
// details. Rows referencing products no longer on the Master sheet are
// dropped.
func (s *service) Cart(ctx context.Context, email string) ([]CartItem, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := []CartItem{}
	for _, row := range rows {
		if row["Email"] != email || row["Add_Card_Product"] == "" {
			continue
		}
		product, ok := byID[row["Add_Card_Product"]]
		if !ok {
			continue
		}
		items = append(items, CartItem{
			Product:  product,
			AddedAt:  row["Added_At"],
			Quantity: 1,
			Variant:  "250g",
		})
	}
	return items, nil
}

// AddToCart appends a history row for every add, with Product_ID left
// empty to keep it distinguishable from wishlist rows.
func (s *service) AddToCart(ctx context.Context, email, productID string) error {
	if email == "" || productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and product id are required")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetWishlist, wishlistHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wishlist sheet")
	}
	now := s.clock().Format(sheets.TimeLayout)
	if err := s.store.AppendRow(ctx, worksheetWishlist, []string{email, "", now, productID}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append cart row")
	}
	s.cache.Invalidate(cacheKeyWishlist)
	return nil
}

// RemoveFromCart deletes every history row for the product, walking the
// matches in reverse so earlier deletions do not shift later targets.
func (s *service) RemoveFromCart(ctx context.Context, email, productID string) error {
	rows, err := s.store.Rows(ctx, worksheetWishlist)
	if err != nil {
		if sheets.NotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart history")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist sheet")
	}

	var targets []int
	for idx, row := range rows {
		if row["Email"] == email && row["Add_Card_Product"] == productID {
			targets = append(targets, idx+2)
		}
	}
	if len(targets) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart history")
	}

	var errs error
	for i := len(targets) - 1; i >= 0; i-- {
		if err := s.store.DeleteRow(ctx, worksheetWishlist, targets[i]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	s.cache.Invalidate(cacheKeyWishlist)
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "delete cart rows")
	}
	return nil
}
