package catalog

import (
	"context"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

const (
	worksheetMaster = "Master"
	worksheetBrands = "Brands"

	// Derived views cache under their own keys so invalidating one does
	// not evict the other.
	cacheKeyProducts   = "Master"
	cacheKeyCategories = "categories_derived_master"
	cacheKeyBrands     = "Brands"

	offerColumnHeader = "Special_Offer"
)

// fallbackBrands keeps the storefront populated when the Brands
// worksheet has not been created yet.
var fallbackBrands = []Brand{
	{Name: "Nutraj", Image: defaultImage},
	{Name: "The Wild Nuts", Image: defaultImage},
	{Name: "Bacture", Image: defaultImage},
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Store  sheets.API
	Cache  *sheets.Cache
	Logger *logger.Logger
}

// Service exposes the product catalog read views and the offer toggle.
type Service interface {
	Products(ctx context.Context) ([]Product, error)
	ProductByID(ctx context.Context, id string) (Product, error)
	Categories(ctx context.Context) ([]Category, error)
	Brands(ctx context.Context) ([]Brand, error)
	SetOffer(ctx context.Context, productID string, isOffer bool) error
}

type service struct {
	store sheets.API
	cache *sheets.Cache
	logg  *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{store: params.Store, cache: params.Cache, logg: params.Logger}, nil
}

// Products returns the normalized Master rows, served from cache while
// fresh.
func (s *service) Products(ctx context.Context) ([]Product, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyProducts, func(ctx context.Context) ([]Product, error) {
		rows, err := s.store.Rows(ctx, worksheetMaster)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product sheet")
		}
		products := make([]Product, 0, len(rows))
		for _, row := range rows {
			products = append(products, NormalizeProduct(row))
		}
		return products, nil
	})
}

// ProductByID scans the normalized catalog for the given product id.
func (s *service) ProductByID(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	products, err := s.Products(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

// Categories returns the derived category tree, cached independently of
// the product view.
func (s *service) Categories(ctx context.Context) ([]Category, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyCategories, func(ctx context.Context) ([]Category, error) {
		rows, err := s.store.Rows(ctx, worksheetMaster)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product sheet")
		}
		return BuildCategories(rows), nil
	})
}

// Brands lists the Brands worksheet, falling back to the static set
// when the worksheet does not exist.
func (s *service) Brands(ctx context.Context) ([]Brand, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyBrands, func(ctx context.Context) ([]Brand, error) {
		rows, err := s.store.Rows(ctx, worksheetBrands)
		if err != nil {
			if sheets.NotFound(err) {
				s.logg.Warn(ctx, "brands worksheet missing, serving fallback set")
				return fallbackBrands, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brands sheet")
		}
		brands := make([]Brand, 0, len(rows))
		for _, row := range rows {
			name := row["Name"]
			if name == "" {
				continue
			}
			image := row["Image"]
			if image == "" {
				image = defaultImage
			}
			brands = append(brands, Brand{Name: name, Image: image})
		}
		if len(brands) == 0 {
			return fallbackBrands, nil
		}
		return brands, nil
	})
}

// SetOffer flips the product's Special_Offer cell, appending the column
// to the header when it does not exist yet. The product row is located
// by a fresh scan so stale cache state never picks the wrong row.
func (s *service) SetOffer(ctx context.Context, productID string, isOffer bool) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	row, err := s.store.FindRow(ctx, worksheetMaster, productID)
	if err != nil {
		if sheets.NotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locate product row")
	}

	header, err := s.store.Header(ctx, worksheetMaster)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product header")
	}
	col := 0
	for i, name := range header {
		if name == offerColumnHeader {
			col = i + 1
			break
		}
	}
	if col == 0 {
		col = len(header) + 1
		if err := s.store.UpdateCell(ctx, worksheetMaster, 1, col, offerColumnHeader); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append offer column")
		}
	}

	value := "false"
	if isOffer {
		value = "true"
	}
	if err := s.store.UpdateCell(ctx, worksheetMaster, row, col, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer cell")
	}

	s.cache.Invalidate(cacheKeyProducts, cacheKeyCategories)
	return nil
}
