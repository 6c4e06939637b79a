package catalog

import (
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
)

const (
	defaultImage       = "/logo-clean.png"
	defaultDescription = "Premium quality nuts."
)

// columnAliases maps each canonical field to the header variants seen in
// the live spreadsheet. Resolution takes the first alias with a
// non-empty value, in order.
var columnAliases = map[string][]string{
	"name":         {"Product Name", "product name"},
	"display_name": {"Header Product Name", "header product name"},
	"category":     {"Category", "category", "Categories", "categories"},
	"price_100g":   {"Price_100g", "100g"},
	"price_250g":   {"Price_250g", "250g"},
	"price_500g":   {"Price_500g", "500g"},
	"price_1kg":    {"Price_1kg", "1000g", "1kg"},
	"image":        {"Image", "image"},
	"description":  {"Description", "description"},
	"benefits":     {"Benefits", "benefits"},
	"offer":        {"Special_Offer"},
}

func lookup(row sheets.Row, field string) string {
	for _, alias := range columnAliases[field] {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

// ParsePrice strips every non-digit character and parses the rest as a
// whole-rupee amount. Empty or digit-free values parse to 0.
func ParsePrice(raw string) int {
	total := 0
	seen := false
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		seen = true
		total = total*10 + int(r-'0')
	}
	if !seen {
		return 0
	}
	return total
}

// NormalizeProduct builds a Product from a raw Master row. Missing
// image and description fall back to store defaults; the display price
// prefers 250g, then 100g, 500g and 1kg.
func NormalizeProduct(row sheets.Row) Product {
	name := lookup(row, "name")
	displayName := lookup(row, "display_name")
	if displayName == "" {
		displayName = name
	}

	price100 := ParsePrice(lookup(row, "price_100g"))
	price250 := ParsePrice(lookup(row, "price_250g"))
	price500 := ParsePrice(lookup(row, "price_500g"))
	price1kg := ParsePrice(lookup(row, "price_1kg"))

	display := price250
	if display == 0 {
		for _, candidate := range []int{price100, price500, price1kg} {
			if candidate > 0 {
				display = candidate
				break
			}
		}
	}

	image := lookup(row, "image")
	if image == "" {
		image = defaultImage
	}
	description := lookup(row, "description")
	if description == "" {
		description = defaultDescription
	}

	return Product{
		ID:          name,
		Name:        name,
		DisplayName: displayName,
		Category:    lookup(row, "category"),
		Price:       display,
		Prices: map[string]int{
			"100g":  price100,
			"250g":  price250,
			"500g":  price500,
			"1kg":   price1kg,
			"1000g": price1kg,
		},
		Image:        image,
		Description:  description,
		Benefits:     lookup(row, "benefits"),
		SpecialOffer: strings.EqualFold(lookup(row, "offer"), "true"),
	}
}

// BuildCategories derives the category tree from Master rows. Rows
// without a category are skipped; product names dedup within a category
// preserving first-seen order.
func BuildCategories(rows []sheets.Row) []Category {
	var order []string
	byName := map[string]*Category{}
	for _, row := range rows {
		catName := lookup(row, "category")
		if catName == "" {
			continue
		}
		cat, ok := byName[catName]
		if !ok {
			cat = &Category{
				ID:   strings.ReplaceAll(strings.ToLower(catName), " ", "-"),
				Name: catName,
			}
			byName[catName] = cat
			order = append(order, catName)
		}
		prodName := lookup(row, "name")
		if prodName == "" {
			continue
		}
		exists := false
		for _, sub := range cat.Subcategories {
			if sub == prodName {
				exists = true
				break
			}
		}
		if !exists {
			cat.Subcategories = append(cat.Subcategories, prodName)
		}
	}

	categories := make([]Category, 0, len(order))
	for _, name := range order {
		categories = append(categories, *byName[name])
	}
	return categories
}
