package catalog

// Product is the normalized view of a Master worksheet row.
type Product struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DisplayName  string         `json:"displayName"`
	Category     string         `json:"category"`
	Price        int            `json:"price"`
	Prices       map[string]int `json:"prices"`
	Image        string         `json:"image"`
	Description  string         `json:"description"`
	Benefits     string         `json:"benefits"`
	SpecialOffer bool           `json:"specialOffer"`
}

// Category groups the distinct product names under one category.
type Category struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Brand is a row from the Brands worksheet.
type Brand struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}
