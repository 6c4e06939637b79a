package orders

// Item is one line of an order, stored serialized in the Items column.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Variant   string `json:"variant,omitempty"`
	Price     int    `json:"price"`
}

// Order is the normalized view of one Orders worksheet row.
type Order struct {
	OrderID       string `json:"order_id"`
	UserEmail     string `json:"user_email"`
	UserName      string `json:"user_name"`
	Items         []Item `json:"items"`
	TotalAmount   string `json:"total_amount"`
	Status        string `json:"status"`
	PaymentMode   string `json:"payment_mode"`
	CreatedAt     string `json:"created_at"`
	TrackingStage string `json:"tracking_stage"`
}

// NewOrder is the caller-supplied part of an order.
type NewOrder struct {
	Email       string
	UserName    string
	Items       []Item
	TotalAmount string
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	Revenue         int     `json:"revenue"`
	OrdersCount     int     `json:"orders_count"`
	CompletedOrders int     `json:"completed_orders"`
	CustomersCount  int     `json:"customers_count"`
	ConversionRate  float64 `json:"conversion_rate"`
	RecentOrders    []Order `json:"recent_orders"`
}
