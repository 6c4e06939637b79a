package orders

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/catalog"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/mailer"
	"github.com/google/uuid"
)

const (
	worksheetOrders = "Orders"
	cacheKeyOrders  = "Orders"

	// The users service invalidates this key by name when user rows
	// change, since the stats view counts customers from their sheet.
	cacheKeyStats = "orders_stats_derived"

	colStatus        = 6
	colTrackingStage = 9

	stageInitial = "Order Placed"
)

var ordersHeader = []string{
	"Order_ID", "User_Email", "User_Name", "Items", "Total_Amount",
	"Status", "Payment_Mode", "Created_At", "Tracking_Stage",
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Store  sheets.API
	Cache  *sheets.Cache
	Users  users.Service
	Mailer mailer.Mailer
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service owns the Orders worksheet and the dashboard aggregate built
// from it.
type Service interface {
	Create(ctx context.Context, order NewOrder) (Order, error)
	ByID(ctx context.Context, orderID string) (Order, error)
	ForUser(ctx context.Context, email string) ([]Order, error)
	All(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID, stage string) error
	DashboardStats(ctx context.Context) (Stats, error)
}

type service struct {
	store  sheets.API
	cache  *sheets.Cache
	users  users.Service
	mail   mailer.Mailer
	logg   *logger.Logger
	clock  func() time.Time
	newUID func() uuid.UUID
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user service is required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mailer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		store:  params.Store,
		cache:  params.Cache,
		users:  params.Users,
		mail:   params.Mailer,
		logg:   params.Logger,
		clock:  params.Clock,
		newUID: uuid.New,
	}, nil
}

func normalizeOrder(row sheets.Row) Order {
	order := Order{
		OrderID:       row["Order_ID"],
		UserEmail:     row["User_Email"],
		UserName:      row["User_Name"],
		TotalAmount:   row["Total_Amount"],
		Status:        row["Status"],
		PaymentMode:   row["Payment_Mode"],
		CreatedAt:     row["Created_At"],
		TrackingStage: row["Tracking_Stage"],
	}
	if raw := row["Items"]; raw != "" {
		// A hand-edited Items cell that no longer parses reads as an
		// empty line-item list rather than failing the whole order.
		_ = json.Unmarshal([]byte(raw), &order.Items)
	}
	return order
}

// Create appends an order row with defaults for status, payment mode
// and tracking stage.
func (s *service) Create(ctx context.Context, order NewOrder) (Order, error) {
	if strings.TrimSpace(order.Email) == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(order.Items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetOrders, ordersHeader); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure orders sheet")
	}

	now := s.clock()
	orderID := newOrderID(now, s.newUID())
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize order items")
	}

	created := Order{
		OrderID:       orderID,
		UserEmail:     order.Email,
		UserName:      order.UserName,
		Items:         order.Items,
		TotalAmount:   order.TotalAmount,
		Status:        "Pending",
		PaymentMode:   "WhatsApp/COD",
		CreatedAt:     now.Format(sheets.TimeLayout),
		TrackingStage: stageInitial,
	}
	record := []string{
		created.OrderID, created.UserEmail, created.UserName, string(itemsJSON),
		created.TotalAmount, created.Status, created.PaymentMode,
		created.CreatedAt, created.TrackingStage,
	}
	if err := s.store.AppendRow(ctx, worksheetOrders, record); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order row")
	}

	s.cache.Invalidate(cacheKeyOrders, cacheKeyStats)
	s.logg.Info(s.logg.WithUserEmail(ctx, order.Email), "order created")
	return created, nil
}

func newOrderID(now time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(id.String()[:4])
	return "ORD-" + strconv.FormatInt(now.Unix(), 10) + "-" + suffix
}

// all returns the full order list, served from cache while fresh.
func (s *service) all(ctx context.Context) ([]Order, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyOrders, func(ctx context.Context) ([]Order, error) {
		rows, err := s.store.Rows(ctx, worksheetOrders)
		if err != nil {
			if sheets.NotFound(err) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders sheet")
		}
		orders := make([]Order, 0, len(rows))
		for _, row := range rows {
			orders = append(orders, normalizeOrder(row))
		}
		return orders, nil
	})
}

// All lists every order in sheet order.
func (s *service) All(ctx context.Context) ([]Order, error) {
	return s.all(ctx)
}

// ByID scans for the order, first match wins.
func (s *service) ByID(ctx context.Context, orderID string) (Order, error) {
	if orderID == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orders, err := s.all(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, order := range orders {
		if order.OrderID == orderID {
			return order, nil
		}
	}
	return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// ForUser filters orders by customer email.
func (s *service) ForUser(ctx context.Context, email string) ([]Order, error) {
	orders, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	mine := []Order{}
	for _, order := range orders {
		if order.UserEmail == email {
			mine = append(mine, order)
		}
	}
	return mine, nil
}

// UpdateStatus sets the tracking stage and keeps the coarse Status
// column in sync: Delivered completes the order, Cancelled cancels it,
// any other stage past the initial one marks it in progress. The
// customer is notified by email; a mail failure is logged, not
// surfaced, since the sheet update already happened.
func (s *service) UpdateStatus(ctx context.Context, orderID, stage string) error {
	if orderID == "" || stage == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and status are required")
	}

	order, err := s.ByID(ctx, orderID)
	if err != nil {
		return err
	}

	row, err := s.store.FindRow(ctx, worksheetOrders, orderID)
	if err != nil {
		if sheets.NotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locate order row")
	}

	updates := []sheets.CellUpdate{{Row: row, Col: colTrackingStage, Value: stage}}
	switch {
	case stage == "Delivered":
		updates = append(updates, sheets.CellUpdate{Row: row, Col: colStatus, Value: "Completed"})
	case stage == "Cancelled":
		updates = append(updates, sheets.CellUpdate{Row: row, Col: colStatus, Value: "Cancelled"})
	case stage != stageInitial:
		updates = append(updates, sheets.CellUpdate{Row: row, Col: colStatus, Value: "In Progress"})
	}
	if err := s.store.BatchUpdate(ctx, worksheetOrders, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	s.cache.Invalidate(cacheKeyOrders, cacheKeyStats)

	if order.UserEmail != "" {
		name := order.UserName
		if name == "" {
			name = "Customer"
		}
		var mailErr error
		if strings.EqualFold(stage, "Cancelled") {
			mailErr = s.mail.SendOrderCancelled(ctx, order.UserEmail, orderID, name)
		} else {
			mailErr = s.mail.SendOrderStatus(ctx, order.UserEmail, orderID, name, stage)
		}
		if mailErr != nil {
			s.logg.Error(s.logg.WithUserEmail(ctx, order.UserEmail), "order status mail failed", mailErr)
		}
	}
	return nil
}

// DashboardStats aggregates the admin dashboard view. Cancelled orders
// are excluded entirely; revenue and the completed count come from
// delivered orders only, with amounts parsed digit-wise so currency
// symbols and separators in the sheet do not break the sum.
func (s *service) DashboardStats(ctx context.Context) (Stats, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyStats, func(ctx context.Context) (Stats, error) {
		orders, err := s.all(ctx)
		if err != nil {
			return Stats{}, err
		}
		allUsers, err := s.users.All(ctx)
		if err != nil {
			return Stats{}, err
		}

		stats := Stats{
			OrdersCount:    len(orders),
			CustomersCount: len(allUsers),
			RecentOrders:   []Order{},
		}
		for _, order := range orders {
			stage := strings.ToLower(order.TrackingStage)
			if stage == "cancelled" {
				continue
			}
			if stage == "delivered" {
				stats.Revenue += catalog.ParsePrice(order.TotalAmount)
				stats.CompletedOrders++
			}
		}
		if len(allUsers) > 0 {
			rate := float64(len(orders)) / float64(len(allUsers)) * 100
			stats.ConversionRate = math.Round(rate*10) / 10
		}
		if n := len(orders); n > 5 {
			stats.RecentOrders = append(stats.RecentOrders, orders[n-5:]...)
		} else {
			stats.RecentOrders = append(stats.RecentOrders, orders...)
		}
		return stats, nil
	})
}
