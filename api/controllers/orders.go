package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/The-WildNuts/The-Wild-Nuts/api/middleware"
	"github.com/The-WildNuts/The-Wild-Nuts/api/responses"
	"github.com/The-WildNuts/The-Wild-Nuts/api/validators"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/orders"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

type createOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Variant   string `json:"variant"`
	Price     int    `json:"price" validate:"min=0"`
}

type createOrderRequest struct {
	Items       []createOrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount json.Number       `json:"total_amount" validate:"required"`
}

// OrderCreate places an order for the authenticated user. The buyer's
// identity comes from the token, never the body.
func OrderCreate(svc orders.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userName := middleware.UsernameFromContext(r.Context())
		if user, err := usersSvc.ByEmail(r.Context(), email); err == nil && user.FullName != "" {
			userName = user.FullName
		}

		items := make([]orders.Item, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, orders.Item{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				Variant:   item.Variant,
				Price:     item.Price,
			})
		}

		order, err := svc.Create(r.Context(), orders.NewOrder{
			Email:       email,
			UserName:    userName,
			Items:       items,
			TotalAmount: payload.TotalAmount.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// UserOrders lists the authenticated user's order history.
func UserOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		list, err := svc.ForUser(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}

// OrderTracking resolves one order by ID. Public so customers can track
// from the confirmation link without logging in.
func OrderTracking(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		order, err := svc.ByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order": order})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderStatusUpdate moves an order's tracking stage and notifies the
// buyer by email.
func OrderStatusUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateStatus(r.Context(), orderID, strings.TrimSpace(payload.Status)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"order_id": orderID,
			"status":   payload.Status,
		})
	}
}
