package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

// OrderLookup finds placed orders.
type OrderLookup interface {
	Get(id string) (domain.Order, error)
	ListByOwner(owner string) []domain.Order
}

type OrdersHandler struct {
	orders OrderLookup
}

func NewOrdersHandler(o OrderLookup) *OrdersHandler {
	return &OrdersHandler{orders: o}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orders.ListByOwner(ownerFromRequest(r)))
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := h.orders.Get(orderID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	// other owners' orders are reported as missing
	if order.Owner != ownerFromRequest(r) {
		handleError(w, r, orders.ErrOrderNotFound)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
