package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/currency"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const maxQuantity = 99

// CartProvider returns the cart store of an owner.
type CartProvider interface {
	Get(ctx context.Context, owner string) (*cart.Store, error)
}

type CartHandler struct {
	carts   CartProvider
	catalog ProductCatalog
	timeout time.Duration
}

func NewCartHandler(carts CartProvider, c ProductCatalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: c,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ApplyPromoRequestDTO struct {
	Code string `json:"code"`
}

// FormattedTotals are the totals rendered in the display currency.
type FormattedTotals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type CartResponseDTO struct {
	Items     []domain.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
	PromoCode string            `json:"promo_code,omitempty"`
	Totals    domain.Totals     `json:"totals"`
	Currency  currency.Currency `json:"currency"`
	Formatted FormattedTotals   `json:"formatted"`
}

func newCartResponse(s *cart.Store, country string) CartResponseDTO {
	lines, promo, totals := s.Snapshot()
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	if lines == nil {
		lines = make([]domain.CartLine, 0)
	}
	f := currency.ForCountry(country)
	return CartResponseDTO{
		Items:     lines,
		ItemCount: count,
		PromoCode: promo,
		Totals:    totals,
		Currency:  f.Currency(),
		Formatted: FormattedTotals{
			Subtotal: f.FormatAmount(totals.SubtotalMinor),
			Discount: f.FormatAmount(totals.DiscountMinor),
			Shipping: f.FormatAmount(totals.ShippingMinor),
			Tax:      f.FormatAmount(totals.TaxMinor),
			Total:    f.FormatAmount(totals.TotalMinor),
		},
	}
}

func (h *CartHandler) store(ctx context.Context, w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	s, err := h.carts.Get(ctx, ownerFromRequest(r))
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	return s, true
}

// GET /api/v1/cart?country=KE
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(s, r.URL.Query().Get("country")))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	if err := s.AddItem(ctx, product.Item(strings.TrimSpace(req.Variant)), req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCartResponse(s, r.URL.Query().Get("country")))
}

// PUT /api/v1/cart/items/{product_id}?variant=
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// zero removes the line
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	if err := s.UpdateQuantity(ctx, productID, req.Quantity, r.URL.Query().Get("variant")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(s, r.URL.Query().Get("country")))
}

// DELETE /api/v1/cart/items/{product_id}?variant=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	if err := s.RemoveItem(ctx, productID, r.URL.Query().Get("variant")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(s, r.URL.Query().Get("country")))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	if err := s.ClearCart(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(s, r.URL.Query().Get("country")))
}

// POST /api/v1/cart/promo
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyPromoRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	s, ok := h.store(ctx, w, r)
	if !ok {
		return
	}
	if err := s.ApplyPromoCode(ctx, req.Code); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(s, r.URL.Query().Get("country")))
}
