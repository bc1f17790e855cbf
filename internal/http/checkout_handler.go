package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CheckoutHandler struct {
	manager *checkout.Manager
	timeout time.Duration
}

func NewCheckoutHandler(m *checkout.Manager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		manager: m,
		timeout: timeout,
	}
}

type ShippingOptionRequestDTO struct {
	ID string `json:"id"`
}

type TermsRequestDTO struct {
	Accepted bool `json:"accepted"`
}

type PaymentMethodDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

type CheckoutResponseDTO struct {
	Session         checkout.Session          `json:"session"`
	Summary         checkout.Summary          `json:"summary"`
	ShippingOptions []checkout.ShippingOption `json:"shipping_options"`
}

func newCheckoutResponse(f *checkout.Flow) CheckoutResponseDTO {
	return CheckoutResponseDTO{
		Session:         f.Snapshot().Redacted(),
		Summary:         f.Summary(),
		ShippingOptions: f.ShippingOptions(),
	}
}

func (h *CheckoutHandler) flow(w http.ResponseWriter, r *http.Request) (*checkout.Flow, bool) {
	f, err := h.manager.Get(chi.URLParam(r, "checkout_id"), ownerFromRequest(r))
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	return f, true
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	f, err := h.manager.Create(ctx, ownerFromRequest(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCheckoutResponse(f))
}

// GET /api/v1/checkout/{checkout_id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCheckoutResponse(f))
}

// PUT /api/v1/checkout/{checkout_id}/contact
func (h *CheckoutHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	var req checkout.Contact
	h.update(w, r, &req, func(f *checkout.Flow) error {
		return f.SetContact(req)
	})
}

// PUT /api/v1/checkout/{checkout_id}/address
func (h *CheckoutHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	var req checkout.ShippingAddress
	h.update(w, r, &req, func(f *checkout.Flow) error {
		return f.SetShippingAddress(req)
	})
}

// PUT /api/v1/checkout/{checkout_id}/shipping-option
func (h *CheckoutHandler) SetShippingOption(w http.ResponseWriter, r *http.Request) {
	var req ShippingOptionRequestDTO
	h.update(w, r, &req, func(f *checkout.Flow) error {
		return f.SelectShippingOption(req.ID)
	})
}

// PUT /api/v1/checkout/{checkout_id}/terms
func (h *CheckoutHandler) SetTerms(w http.ResponseWriter, r *http.Request) {
	var req TermsRequestDTO
	h.update(w, r, &req, func(f *checkout.Flow) error {
		return f.AcceptTerms(req.Accepted)
	})
}

// PUT /api/v1/checkout/{checkout_id}/payment
//
// The body names the method and carries that method's fields, e.g.
// {"method":"mpesa","mpesaNumber":"0712345678"}.
func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}
	var req PaymentMethodDTO
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.Method.Valid() {
		handleError(w, r, &checkout.ValidationError{
			Step:    f.Snapshot().Step,
			Fields:  []string{"paymentMethod"},
			Message: checkout.MsgInvalidPayment,
		})
		return
	}
	// nothing is stored unless the whole body decodes
	details, err := checkout.DecodePaymentDetails(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := f.SetPaymentDetails(details); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCheckoutResponse(f))
}

// POST /api/v1/checkout/{checkout_id}/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(ctx context.Context, f *checkout.Flow) error {
		return f.Next(ctx)
	})
}

// POST /api/v1/checkout/{checkout_id}/previous
func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(_ context.Context, f *checkout.Flow) error {
		return f.Previous()
	})
}

// POST /api/v1/checkout/{checkout_id}/place-order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(ctx context.Context, f *checkout.Flow) error {
		return f.PlaceOrder(ctx)
	})
}

func (h *CheckoutHandler) update(w http.ResponseWriter, r *http.Request, req interface{}, apply func(f *checkout.Flow) error) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := decodeJSON(r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := apply(f); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCheckoutResponse(f))
}

func (h *CheckoutHandler) advance(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, f *checkout.Flow) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := step(ctx, f); err != nil {
		// a declined payment still returns the session so the client can show the retry state
		if errors.Is(err, checkout.ErrPaymentFailed) {
			respondJSON(w, http.StatusPaymentRequired, newCheckoutResponse(f))
			return
		}
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCheckoutResponse(f))
}
