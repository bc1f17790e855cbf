package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// handleError converts storefront errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   verr.Message,
			Code:    "validation_failed",
			Details: verr.Step.String(),
			Fields:  verr.Fields,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, cart.ErrInvalidPromo):
		httpStatus, code = http.StatusBadRequest, "invalid_promo_code"
	case errors.Is(err, cart.ErrPromoAlreadyActive):
		httpStatus, code = http.StatusConflict, "promo_already_active"
	case errors.Is(err, cart.ErrPromoInFlight):
		httpStatus, code = http.StatusConflict, "promo_in_progress"
	case errors.Is(err, checkout.ErrPlacementInFlight):
		httpStatus, code = http.StatusConflict, "placement_in_progress"
	case errors.Is(err, checkout.ErrSessionClosed):
		httpStatus, code = http.StatusConflict, "session_closed"
	case errors.Is(err, checkout.IllegalTransitionError):
		httpStatus, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, checkout.ErrSessionNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, orders.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		zap.L().Error("request failed",
			zap.String("request_id", getRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
