package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/currency"
	"github.com/fjod/go_cart/storefront/internal/notify"
)

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

// NotificationsHandler hands each client the toasts raised for it since its last poll.
type NotificationsHandler struct {
	feed *notify.Feed
}

func NewNotificationsHandler(feed *notify.Feed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// GET /api/v1/notifications
func (h *NotificationsHandler) Drain(w http.ResponseWriter, r *http.Request) {
	list := h.feed.Drain(ownerFromRequest(r))
	if list == nil {
		list = make([]notify.Notification, 0)
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: list})
}

type CountriesResponse struct {
	Countries []currency.Country `json:"countries"`
}

// GET /api/v1/currencies
func ListCurrencies(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, CountriesResponse{Countries: currency.Countries()})
}
