package checkout

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	Unit       string `json:"apartment,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Save       bool   `json:"saveAddress"`
}

// String renders the address on one line for order records.
func (a ShippingAddress) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Address, a.Unit, a.City, a.Region, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Session is the state of one checkout. It is never persisted.
type Session struct {
	ID               string
	Owner            string
	Step             domain.Step
	Contact          Contact
	ShippingAddress  ShippingAddress
	ShippingOptionID string
	PaymentMethod    domain.PaymentMethod
	PaymentDetails   PaymentDetails
	AcceptedTerms    bool
	OrderID          string
	PaymentError     string
	Processing       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type sessionJSON struct {
	ID               string               `json:"id"`
	Owner            string               `json:"owner"`
	Step             domain.Step          `json:"step"`
	Contact          Contact              `json:"contact"`
	ShippingAddress  ShippingAddress      `json:"shippingAddress"`
	ShippingOptionID string               `json:"shippingOption"`
	PaymentMethod    domain.PaymentMethod `json:"paymentMethod"`
	PaymentDetails   json.RawMessage      `json:"paymentDetails"`
	AcceptedTerms    bool                 `json:"acceptedTerms"`
	OrderID          string               `json:"orderId,omitempty"`
	PaymentError     string               `json:"paymentError,omitempty"`
	Processing       bool                 `json:"processing"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	details, err := EncodePaymentDetails(s.PaymentDetails)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sessionJSON{
		ID:               s.ID,
		Owner:            s.Owner,
		Step:             s.Step,
		Contact:          s.Contact,
		ShippingAddress:  s.ShippingAddress,
		ShippingOptionID: s.ShippingOptionID,
		PaymentMethod:    s.PaymentMethod,
		PaymentDetails:   details,
		AcceptedTerms:    s.AcceptedTerms,
		OrderID:          s.OrderID,
		PaymentError:     s.PaymentError,
		Processing:       s.Processing,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var details PaymentDetails
	if len(raw.PaymentDetails) > 0 && string(raw.PaymentDetails) != "null" {
		d, err := DecodePaymentDetails(raw.PaymentDetails)
		if err != nil {
			return fmt.Errorf("payment details: %w", err)
		}
		details = d
	}
	*s = Session{
		ID:               raw.ID,
		Owner:            raw.Owner,
		Step:             raw.Step,
		Contact:          raw.Contact,
		ShippingAddress:  raw.ShippingAddress,
		ShippingOptionID: raw.ShippingOptionID,
		PaymentMethod:    raw.PaymentMethod,
		PaymentDetails:   details,
		AcceptedTerms:    raw.AcceptedTerms,
		OrderID:          raw.OrderID,
		PaymentError:     raw.PaymentError,
		Processing:       raw.Processing,
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
	}
	return nil
}

// Redacted returns a copy safe to show to clients: card number masked, CVV hidden.
func (s Session) Redacted() Session {
	if s.PaymentDetails != nil {
		s.PaymentDetails = redact(s.PaymentDetails)
	}
	return s
}
