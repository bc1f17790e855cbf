package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// PaymentDetails is the method-specific part of a checkout session. Each payment
// method has exactly one variant carrying only the fields it needs.
type PaymentDetails interface {
	Method() domain.PaymentMethod
	missing() []string
}

type CardDetails struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"cardExpiry"`
	CVV    string `json:"cardCvv"`
	Name   string `json:"cardName"`
}

type MpesaDetails struct {
	Phone string `json:"mpesaNumber"`
}

type PayPalDetails struct{}

type BankTransferDetails struct{}

type CashOnDeliveryDetails struct{}

func (CardDetails) Method() domain.PaymentMethod           { return domain.PaymentCreditCard }
func (MpesaDetails) Method() domain.PaymentMethod          { return domain.PaymentMpesa }
func (PayPalDetails) Method() domain.PaymentMethod         { return domain.PaymentPayPal }
func (BankTransferDetails) Method() domain.PaymentMethod   { return domain.PaymentBankTransfer }
func (CashOnDeliveryDetails) Method() domain.PaymentMethod { return domain.PaymentCashOnDelivery }

func (d CardDetails) missing() []string {
	return blank(
		field{"cardNumber", d.Number},
		field{"cardExpiry", d.Expiry},
		field{"cardCvv", d.CVV},
		field{"cardName", d.Name},
	)
}

func (d MpesaDetails) missing() []string {
	return blank(field{"mpesaNumber", d.Phone})
}

func (PayPalDetails) missing() []string         { return nil }
func (BankTransferDetails) missing() []string   { return nil }
func (CashOnDeliveryDetails) missing() []string { return nil }

// NewPaymentDetails returns the empty variant for method, or nil for an unknown method.
func NewPaymentDetails(method domain.PaymentMethod) PaymentDetails {
	switch method {
	case domain.PaymentCreditCard:
		return CardDetails{}
	case domain.PaymentMpesa:
		return MpesaDetails{}
	case domain.PaymentPayPal:
		return PayPalDetails{}
	case domain.PaymentBankTransfer:
		return BankTransferDetails{}
	case domain.PaymentCashOnDelivery:
		return CashOnDeliveryDetails{}
	default:
		return nil
	}
}

// EncodePaymentDetails writes d as a JSON object tagged with its "method".
func EncodePaymentDetails(d PaymentDetails) ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	fields, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(fields, &obj); err != nil {
		return nil, err
	}
	method, _ := json.Marshal(d.Method())
	obj["method"] = method
	return json.Marshal(obj)
}

// DecodePaymentDetails reads the variant named by the "method" key.
func DecodePaymentDetails(data []byte) (PaymentDetails, error) {
	var tag struct {
		Method domain.PaymentMethod `json:"method"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	switch tag.Method {
	case domain.PaymentCreditCard:
		var d CardDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case domain.PaymentMpesa:
		var d MpesaDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case domain.PaymentPayPal, domain.PaymentBankTransfer, domain.PaymentCashOnDelivery:
		return NewPaymentDetails(tag.Method), nil
	default:
		return nil, fmt.Errorf("unknown payment method %q", tag.Method)
	}
}

// redact hides card secrets before details leave the process.
func redact(d PaymentDetails) PaymentDetails {
	card, ok := d.(CardDetails)
	if !ok {
		return d
	}
	if n := len(card.Number); n > 4 {
		card.Number = strings.Repeat("*", n-4) + card.Number[n-4:]
	}
	if card.CVV != "" {
		card.CVV = "***"
	}
	return card
}

type field struct {
	name, value string
}

func blank(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}
