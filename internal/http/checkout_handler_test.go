package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	testContact = checkout.Contact{FirstName: "John", LastName: "Kamau", Email: "user@example.com", Phone: "+254700000000"}
	testAddress = checkout.ShippingAddress{Address: "1 Moi Avenue", City: "Nairobi", PostalCode: "00100", Country: "KE"}
)

func (s *testServer) startCheckout(t *testing.T, opts ...requestOption) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 201, Quantity: 1}, opts...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout", nil, opts...)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[CheckoutResponseDTO](t, rec).Session.ID
}

// toReview walks a fresh session to the review step with an M-Pesa payment.
func (s *testServer) toReview(t *testing.T, id string, opts ...requestOption) {
	t.Helper()
	base := "/api/v1/checkout/" + id
	steps := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodPut, "/contact", testContact},
		{http.MethodPut, "/address", testAddress},
		{http.MethodPost, "/next", nil},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/payment", map[string]string{"method": "mpesa", "mpesaNumber": "0712345678"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/terms", TermsRequestDTO{Accepted: true}},
	}
	for _, st := range steps {
		rec := s.do(t, st.method, base+st.path, st.body, opts...)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", st.method, st.path, rec.Body.String())
	}
}

func TestCheckout_CreateDefaults(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 201, Quantity: 1})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[CheckoutResponseDTO](t, rec)

	assert.NotEmpty(t, got.Session.ID)
	assert.Equal(t, domain.StepInformation, got.Session.Step)
	assert.Equal(t, checkout.ShippingStandard, got.Session.ShippingOptionID)
	assert.Equal(t, domain.PaymentCreditCard, got.Session.PaymentMethod)
	assert.Equal(t, int64(37798), got.Summary.Totals.TotalMinor)
	require.Len(t, got.ShippingOptions, 3)
	assert.Equal(t, int64(2999), got.ShippingOptions[0].PriceMinor)
}

func TestCheckout_PrefillsSignedInUser(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t, asUser("1"))

	rec := s.do(t, http.MethodGet, "/api/v1/checkout/"+id, nil, asUser("1"))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, "John", got.Session.Contact.FirstName)
	assert.Equal(t, "Kamau", got.Session.Contact.LastName)
	assert.Equal(t, "user@example.com", got.Session.Contact.Email)
}

func TestCheckout_GuardReturnsFields(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decode[ErrorResponse](t, rec)
	assert.Equal(t, checkout.MsgRequiredFields, got.Error)
	assert.Contains(t, got.Fields, "firstName")
	assert.Contains(t, got.Fields, "postalCode")
}

func TestCheckout_InvalidShippingAndPayment(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t)
	base := "/api/v1/checkout/" + id

	rec := s.do(t, http.MethodPut, base+"/shipping-option", ShippingOptionRequestDTO{ID: "drone"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/payment", map[string]string{"method": "barter"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/shipping-option", ShippingOptionRequestDTO{ID: checkout.ShippingExpress})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout.ShippingExpress, decode[CheckoutResponseDTO](t, rec).Session.ShippingOptionID)
}

func TestCheckout_CardDetailsAreRedacted(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t)

	rec := s.do(t, http.MethodPut, "/api/v1/checkout/"+id+"/payment", map[string]string{
		"method":     "credit-card",
		"cardNumber": "4111111111111111",
		"cardExpiry": "12/30",
		"cardCvv":    "123",
		"cardName":   "John Kamau",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "4111111111111111")
	assert.NotContains(t, body, `"123"`)
	assert.Contains(t, body, "1111")
}

func TestCheckout_MalformedPaymentKeepsStoredDetails(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t)
	path := "/api/v1/checkout/" + id + "/payment"

	rec := s.do(t, http.MethodPut, path, map[string]string{"method": "mpesa", "mpesaNumber": "0712345678"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, path, map[string]interface{}{"method": "credit-card", "cardNumber": 4111})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/checkout/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[CheckoutResponseDTO](t, rec).Session
	assert.Equal(t, domain.PaymentMpesa, session.PaymentMethod)
	assert.Equal(t, checkout.MpesaDetails{Phone: "0712345678"}, session.PaymentDetails)
}

func TestCheckout_PlaceOrder(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t, asClient("buyer"))
	s.toReview(t, id, asClient("buyer"))

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/place-order", nil, asClient("buyer"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StepConfirmation, got.Session.Step)
	require.Regexp(t, `^ORD-\d{6}$`, got.Session.OrderID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/"+got.Session.OrderID, nil, asClient("buyer"))
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[domain.Order](t, rec)
	assert.Equal(t, int64(37798), order.Totals.TotalMinor)
	assert.Equal(t, domain.PaymentMpesa, order.PaymentMethod)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/"+got.Session.OrderID, nil, asClient("someone-else"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	cart := decode[CartResponseDTO](t, s.do(t, http.MethodGet, "/api/v1/cart", nil, asClient("buyer")))
	assert.Empty(t, cart.Items, "cart is reset after a placed order")

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/previous", nil, asClient("buyer"))
	assert.Equal(t, http.StatusConflict, rec.Code, "confirmation is terminal")

	var titles []string
	for _, n := range s.feed.Drain("client-buyer") {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Order placed")
}

func TestCheckout_DeclinedPaymentReturnsSession(t *testing.T) {
	s := newTestServer(t)
	s.gateway.Succeed = false
	id := s.startCheckout(t)
	s.toReview(t, id)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/next", nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	got := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StepReview, got.Session.Step)
	assert.Equal(t, checkout.MsgPaymentFailed, got.Session.PaymentError)
	assert.Equal(t, testContact, got.Session.Contact)

	s.gateway.Succeed = true
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/place-order", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CheckoutResponseDTO](t, rec).Session.PaymentError)
	assert.Equal(t, 2, s.gateway.Calls())
}

func TestCheckout_PlaceOrderOutsideReview(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/"+id+"/place-order", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, s.gateway.Calls())
}

func TestCheckout_SessionsBelongToOwner(t *testing.T) {
	s := newTestServer(t)
	id := s.startCheckout(t, asClient("a"))

	rec := s.do(t, http.MethodGet, "/api/v1/checkout/"+id, nil, asClient("b"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/checkout/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
