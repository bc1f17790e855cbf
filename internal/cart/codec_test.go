package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func TestEncodeLines_Shape(t *testing.T) {
	data, err := EncodeLines([]domain.CartLine{
		{ProductID: 1, Name: "Modern Lounge Chair", UnitPriceMinor: 29999, ImageRef: "/chair.jpg", Quantity: 1},
		{ProductID: 4, Variant: "Walnut", Name: "Coffee Table", UnitPriceMinor: 18999, ImageRef: "/table.jpg", Quantity: 2},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"name":"Modern Lounge Chair","price":29999,"image":"/chair.jpg","quantity":1},
		{"id":4,"variant":"Walnut","name":"Coffee Table","price":18999,"image":"/table.jpg","quantity":2}
	]`, string(data))
}

func TestEncodeLines_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeLines(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecodeLines_Corrupt(t *testing.T) {
	_, err := DecodeLines([]byte(`{"id":1}`))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := []domain.CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Variant: "Red", Quantity: 1},
		{ProductID: 2, Quantity: -1},
		{ProductID: 1, Quantity: 4},
	}
	out := normalize(in)
	require.Len(t, out, 2)
	assert.Equal(t, domain.CartLine{ProductID: 1, Quantity: 5}, out[0])
	assert.Equal(t, "Red", out[1].Variant)
}
