package domain

import "fmt"

// Item is a purchasable product as offered to the cart, without a quantity.
type Item struct {
	ProductID      int64
	Variant        string
	Name           string
	UnitPriceMinor int64
	ImageRef       string
}

// CartLine is one entry of the cart. Variant "" is the base variant.
type CartLine struct {
	ProductID      int64  `json:"id"`
	Variant        string `json:"variant,omitempty"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"price"`
	ImageRef       string `json:"image"`
	Quantity       int    `json:"quantity"`
}

// LineKey identifies a cart line; at most one line exists per key.
type LineKey struct {
	ProductID int64
	Variant   string
}

func (k LineKey) String() string {
	if k.Variant == "" {
		return fmt.Sprintf("%d", k.ProductID)
	}
	return fmt.Sprintf("%d/%s", k.ProductID, k.Variant)
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Variant: l.Variant}
}

// LineTotalMinor is unit price times quantity.
func (l CartLine) LineTotalMinor() int64 {
	return l.UnitPriceMinor * int64(l.Quantity)
}

func (i Item) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Variant: i.Variant}
}

// Line builds a cart line for the item with the given quantity.
func (i Item) Line(quantity int) CartLine {
	return CartLine{
		ProductID:      i.ProductID,
		Variant:        i.Variant,
		Name:           i.Name,
		UnitPriceMinor: i.UnitPriceMinor,
		ImageRef:       i.ImageRef,
		Quantity:       quantity,
	}
}

// Totals are the derived monetary values of a cart or checkout, in minor units.
type Totals struct {
	SubtotalMinor int64 `json:"subtotal"`
	DiscountMinor int64 `json:"discount"`
	ShippingMinor int64 `json:"shipping"`
	TaxMinor      int64 `json:"tax"`
	TotalMinor    int64 `json:"total"`
}
