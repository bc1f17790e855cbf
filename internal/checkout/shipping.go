package checkout

const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingSameDay  = "same-day"

	ExpressShippingMinor int64 = 4999
	SameDayShippingMinor int64 = 9999
)

type ShippingOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price"`
	Estimate   string `json:"estimate"`
}

// ShippingOptions lists the catalog. Standard costs whatever the cart charges for shipping.
func ShippingOptions(cartShippingMinor int64) []ShippingOption {
	return []ShippingOption{
		{ID: ShippingStandard, Name: "Standard Shipping", PriceMinor: cartShippingMinor, Estimate: "5-7 business days"},
		{ID: ShippingExpress, Name: "Express Shipping", PriceMinor: ExpressShippingMinor, Estimate: "2-3 business days"},
		{ID: ShippingSameDay, Name: "Same Day Delivery", PriceMinor: SameDayShippingMinor, Estimate: "Delivered today"},
	}
}

func lookupShippingOption(id string, cartShippingMinor int64) (ShippingOption, bool) {
	for _, opt := range ShippingOptions(cartShippingMinor) {
		if opt.ID == id {
			return opt, true
		}
	}
	return ShippingOption{}, false
}
