// Package pricing holds the storefront's pricing rules: promo catalog,
// shipping threshold and tax rate. All amounts are minor units of the base currency.
package pricing

import (
	"errors"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	DefaultFlatShippingMinor     int64 = 2999
	DefaultFreeShippingOverMinor int64 = 50000
	DefaultTaxRateBP             int64 = 1600

	basisPoints int64 = 10000
)

var ErrUnknownPromo = errors.New("unknown promo code")

type RuleKind string

const (
	RulePercent RuleKind = "percent"
	RuleFlat    RuleKind = "flat"
)

// Rule is a promo discount: a percentage of subtotal in basis points, or a flat amount.
type Rule struct {
	Kind  RuleKind `yaml:"kind" json:"kind"`
	Value int64    `yaml:"value" json:"value"`
}

func Percent(bp int64) Rule { return Rule{Kind: RulePercent, Value: bp} }

func Flat(minor int64) Rule { return Rule{Kind: RuleFlat, Value: minor} }

// Apply returns the discount for the given subtotal. Flat discounts never exceed the subtotal.
func (r Rule) Apply(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	switch r.Kind {
	case RulePercent:
		return portion(subtotal, r.Value)
	case RuleFlat:
		return min(r.Value, subtotal)
	default:
		return 0
	}
}

// DefaultPromos is the storefront promo catalog.
func DefaultPromos() map[string]Rule {
	return map[string]Rule{
		"discount10": Percent(1000),
		"discount20": Percent(2000),
		"free50":     Flat(5000),
		"bedroom15":  Percent(1500),
	}
}

type Rules struct {
	FlatShippingMinor     int64
	FreeShippingOverMinor int64
	TaxRateBP             int64
	Promos                map[string]Rule
}

func DefaultRules() Rules {
	return Rules{
		FlatShippingMinor:     DefaultFlatShippingMinor,
		FreeShippingOverMinor: DefaultFreeShippingOverMinor,
		TaxRateBP:             DefaultTaxRateBP,
		Promos:                DefaultPromos(),
	}
}

// NormalizeCode lower-cases and trims a promo code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// LookupPromo resolves a code case-insensitively.
func (r Rules) LookupPromo(code string) (string, Rule, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return "", Rule{}, ErrUnknownPromo
	}
	rule, ok := r.Promos[normalized]
	if !ok {
		return "", Rule{}, ErrUnknownPromo
	}
	return normalized, rule, nil
}

func Subtotal(lines []domain.CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.LineTotalMinor()
	}
	return subtotal
}

// Discount is 0 for an empty or unrecognised code.
func (r Rules) Discount(code string, subtotal int64) int64 {
	_, rule, err := r.LookupPromo(code)
	if err != nil {
		return 0
	}
	return rule.Apply(subtotal)
}

// Shipping is free strictly above the threshold, flat otherwise.
func (r Rules) Shipping(subtotal int64) int64 {
	if subtotal > r.FreeShippingOverMinor {
		return 0
	}
	return r.FlatShippingMinor
}

// Tax applies to the subtotal before discount.
func (r Rules) Tax(subtotal int64) int64 {
	return portion(subtotal, r.TaxRateBP)
}

func Total(subtotal, shipping, tax, discount int64) int64 {
	return subtotal + shipping + tax - discount
}

// portion computes amount*bp/10000 rounded half up.
func portion(amount, bp int64) int64 {
	if amount <= 0 || bp <= 0 {
		return 0
	}
	return (amount*bp + basisPoints/2) / basisPoints
}
