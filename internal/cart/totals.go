package cart

import (
	"slices"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) ActivePromoCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promo
}

func (s *Store) Rules() pricing.Rules {
	return s.rules
}

func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Subtotal(s.lines)
}

// CalculateDiscount resolves override, or the active code when override is empty,
// against the current subtotal.
func (s *Store) CalculateDiscount(override string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code := override
	if code == "" {
		code = s.promo
	}
	return s.rules.Discount(code, pricing.Subtotal(s.lines))
}

func (s *Store) CalculateShipping() int64 {
	return s.rules.Shipping(s.Subtotal())
}

func (s *Store) CalculateTax() int64 {
	return s.rules.Tax(s.Subtotal())
}

// CalculateTotal is subtotal + shipping + tax - discount. A nil override uses the active promo.
func (s *Store) CalculateTotal(discountOverride *int64) int64 {
	t := s.Totals()
	if discountOverride != nil {
		return pricing.Total(t.SubtotalMinor, t.ShippingMinor, t.TaxMinor, *discountOverride)
	}
	return t.TotalMinor
}

// Totals derives every amount from one consistent view of the cart.
func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	lines, promo := s.lines, s.promo
	s.mu.RUnlock()
	return computeTotals(s.rules, lines, promo)
}

// Snapshot returns lines, promo code and totals from the same instant.
func (s *Store) Snapshot() ([]domain.CartLine, string, domain.Totals) {
	s.touch()
	s.mu.RLock()
	lines, promo := slices.Clone(s.lines), s.promo
	s.mu.RUnlock()
	return lines, promo, computeTotals(s.rules, lines, promo)
}

func computeTotals(rules pricing.Rules, lines []domain.CartLine, promo string) domain.Totals {
	subtotal := pricing.Subtotal(lines)
	t := domain.Totals{
		SubtotalMinor: subtotal,
		DiscountMinor: rules.Discount(promo, subtotal),
		ShippingMinor: rules.Shipping(subtotal),
		TaxMinor:      rules.Tax(subtotal),
	}
	t.TotalMinor = pricing.Total(t.SubtotalMinor, t.ShippingMinor, t.TaxMinor, t.DiscountMinor)
	return t
}
