// Package currency converts base-currency (KES) minor units into display strings.
// Rates are a static table; nothing here takes part in pricing arithmetic.
package currency

import (
	"errors"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const BaseCode = "KES"

var ErrUnknownCountry = errors.New("unknown country")

type Currency struct {
	Code         string  `json:"code"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	ExchangeRate float64 `json:"exchange_rate"`
}

type Country struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Currency Currency `json:"currency"`
}

var currencies = map[string]Currency{
	"KES": {Code: "KES", Symbol: "KSh", Name: "Kenyan Shilling", ExchangeRate: 1},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", ExchangeRate: 0.0078},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", ExchangeRate: 0.0072},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", ExchangeRate: 0.0062},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", ExchangeRate: 1.17},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", ExchangeRate: 0.056},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", ExchangeRate: 0.65},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar", ExchangeRate: 0.012},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", ExchangeRate: 0.011},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand", ExchangeRate: 0.14},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", ExchangeRate: 3.56},
	"EGP": {Code: "EGP", Symbol: "E£", Name: "Egyptian Pound", ExchangeRate: 0.24},
	"GHS": {Code: "GHS", Symbol: "GH₵", Name: "Ghanaian Cedi", ExchangeRate: 0.095},
	"UGX": {Code: "UGX", Symbol: "USh", Name: "Ugandan Shilling", ExchangeRate: 29.1},
	"TZS": {Code: "TZS", Symbol: "TSh", Name: "Tanzanian Shilling", ExchangeRate: 19.6},
	"RWF": {Code: "RWF", Symbol: "RF", Name: "Rwandan Franc", ExchangeRate: 9.3},
}

var countries = []struct {
	code, name, currency string
}{
	{"KE", "Kenya", "KES"},
	{"US", "United States", "USD"},
	{"GB", "United Kingdom", "GBP"},
	{"DE", "Germany", "EUR"},
	{"FR", "France", "EUR"},
	{"JP", "Japan", "JPY"},
	{"CN", "China", "CNY"},
	{"IN", "India", "INR"},
	{"AU", "Australia", "AUD"},
	{"CA", "Canada", "CAD"},
	{"ZA", "South Africa", "ZAR"},
	{"NG", "Nigeria", "NGN"},
	{"EG", "Egypt", "EGP"},
	{"GH", "Ghana", "GHS"},
	{"UG", "Uganda", "UGX"},
	{"TZ", "Tanzania", "TZS"},
	{"RW", "Rwanda", "RWF"},
}

// Countries lists the supported countries; Kenya first as the default.
func Countries() []Country {
	out := make([]Country, 0, len(countries))
	for _, c := range countries {
		out = append(out, Country{Code: c.code, Name: c.name, Currency: currencies[c.currency]})
	}
	return out
}

func LookupCountry(code string) (Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range countries {
		if c.code == code {
			return Country{Code: c.code, Name: c.name, Currency: currencies[c.currency]}, nil
		}
	}
	return Country{}, ErrUnknownCountry
}

// Formatter renders amounts for one display currency.
type Formatter struct {
	currency Currency
	printer  *message.Printer
}

func NewFormatter(c Currency) *Formatter {
	return &Formatter{currency: c, printer: message.NewPrinter(language.English)}
}

// ForCountry returns the formatter for a country code, falling back to the base currency.
func ForCountry(code string) *Formatter {
	country, err := LookupCountry(code)
	if err != nil {
		return NewFormatter(currencies[BaseCode])
	}
	return NewFormatter(country.Currency)
}

func (f *Formatter) Currency() Currency {
	return f.currency
}

// FormatAmount converts minor units of the base currency to the display currency.
func (f *Formatter) FormatAmount(minorUnits int64) string {
	converted := float64(minorUnits) / 100 * f.currency.ExchangeRate
	if f.currency.Code == "JPY" || f.currency.Code == "KRW" {
		return f.currency.Symbol + f.printer.Sprintf("%.0f", math.Round(converted))
	}
	return f.currency.Symbol + f.printer.Sprintf("%.2f", converted)
}
