// internal/domain/currency/converter.go
package currency

import (
	"math"
	"strconv"
	"strings"
)

// rates expresses 1 base-currency unit in each currency. Unknown codes
// fall back to 1.0 (treated as base currency), never an error.
var rates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"INR": 83.30,
	"JPY": 151.40,
	"AUD": 1.52,
	"CAD": 1.36,
	"SGD": 1.35,
	"CNY": 7.24,
	"BRL": 5.06,
	"MXN": 17.15,
	"AED": 3.67,
}

// symbols maps currency codes to display symbols. Unmapped codes render
// as the raw code.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"SGD": "S$",
	"CNY": "¥",
	"BRL": "R$",
	"MXN": "MX$",
	"AED": "د.إ",
}

// Converter converts monetary amounts between currencies using the
// static rate table. All math stays in floating point; rounding happens
// only at display time (Format) or at the gateway boundary (Subunits).
type Converter struct {
	base string
}

// NewConverter creates a converter with the given base currency code
func NewConverter(base string) *Converter {
	return &Converter{base: normalize(base)}
}

// Base returns the base currency code
func (c *Converter) Base() string {
	return c.base
}

// Rate returns the multiplier expressing 1 base unit in the given
// currency. Unknown codes default to 1.0.
func (c *Converter) Rate(code string) float64 {
	if rate, ok := rates[normalize(code)]; ok {
		return rate
	}
	return 1.0
}

// Normalize uppercases and trims a currency code, falling back to the
// base currency when empty
func (c *Converter) Normalize(code string) string {
	n := normalize(code)
	if n == "" {
		return c.base
	}
	return n
}

// Known reports whether the code is in the rate table
func (c *Converter) Known(code string) bool {
	_, ok := rates[normalize(code)]
	return ok
}

// Convert converts an amount between currencies, routing through the
// base currency. Same-currency conversions return the amount unchanged
// to avoid needless floating-point drift.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	if normalize(from) == normalize(to) {
		return amount
	}
	return amount / c.Rate(from) * c.Rate(to)
}

// Format renders an amount for display: symbol (or the raw code when
// unmapped) followed by the amount at fixed decimals.
func (c *Converter) Format(amount float64, code string, decimals int) string {
	symbol, ok := symbols[normalize(code)]
	if !ok {
		symbol = normalize(code)
	}
	return symbol + strconv.FormatFloat(amount, 'f', decimals, 64)
}

// Subunits converts a decimal amount to the smallest currency subunit
// (cents, paise) for the payment gateway. The single place a total is
// rounded before display.
func Subunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Rates returns a copy of the static rate table for client consumption
func (c *Converter) Rates() map[string]float64 {
	out := make(map[string]float64, len(rates))
	for code, rate := range rates {
		out[code] = rate
	}
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
