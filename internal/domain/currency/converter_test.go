package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertIdentity(t *testing.T) {
	c := NewConverter("USD")

	for _, code := range []string{"USD", "EUR", "INR", "JPY", "XYZ"} {
		assert.Equal(t, 19.99, c.Convert(19.99, code, code), "identity round-trip for %s", code)
	}

	// case-insensitive identity
	assert.Equal(t, 7.5, c.Convert(7.5, "usd", "USD"))
}

func TestConvertThroughBase(t *testing.T) {
	c := NewConverter("USD")

	// 10 USD -> EUR
	assert.InDelta(t, 10*0.92, c.Convert(10, "USD", "EUR"), 1e-9)
	// EUR -> INR routes through the base
	assert.InDelta(t, 10/0.92*83.30, c.Convert(10, "EUR", "INR"), 1e-9)
}

func TestConvertUnknownCodeDefaultsToBase(t *testing.T) {
	c := NewConverter("USD")

	// unknown code behaves as rate 1.0, never errors
	assert.InDelta(t, 10*0.92, c.Convert(10, "XYZ", "EUR"), 1e-9)
	assert.False(t, c.Known("XYZ"))
	assert.True(t, c.Known("eur"))
}

func TestConvertDistributesOverSum(t *testing.T) {
	c := NewConverter("USD")

	amounts := []float64{5.00, 3.25, 12.99}
	froms := []string{"USD", "EUR", "USD"}

	var convertedSum float64
	var perItemSum float64
	var usdSubtotal, eurSubtotal float64

	for i, amount := range amounts {
		perItemSum += c.Convert(amount, froms[i], "INR")
		if froms[i] == "USD" {
			usdSubtotal += amount
		} else {
			eurSubtotal += amount
		}
	}
	convertedSum = c.Convert(usdSubtotal, "USD", "INR") + c.Convert(eurSubtotal, "EUR", "INR")

	assert.InDelta(t, perItemSum, convertedSum, 1e-9, "conversion must distribute over sums")
}

func TestFormat(t *testing.T) {
	c := NewConverter("USD")

	assert.Equal(t, "$13.00", c.Format(13, "USD", 2))
	assert.Equal(t, "€9.20", c.Format(9.2, "eur", 2))
	assert.Equal(t, "₹833.0", c.Format(833, "INR", 1))
	// unmapped code renders raw
	assert.Equal(t, "XYZ5.00", c.Format(5, "xyz", 2))
}

func TestSubunits(t *testing.T) {
	assert.Equal(t, int64(1300), Subunits(13.00))
	assert.Equal(t, int64(1), Subunits(0.005))
	assert.Equal(t, int64(1083), Subunits(10.829999999999998))
	assert.Equal(t, int64(0), Subunits(0))
}

func TestRatesCopy(t *testing.T) {
	c := NewConverter("USD")

	r := c.Rates()
	r["USD"] = 42
	assert.Equal(t, 1.0, c.Rate("USD"), "Rates must return a copy")
}
