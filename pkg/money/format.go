package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// currencyInfo describes how a currency is displayed.
type currencyInfo struct {
	symbol   string
	exponent int32
	prefix   bool
}

var currencies = map[string]currencyInfo{
	"USD": {symbol: "$", exponent: 2, prefix: true},
	"CAD": {symbol: "$", exponent: 2, prefix: true},
	"AUD": {symbol: "$", exponent: 2, prefix: true},
	"EUR": {symbol: "€", exponent: 2, prefix: true},
	"GBP": {symbol: "£", exponent: 2, prefix: true},
	"JPY": {symbol: "¥", exponent: 0, prefix: true},
	"SAR": {symbol: "SAR", exponent: 2, prefix: false},
	"INR": {symbol: "₹", exponent: 2, prefix: true},
	"SEK": {symbol: "kr", exponent: 2, prefix: false},
}

// Exponent returns the number of minor-unit digits for a currency code.
// Unknown codes get the common two-digit exponent.
func Exponent(currency string) int32 {
	if info, ok := currencies[currency]; ok {
		return info.exponent
	}
	return 2
}

// Format renders an amount for display, e.g. Format(d, "USD") -> "$14.50".
// Unknown currency codes fall back to "CODE 14.50".
func Format(amount decimal.Decimal, currency string) string {
	info, ok := currencies[currency]
	if !ok {
		return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
	}
	fixed := amount.StringFixed(info.exponent)
	if info.prefix {
		return info.symbol + fixed
	}
	return fixed + " " + info.symbol
}
