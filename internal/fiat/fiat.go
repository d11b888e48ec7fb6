// Package fiat knows the fiat currency codes the engine treats as
// conversion targets and parses amounts such as "3.5EUR".
package fiat

import (
	"math"
	"strconv"
	"strings"
)

// codes is ordered as listed to users; names are display names.
var codes = []struct{ code, name string }{
	{"USD", "US Dollar"},
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"CNY", "Chinese Yuan"},
	{"CAD", "Canadian Dollar"},
	{"AUD", "Australian Dollar"},
	{"CHF", "Swiss Franc"},
	{"KRW", "South Korean Won"},
	{"INR", "Indian Rupee"},
	{"BRL", "Brazilian Real"},
	{"RUB", "Russian Ruble"},
	{"TRY", "Turkish Lira"},
	{"ZAR", "South African Rand"},
	{"MXN", "Mexican Peso"},
	{"SGD", "Singapore Dollar"},
	{"HKD", "Hong Kong Dollar"},
	{"NOK", "Norwegian Krone"},
	{"SEK", "Swedish Krona"},
	{"DKK", "Danish Krone"},
	{"NZD", "New Zealand Dollar"},
	{"PLN", "Polish Zloty"},
	{"THB", "Thai Baht"},
	{"TWD", "New Taiwan Dollar"},
	{"CZK", "Czech Koruna"},
	{"HUF", "Hungarian Forint"},
	{"ILS", "Israeli Shekel"},
	{"PHP", "Philippine Peso"},
	{"MYR", "Malaysian Ringgit"},
	{"ARS", "Argentine Peso"},
	{"CLP", "Chilean Peso"},
	{"COP", "Colombian Peso"},
	{"IDR", "Indonesian Rupiah"},
	{"SAR", "Saudi Riyal"},
	{"AED", "UAE Dirham"},
	{"NGN", "Nigerian Naira"},
	{"VND", "Vietnamese Dong"},
	{"PKR", "Pakistani Rupee"},
	{"BDT", "Bangladeshi Taka"},
	{"EGP", "Egyptian Pound"},
}

var names = func() map[string]string {
	m := make(map[string]string, len(codes))
	for _, c := range codes {
		m[c.code] = c.name
	}
	return m
}()

// Amount is a parsed "<number><code>" token.
type Amount struct {
	Value    float64
	Currency string
}

// IsKnown reports whether s is a recognized fiat code, case-insensitively.
func IsKnown(s string) bool {
	_, ok := names[strings.ToUpper(s)]
	return ok
}

// Name returns the display name for code, or code itself when unknown.
func Name(code string) string {
	if n, ok := names[strings.ToUpper(code)]; ok {
		return n
	}
	return code
}

// ParseAmount recognizes tokens like "3.5EUR" or "100usd". Tokens that are
// crypto symbols ("1inch", "3btc"), have no numeric prefix, or carry a
// non-positive amount are rejected so callers fall back to price lookup.
func ParseAmount(s string) (Amount, bool) {
	alpha := strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	if alpha <= 0 {
		return Amount{}, false
	}
	code := strings.ToUpper(s[alpha:])
	if !IsKnown(code) {
		return Amount{}, false
	}
	v, err := strconv.ParseFloat(s[:alpha], 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return Amount{}, false
	}
	return Amount{Value: v, Currency: code}, true
}
