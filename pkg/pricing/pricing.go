// Package pricing computes what contacts and bundles cost.
//
// Per-contact pricing applies to filtered purchases and depends on the
// countries in the filter. Bundle pricing applies to curated lists.
package pricing

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier prices per contact
var (
	// NoCountryPrice applies when the filter names no country at all
	NoCountryPrice = decimal.RequireFromString("0.10")
	// BasePrice seeds the fold; it equals the Brazil tier
	BasePrice     = decimal.RequireFromString("0.08")
	BrazilPrice   = decimal.RequireFromString("0.08")
	LatAmPrice    = decimal.RequireFromString("0.10")
	EuropePrice   = decimal.RequireFromString("0.15")
	AsiaPrice     = decimal.RequireFromString("0.18")
	NorthAmPrice  = decimal.RequireFromString("0.15")
	FallbackPrice = decimal.RequireFromString("0.12")
)

// countryTiers maps folded country names, in English and in the Portuguese
// names the dataset was first loaded with, to their tier price.
var countryTiers = map[string]decimal.Decimal{}

func init() {
	add := func(price decimal.Decimal, names ...string) {
		for _, n := range names {
			countryTiers[fold(n)] = price
		}
	}
	add(BrazilPrice, "Brazil", "Brasil")
	add(LatAmPrice,
		"Argentina", "Chile", "Colombia", "Colômbia", "Peru", "Uruguay", "Uruguai",
		"Paraguay", "Paraguai", "Mexico", "México")
	add(EuropePrice,
		"Portugal", "Spain", "Espanha", "France", "França", "Germany", "Alemanha",
		"Italy", "Itália", "United Kingdom", "Reino Unido")
	add(AsiaPrice,
		"China", "Japan", "Japão", "South Korea", "Coreia do Sul", "India", "Índia")
	add(NorthAmPrice, "United States", "Estados Unidos", "Canada", "Canadá")
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lower-cases s and strips accents so "Canadá" and "canada" match
func fold(s string) string {
	out, _, err := transform.String(folder, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// CountryPrice returns the tier price for one country
func CountryPrice(country string) decimal.Decimal {
	if p, ok := countryTiers[fold(country)]; ok {
		return p
	}
	return FallbackPrice
}

// PerContact returns the price of one contact for a filter naming countries.
// The most expensive country wins. No countries at all costs NoCountryPrice,
// which is not the same as the fallback for an unknown country.
func PerContact(countries []string) decimal.Decimal {
	if len(countries) == 0 {
		return NoCountryPrice
	}
	price := BasePrice
	for _, c := range countries {
		price = decimal.Max(price, CountryPrice(c))
	}
	return price
}

// Total is count × per-contact price, rounded to cents
func Total(count int, perContact decimal.Decimal) decimal.Decimal {
	return perContact.Mul(decimal.NewFromInt(int64(count))).Round(2)
}

// Bundle returns what a curated list costs: the discount price when it is set
// and lower than the list price, otherwise the list price.
func Bundle(price decimal.Decimal, discount decimal.NullDecimal) decimal.Decimal {
	if discount.Valid && discount.Decimal.IsPositive() && discount.Decimal.LessThan(price) {
		return discount.Decimal
	}
	return price
}
