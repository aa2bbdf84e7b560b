// Package phone normalizes the phone numbers of company records.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// regionCodes maps the dataset's country names to ISO region codes
var regionCodes = map[string]string{
	"brazil":         "BR",
	"brasil":         "BR",
	"argentina":      "AR",
	"chile":          "CL",
	"colombia":       "CO",
	"peru":           "PE",
	"uruguay":        "UY",
	"paraguay":       "PY",
	"mexico":         "MX",
	"portugal":       "PT",
	"spain":          "ES",
	"france":         "FR",
	"germany":        "DE",
	"italy":          "IT",
	"united kingdom": "GB",
	"china":          "CN",
	"japan":          "JP",
	"south korea":    "KR",
	"india":          "IN",
	"united states":  "US",
	"canada":         "CA",
}

// RegionCode returns the ISO region code for a country name, or "" when unknown
func RegionCode(country string) string {
	return regionCodes[strings.ToLower(strings.TrimSpace(country))]
}

// Normalize formats number in international format (+55 11 98765-4321) when
// it parses as a valid number for the country. Anything else is returned
// trimmed but otherwise untouched.
func Normalize(number, country string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}

	region := RegionCode(country)
	if region == "" && !strings.HasPrefix(number, "+") {
		return number
	}

	parsed, err := phonenumbers.Parse(number, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return number
	}
	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
}
