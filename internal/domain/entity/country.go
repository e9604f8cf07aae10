package entity

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeCountry upper-cases and validates an ISO 3166-1 alpha-2 code.
func NormalizeCountry(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return "", false
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", false
	}
	return region.String(), true
}

// CountryName returns the English name for an alpha-2 code, or the code itself.
func CountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

// CountriesFromCodes builds the countries list in the given order.
func CountriesFromCodes(codes []string) []Country {
	out := make([]Country, 0, len(codes))
	for _, c := range codes {
		out = append(out, Country{Code: c, Name: CountryName(c)})
	}
	return out
}
