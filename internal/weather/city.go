// Package weather provides the city-name utilities used to form weather
// queries, plus a small OpenWeatherMap client for destination conditions.
package weather

import (
	"regexp"
	"strings"
)

var iataRe = regexp.MustCompile(`\((\w{3})\)`)

// ExtractIATA pulls the 3-letter code out of a display string like
// "Istanbul Airport (IST)". Input without a parenthesized code is returned
// unchanged.
func ExtractIATA(airport string) string {
	if m := iataRe.FindStringSubmatch(airport); m != nil {
		return m[1]
	}
	return airport
}

// ExtractCityName reduces a display string like "Baruun Urt Airport (UUN)"
// or "London, United Kingdom" to a bare city name: parenthesized codes and
// the literal "Airport" suffix are stripped, trailing hyphenated text is
// dropped, and only the text before the first comma is kept.
func ExtractCityName(city string) string {
	if i := strings.Index(city, "("); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	if strings.Contains(city, "Airport") {
		city = strings.TrimSpace(strings.ReplaceAll(city, "Airport", ""))
	}
	if i := strings.Index(city, "-"); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	if i := strings.Index(city, ","); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	return city
}
