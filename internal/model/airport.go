package model

import "fmt"

// Airport is one row of the local airport reference dataset
// (OpenFlights format).
type Airport struct {
	ID      int64
	Name    string
	City    string
	Country string
	IATA    string
}

// DisplayName renders the airport the way the picker shows it,
// e.g. "Istanbul - Istanbul Airport (IST)".
func (a Airport) DisplayName() string {
	return fmt.Sprintf("%s - %s (%s)", a.City, a.Name, a.IATA)
}
