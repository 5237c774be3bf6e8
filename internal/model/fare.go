// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// FlightType distinguishes nonstop itineraries from ones with connections.
type FlightType string

// Flight type values.
const (
	FlightDirect     FlightType = "Direct"
	FlightConnecting FlightType = "Connecting"
)

// FareQuote is one priced itinerary offer for a specific departure date,
// as produced by the fare provider. Quotes are immutable once fetched.
type FareQuote struct {
	Date             time.Time
	Origin           string
	Destination      string
	Price            string // formatted, e.g. "123.45 EUR" or "123.45 USD - for [2 Adults]"
	FlightType       FlightType
	Route            []string // ordered IATA codes, origin first
	Duration         time.Duration
	DepartureTime    string // HH:MM local
	ArrivalTime      string // HH:MM local
	Carriers         []string
	FlightNumbers    []string
	Currency         string
	ConversionFailed bool
}

// RouteString renders the route as "IST → FRA → LHR".
func (q *FareQuote) RouteString() string {
	return strings.Join(q.Route, " → ")
}

// Stops returns the number of connections in the itinerary.
func (q *FareQuote) Stops() int {
	if len(q.Route) < 2 {
		return 0
	}
	return len(q.Route) - 2
}

// FareQuery identifies one fare lookup. It doubles as the cache key for the
// fetch/aggregate/fit cycle.
type FareQuery struct {
	TargetDate  time.Time
	Origin      string
	Destination string
	TravelClass string
	Currency    string
	Adults      int
	WindowDays  int
}

// Key returns a stable cache key for the query.
func (q FareQuery) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s:%d:%s",
		q.Origin, q.Destination, q.TargetDate.Format("2006-01-02"),
		q.TravelClass, q.Adults, q.Currency)
}
