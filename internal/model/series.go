package model

import "time"

// SeriesPoint is one aggregated observation: the best offer seen for a single
// calendar date plus the calendar features derived from that date.
type SeriesPoint struct {
	Date            time.Time
	MinPrice        float64
	DaysUntilFlight int
	DayOfWeek       int // Monday=0 .. Sunday=6
	IsWeekend       bool
	WeekOfYear      int
	Month           int
	DaysFromTarget  int // negative before the target date, positive after
}

// FareSeries is an aggregated daily price series, ordered by date with no
// duplicate dates. An empty series means "insufficient data", not an error.
type FareSeries []SeriesPoint

// MinRow returns the point with the lowest observed price, or false when the
// series is empty.
func (s FareSeries) MinRow() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	best := s[0]
	for _, p := range s[1:] {
		if p.MinPrice < best.MinPrice {
			best = p
		}
	}
	return best, true
}
