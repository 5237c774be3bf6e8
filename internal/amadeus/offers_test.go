package amadeus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valyzer/valyzer/internal/model"
)

func seg(from, depAt, to, arrAt, carrier, number string) segment {
	var s segment
	s.Departure.IataCode = from
	s.Departure.At = depAt
	s.Arrival.IataCode = to
	s.Arrival.At = arrAt
	s.CarrierCode = carrier
	s.Number = number
	return s
}

func TestQuoteFromItinerary_Direct(t *testing.T) {
	it := itinerary{
		Duration: "PT3H30M",
		Segments: []segment{
			seg("FRA", "2025-08-01T08:00:00", "IST", "2025-08-01T11:30:00", "TK", "1590"),
		},
	}

	quote, ok := quoteFromItinerary(it, "FRA", "IST", day(2025, time.August, 1))
	require.True(t, ok)
	assert.Equal(t, model.FlightDirect, quote.FlightType)
	assert.Equal(t, []string{"FRA", "IST"}, quote.Route)
	assert.Equal(t, "FRA → IST", quote.RouteString())
	assert.Equal(t, 0, quote.Stops())
	assert.Equal(t, 3*time.Hour+30*time.Minute, quote.Duration)
	assert.Equal(t, "08:00", quote.DepartureTime)
	assert.Equal(t, "11:30", quote.ArrivalTime)
	assert.Equal(t, []string{"TK"}, quote.Carriers)
	assert.Equal(t, []string{"TK1590"}, quote.FlightNumbers)
}

func TestQuoteFromItinerary_Connecting(t *testing.T) {
	it := itinerary{
		Segments: []segment{
			seg("FRA", "2025-08-01T06:00:00", "VIE", "2025-08-01T07:20:00", "OS", "126"),
			seg("VIE", "2025-08-01T09:00:00", "IST", "2025-08-01T12:10:00", "OS", "161"),
		},
	}

	quote, ok := quoteFromItinerary(it, "FRA", "IST", day(2025, time.August, 1))
	require.True(t, ok)
	assert.Equal(t, model.FlightConnecting, quote.FlightType)
	assert.Equal(t, []string{"FRA", "VIE", "IST"}, quote.Route)
	assert.Equal(t, 1, quote.Stops())
	assert.Equal(t, 6*time.Hour+10*time.Minute, quote.Duration, "duration spans the layover")
	assert.Equal(t, []string{"OS126", "OS161"}, quote.FlightNumbers)
}

func TestQuoteFromItinerary_RejectsOtherPairs(t *testing.T) {
	it := itinerary{
		Segments: []segment{
			seg("MUC", "2025-08-01T08:00:00", "IST", "2025-08-01T11:30:00", "TK", "1630"),
		},
	}

	_, ok := quoteFromItinerary(it, "FRA", "IST", day(2025, time.August, 1))
	assert.False(t, ok, "an itinerary departing elsewhere must be skipped")

	it.Segments[0].Arrival.IataCode = "ADB"
	it.Segments[0].Departure.IataCode = "FRA"
	_, ok = quoteFromItinerary(it, "FRA", "IST", day(2025, time.August, 1))
	assert.False(t, ok, "an itinerary arriving elsewhere must be skipped")
}

func TestQuoteFromItinerary_Malformed(t *testing.T) {
	_, ok := quoteFromItinerary(itinerary{}, "FRA", "IST", day(2025, time.August, 1))
	assert.False(t, ok, "no segments")

	it := itinerary{
		Segments: []segment{
			seg("FRA", "not-a-time", "IST", "2025-08-01T11:30:00", "TK", "1590"),
		},
	}
	_, ok = quoteFromItinerary(it, "FRA", "IST", day(2025, time.August, 1))
	assert.False(t, ok, "unparseable timestamp")
}

func TestParseSegmentTime(t *testing.T) {
	t.Run("zoned", func(t *testing.T) {
		got, err := parseSegmentTime("2025-08-01T08:00:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, 8, got.Hour())
	})

	t.Run("zoneless", func(t *testing.T) {
		got, err := parseSegmentTime("2025-08-01T08:00:00")
		require.NoError(t, err)
		assert.Equal(t, 8, got.Hour())
	})
}
