package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyzer/valyzer/internal/model"
)

// flightOffersResponse mirrors the subset of the flight-offers search payload
// the fetcher consumes.
type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []itinerary `json:"itineraries"`
}

type itinerary struct {
	Duration string    `json:"duration"`
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

// searchOffers queries flight offers for a single departure date. Prices are
// requested in the provider's base currency; conversion happens later, once
// per window.
func (c *Client) searchOffers(ctx context.Context, origin, destination string, date time.Time, travelClass string, adults int) ([]flightOffer, error) {
	params := url.Values{}
	params.Set("originLocationCode", origin)
	params.Set("destinationLocationCode", destination)
	params.Set("departureDate", date.Format("2006-01-02"))
	params.Set("adults", strconv.Itoa(adults))
	params.Set("travelClass", travelClass)
	params.Set("currencyCode", baseCurrency)
	params.Set("max", "10")

	body, err := c.get(ctx, "/v2/shopping/flight-offers", params)
	if err != nil {
		return nil, err
	}

	var resp flightOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	return resp.Data, nil
}

// segmentTimes parses the departure and arrival timestamps of an itinerary.
func segmentTimes(segs []segment) (dep, arr time.Time, ok bool) {
	if len(segs) == 0 {
		return time.Time{}, time.Time{}, false
	}
	var err error
	dep, err = parseSegmentTime(segs[0].Departure.At)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	arr, err = parseSegmentTime(segs[len(segs)-1].Arrival.At)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return dep, arr, true
}

func parseSegmentTime(at string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		return t, nil
	}
	// The provider often omits the zone offset.
	return time.Parse("2006-01-02T15:04:05", at)
}

// quoteFromItinerary builds a FareQuote from one itinerary of an offer, or
// returns false when the itinerary does not serve the requested city pair.
// Multi-segment itineraries qualify only when the first segment departs the
// requested origin and the last arrives at the requested destination.
func quoteFromItinerary(it itinerary, origin, destination string, date time.Time) (model.FareQuote, bool) {
	if len(it.Segments) == 0 {
		return model.FareQuote{}, false
	}
	first := it.Segments[0]
	last := it.Segments[len(it.Segments)-1]
	if first.Departure.IataCode != origin || last.Arrival.IataCode != destination {
		return model.FareQuote{}, false
	}

	dep, arr, ok := segmentTimes(it.Segments)
	if !ok {
		return model.FareQuote{}, false
	}

	route := make([]string, 0, len(it.Segments)+1)
	carriers := make([]string, 0, len(it.Segments))
	flightNumbers := make([]string, 0, len(it.Segments))
	for _, seg := range it.Segments {
		route = append(route, seg.Departure.IataCode)
		carriers = append(carriers, seg.CarrierCode)
		flightNumbers = append(flightNumbers, seg.CarrierCode+seg.Number)
	}
	route = append(route, last.Arrival.IataCode)

	flightType := model.FlightDirect
	if len(it.Segments) > 1 {
		flightType = model.FlightConnecting
	}

	return model.FareQuote{
		Date:          date,
		Origin:        origin,
		Destination:   destination,
		FlightType:    flightType,
		Route:         route,
		Duration:      arr.Sub(dep),
		DepartureTime: dep.Format("15:04"),
		ArrivalTime:   arr.Format("15:04"),
		Carriers:      carriers,
		FlightNumbers: flightNumbers,
	}, true
}
