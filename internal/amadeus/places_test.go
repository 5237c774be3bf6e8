package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valyzer/valyzer/internal/common"
)

func TestCityCoordinates(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reference-data/locations", r.URL.Path)
		assert.Equal(t, "Istanbul", r.URL.Query().Get("keyword"))
		assert.Equal(t, "CITY", r.URL.Query().Get("subType"))
		_, _ = w.Write([]byte(`{"data":[{"geoCode":{"latitude":41.01,"longitude":28.95}}]}`))
	})
	c := newTestClient(ts)

	lat, lon, err := c.CityCoordinates(context.Background(), "Istanbul")
	require.NoError(t, err)
	assert.InDelta(t, 41.01, lat, 1e-9)
	assert.InDelta(t, 28.95, lon, 1e-9)
}

func TestCityCoordinates_Unknown(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	c := newTestClient(ts)

	_, _, err := c.CityCoordinates(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestActivities(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/reference-data/locations":
			_, _ = w.Write([]byte(`{"data":[{"geoCode":{"latitude":41.01,"longitude":28.95}}]}`))
		case "/v1/shopping/activities":
			assert.Equal(t, "20", r.URL.Query().Get("radius"))
			_, _ = w.Write([]byte(`{"data":[
				{"id":"1","name":"Bosphorus Cruise","shortDescription":"Boat trip","rating":"4.5",
				 "geoCode":{"latitude":41.02,"longitude":29.0},
				 "price":{"amount":"35.00","currencyCode":"EUR"}},
				{"id":"2","name":"Old Town Walk","rating":"",
				 "geoCode":{"latitude":41.0,"longitude":28.97},"price":{}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	c := newTestClient(ts)

	activities, err := c.Activities(context.Background(), "Istanbul")
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "Bosphorus Cruise", activities[0].Name)
	assert.InDelta(t, 4.5, activities[0].Rating, 1e-9)
	assert.Equal(t, "35.00 EUR", activities[0].Price)

	assert.Zero(t, activities[1].Rating, "missing rating parses to zero")
	assert.Empty(t, activities[1].Price, "missing price stays empty")
}

func TestHotelsByCity(t *testing.T) {
	var sentimentBatches []string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/reference-data/locations/hotels/by-city":
			assert.Equal(t, "IST", r.URL.Query().Get("cityCode"))
			_, _ = w.Write([]byte(`{"data":[
				{"hotelId":"H1","name":"Hotel One","geoCode":{"latitude":41.0,"longitude":28.9}},
				{"hotelId":"H2","name":"Hotel Two","geoCode":{"latitude":41.1,"longitude":28.8}},
				{"hotelId":"H3","name":"Hotel Three","geoCode":{"latitude":41.2,"longitude":28.7}},
				{"hotelId":"H4","name":"Hotel Four","geoCode":{"latitude":41.3,"longitude":28.6}}
			]}`))
		case "/v2/e-reputation/hotel-sentiments":
			ids := r.URL.Query().Get("hotelIds")
			sentimentBatches = append(sentimentBatches, ids)
			var data []string
			for _, id := range strings.Split(ids, ",") {
				data = append(data, fmt.Sprintf(`{"hotelId":%q,"overallRating":80,"numberOfReviews":120}`, id))
			}
			_, _ = w.Write([]byte(`{"data":[` + strings.Join(data, ",") + `]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	c := newTestClient(ts)

	hotels, err := c.HotelsByCity(context.Background(), "IST")
	require.NoError(t, err)
	require.Len(t, hotels, 4)

	require.Len(t, sentimentBatches, 2, "ids are fetched in batches of three")
	assert.Equal(t, "H1,H2,H3", sentimentBatches[0])
	assert.Equal(t, "H4", sentimentBatches[1])

	for _, h := range hotels {
		require.NotNil(t, h.Sentiment, "hotel %s", h.HotelID)
		assert.Equal(t, 80, h.Sentiment.OverallRating)
		assert.Equal(t, 120, h.Sentiment.ReviewCount)
	}
}

func TestHotelsByCity_SentimentQuotaExceeded(t *testing.T) {
	var sentimentCalls atomic.Int64
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/reference-data/locations/hotels/by-city":
			_, _ = w.Write([]byte(`{"data":[
				{"hotelId":"H1","name":"Hotel One"},
				{"hotelId":"H2","name":"Hotel Two"},
				{"hotelId":"H3","name":"Hotel Three"},
				{"hotelId":"H4","name":"Hotel Four"}
			]}`))
		case "/v2/e-reputation/hotel-sentiments":
			sentimentCalls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	c := newTestClient(ts)

	hotels, err := c.HotelsByCity(context.Background(), "IST")
	require.NoError(t, err, "missing ratings must not fail the hotel list")
	require.Len(t, hotels, 4)
	for _, h := range hotels {
		assert.Nil(t, h.Sentiment)
	}
	assert.Equal(t, int64(1), sentimentCalls.Load(), "a throttled batch stops further sentiment lookups")
}
