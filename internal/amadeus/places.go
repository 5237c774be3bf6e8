package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/model"
)

// sentimentBatchSize bounds hotel-sentiment lookups per call.
const sentimentBatchSize = 3

// CityCoordinates geocodes a city name via the locations reference endpoint.
func (c *Client) CityCoordinates(ctx context.Context, cityName string) (lat, lon float64, err error) {
	params := url.Values{}
	params.Set("keyword", cityName)
	params.Set("subType", "CITY")

	body, err := c.get(ctx, "/v1/reference-data/locations", params)
	if err != nil {
		return 0, 0, err
	}

	var resp struct {
		Data []struct {
			GeoCode struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geoCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, fmt.Errorf("failed to parse location response: %w", err)
	}
	if len(resp.Data) == 0 {
		return 0, 0, fmt.Errorf("%w: no location data for city %s", common.ErrNotFound, cityName)
	}

	geo := resp.Data[0].GeoCode
	return geo.Latitude, geo.Longitude, nil
}

// Activities lists points of interest within 20km of the city's coordinates.
func (c *Client) Activities(ctx context.Context, cityName string) ([]model.Activity, error) {
	lat, lon, err := c.CityCoordinates(ctx, cityName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("radius", "20")

	body, err := c.get(ctx, "/v1/shopping/activities", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"shortDescription"`
			Rating      string `json:"rating"`
			GeoCode     struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geoCode"`
			Price struct {
				Amount       string `json:"amount"`
				CurrencyCode string `json:"currencyCode"`
			} `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse activities response: %w", err)
	}

	activities := make([]model.Activity, 0, len(resp.Data))
	for _, a := range resp.Data {
		rating, _ := strconv.ParseFloat(a.Rating, 64)
		price := ""
		if a.Price.Amount != "" {
			price = a.Price.Amount + " " + a.Price.CurrencyCode
		}
		activities = append(activities, model.Activity{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Rating:      rating,
			Price:       price,
			Latitude:    a.GeoCode.Latitude,
			Longitude:   a.GeoCode.Longitude,
		})
	}

	return activities, nil
}

// HotelsByCity lists hotels for a city code and enriches the first ten with
// sentiment ratings.
func (c *Client) HotelsByCity(ctx context.Context, cityCode string) ([]model.Hotel, error) {
	params := url.Values{}
	params.Set("cityCode", cityCode)

	body, err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
			GeoCode struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geoCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	hotels := make([]model.Hotel, 0, len(resp.Data))
	ids := make([]string, 0, 10)
	for _, h := range resp.Data {
		hotels = append(hotels, model.Hotel{
			HotelID:   h.HotelID,
			Name:      h.Name,
			CityCode:  cityCode,
			Latitude:  h.GeoCode.Latitude,
			Longitude: h.GeoCode.Longitude,
		})
		if h.HotelID != "" && len(ids) < 10 {
			ids = append(ids, h.HotelID)
		}
	}

	sentiments := c.hotelSentiments(ctx, ids)
	for i := range hotels {
		if s, ok := sentiments[hotels[i].HotelID]; ok {
			hotels[i].Sentiment = &s
		}
	}

	return hotels, nil
}

// hotelSentiments fetches review sentiments in batches of at most three IDs.
// A throttled or failed batch is logged and skipped; ratings are decoration,
// not core data.
func (c *Client) hotelSentiments(ctx context.Context, hotelIDs []string) map[string]model.HotelSentiment {
	sentiments := make(map[string]model.HotelSentiment)

	for start := 0; start < len(hotelIDs); start += sentimentBatchSize {
		end := start + sentimentBatchSize
		if end > len(hotelIDs) {
			end = len(hotelIDs)
		}
		batch := hotelIDs[start:end]

		params := url.Values{}
		params.Set("hotelIds", strings.Join(batch, ","))

		body, err := c.get(ctx, "/v2/e-reputation/hotel-sentiments", params)
		if err != nil {
			if errors.Is(err, common.ErrRateLimit) {
				c.logger.Warn("Hotel sentiment quota exceeded, skipping remaining batches")
				return sentiments
			}
			c.logger.Warn("Hotel sentiment fetch failed for batch", "batch", batch, "error", err)
			continue
		}

		var resp struct {
			Data []struct {
				HotelID         string `json:"hotelId"`
				OverallRating   int    `json:"overallRating"`
				NumberOfReviews int    `json:"numberOfReviews"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			c.logger.Warn("Failed to parse hotel sentiments", "error", err)
			continue
		}

		for _, s := range resp.Data {
			sentiments[s.HotelID] = model.HotelSentiment{
				HotelID:       s.HotelID,
				OverallRating: s.OverallRating,
				ReviewCount:   s.NumberOfReviews,
			}
		}
	}

	return sentiments
}
