package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/model"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// kelvinZero converts the API's Kelvin temperatures to Celsius.
const kelvinZero = 273.15

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a weather client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openweathermap API key is required", common.ErrMissingConfig)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}, nil
}

// Current fetches current conditions for a city name.
func (c *Client) Current(ctx context.Context, cityName string) (*model.Weather, error) {
	params := url.Values{}
	params.Set("q", cityName)
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no weather data for %s", common.ErrNotFound, cityName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}

	w := &model.Weather{
		City:       payload.Name,
		TempC:      round1(payload.Main.Temp - kelvinZero),
		FeelsLikeC: round1(payload.Main.FeelsLike - kelvinZero),
		MinTempC:   round1(payload.Main.TempMin - kelvinZero),
		MaxTempC:   round1(payload.Main.TempMax - kelvinZero),
	}
	if w.City == "" {
		w.City = cityName
	}
	if len(payload.Weather) > 0 {
		w.Description = titleCase(payload.Weather[0].Description)
		w.IconURL = fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", payload.Weather[0].Icon)
	}

	return w, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
