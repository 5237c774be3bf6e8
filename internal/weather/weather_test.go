package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valyzer/valyzer/internal/common"
)

func newWeatherServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key")
	require.NoError(t, err)
	c.baseURL = srv.URL
	c.httpClient = srv.Client()
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestCurrent(t *testing.T) {
	c := newWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Istanbul", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(`{
			"name": "Istanbul",
			"main": {"temp": 298.15, "feels_like": 299.25, "temp_min": 295.15, "temp_max": 301.15},
			"weather": [{"description": "scattered clouds", "icon": "03d"}]
		}`))
	})

	got, err := c.Current(context.Background(), "Istanbul")
	require.NoError(t, err)
	assert.Equal(t, "Istanbul", got.City)
	assert.InDelta(t, 25.0, got.TempC, 1e-9)
	assert.InDelta(t, 26.1, got.FeelsLikeC, 1e-9)
	assert.InDelta(t, 22.0, got.MinTempC, 1e-9)
	assert.InDelta(t, 28.0, got.MaxTempC, 1e-9)
	assert.Equal(t, "Scattered Clouds", got.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/03d@2x.png", got.IconURL)
}

func TestCurrent_UnknownCity(t *testing.T) {
	c := newWeatherServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCurrent_UpstreamFailure(t *testing.T) {
	c := newWeatherServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Current(context.Background(), "Istanbul")
	assert.Error(t, err)
}
