package amadeus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/valyzer/valyzer/internal/common"
)

// testServer wires a fake token endpoint plus a caller-supplied API handler.
type testServer struct {
	srv        *httptest.Server
	tokenCalls atomic.Int64
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		ts.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":1799}`))
	})
	mux.HandleFunc("/", handler)
	ts.srv = httptest.NewServer(mux)
	t.Cleanup(ts.srv.Close)
	return ts
}

func newTestClient(ts *testServer) *Client {
	return &Client{
		baseURL:  ts.srv.URL,
		ratesURL: ts.srv.URL + "/rates",
		oauth: clientcredentials.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenURL:     ts.srv.URL + "/v1/security/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: ts.srv.Client(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		cfg     Config
	}{
		{name: "valid", cfg: Config{ClientID: "id", Secret: "sec", Environment: "test"}},
		{name: "missing client id", cfg: Config{Secret: "sec"}, wantErr: common.ErrMissingConfig},
		{name: "missing secret", cfg: Config{ClientID: "id"}, wantErr: common.ErrMissingConfig},
		{name: "bad environment", cfg: Config{ClientID: "id", Secret: "sec", Environment: "staging"}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClientGet_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, int64(1), ts.tokenCalls.Load())
}

func TestClientGet_RefreshesTokenOnceOn401(t *testing.T) {
	var apiCalls atomic.Int64
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), apiCalls.Load())
	assert.Equal(t, int64(2), ts.tokenCalls.Load(), "the 401 must force a fresh token")
}

func TestClientGet_AuthFailureAfterRefresh(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuthentication)
	kind, ok := common.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, common.FetchAuth, kind)
}

func TestClientGet_MapsRateLimit(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
	kind, _ := common.FetchErrorKindOf(err)
	assert.Equal(t, common.FetchRateLimited, kind)
}

func TestClientGet_MapsInvalidDate(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"title":"INVALID DATE","detail":"Date/Time is in the past"}]}`))
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.Error(t, err)
	kind, ok := common.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, common.FetchInvalidDate, kind)
}

func TestClientGet_MapsUpstreamFailure(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	c := newTestClient(ts)

	_, err := c.get(context.Background(), "/v2/shopping/flight-offers", url.Values{})
	require.Error(t, err)
	kind, ok := common.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, common.FetchUpstream, kind)

	var fe *common.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
}

func TestLatestRates(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rates", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"USD":1.1,"GBP":0.85}}`))
	})
	c := newTestClient(ts)

	rates, err := c.LatestRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 1.1, rates["USD"], 1e-9)
	assert.InDelta(t, 0.85, rates["GBP"], 1e-9)
	assert.InDelta(t, 1.0, rates["EUR"], 1e-9, "the base currency maps to 1.0")
}

func TestConvert(t *testing.T) {
	rates := map[string]float64{"USD": 1.1, "EUR": 1.0}

	v, err := convert(100, rates, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 110, v, 1e-9)

	_, err = convert(100, rates, "JPY")
	assert.Error(t, err)
}
