// Package amadeus provides a client for the Amadeus self-service APIs:
// flight-offer search across a date window, plus the reference-data and
// shopping endpoints used for destination enrichment.
package amadeus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/valyzer/valyzer/internal/common"
)

// Environment base URLs.
const (
	testBaseURL       = "https://test.api.amadeus.com"
	productionBaseURL = "https://api.amadeus.com"
)

// Config holds Amadeus API credentials and environment selection.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // test or production
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: amadeus client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: amadeus client secret is required", common.ErrMissingConfig)
	}
	if c.Environment != "" && c.Environment != "test" && c.Environment != "production" {
		return fmt.Errorf("%w: amadeus environment must be test or production", common.ErrInvalidConfig)
	}
	return nil
}

// Client is an authenticated Amadeus API client. It owns its OAuth2 token
// state; refreshes are guarded so concurrent 401 handling never triggers a
// stampede of token requests.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	tokens     oauth2.TokenSource
	baseURL    string
	ratesURL   string
	oauth      clientcredentials.Config
	retryOpts  common.RetryOptions
	tokenGen   uint64
	mu         sync.Mutex
}

// NewClient creates a client for the configured environment.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := testBaseURL
	if cfg.Environment == "production" {
		baseURL = productionBaseURL
	}

	return &Client{
		baseURL:  baseURL,
		ratesURL: frankfurterURL,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.Secret,
			TokenURL:     baseURL + "/v1/security/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "amadeus"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// token returns a bearer token plus the generation it belongs to. The
// generation lets a 401 handler invalidate exactly the token it used.
// The token source outlives any single request, so it is bound to a
// background context rather than a request one.
func (c *Client) token() (string, uint64, error) {
	c.mu.Lock()
	if c.tokens == nil {
		c.tokens = c.oauth.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient))
	}
	ts := c.tokens
	gen := c.tokenGen
	c.mu.Unlock()

	tok, err := ts.Token()
	if err != nil {
		return "", gen, common.NewFetchError(common.FetchAuth, 0,
			"token acquisition failed", fmt.Errorf("%w: %v", common.ErrAuthentication, err))
	}

	return tok.AccessToken, gen, nil
}

// invalidateToken discards the cached token if it still belongs to the
// observed generation. Concurrent callers that saw the same stale token
// trigger exactly one refresh.
func (c *Client) invalidateToken(observedGen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokenGen == observedGen {
		c.tokens = nil
		c.tokenGen++
	}
}

// get performs an authenticated GET, refreshing credentials once on a 401
// and mapping the provider's failure modes onto the error taxonomy.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, status, err := c.getOnce(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		body, status, err = c.getOnce(ctx, path, params)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, common.NewFetchError(common.FetchAuth, status,
				"credentials rejected after refresh", common.ErrAuthentication)
		}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return nil, common.NewFetchError(common.FetchRateLimited, status,
			"provider throttled the request", common.ErrRateLimit)
	case status == http.StatusBadRequest && strings.Contains(string(body), "INVALID DATE"):
		return nil, common.NewFetchError(common.FetchInvalidDate, status,
			"provider rejected the departure date", nil)
	case status < 200 || status >= 300:
		return nil, common.NewFetchError(common.FetchUpstream, status, truncate(string(body), 512), nil)
	}

	return body, nil
}

// getOnce performs a single authenticated request. A 401 response
// invalidates the token and is reported back via the status code so get can
// retry.
func (c *Client) getOnce(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	token, gen, err := c.token()
	if err != nil {
		return nil, 0, err
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, common.NewFetchError(common.FetchUpstream, 0, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, common.NewFetchError(common.FetchUpstream, resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken(gen)
	}

	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
