// Package holiday looks up public holidays of a destination country via the
// Nager.Date reference API.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/valyzer/valyzer/internal/model"
)

const defaultBaseURL = "https://date.nager.at/api/v3"

// Client fetches public holidays by country code and year.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a holiday client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default().With("component", "holiday"),
		baseURL:    defaultBaseURL,
	}
}

type holidayPayload struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// InRange returns the country's public holidays falling within [from, to].
// An unresolvable country code ("XX") or a lookup failure degrades to an
// empty list; holidays are enrichment, not core data.
func (c *Client) InRange(ctx context.Context, countryCode string, from, to time.Time) ([]model.Holiday, error) {
	if countryCode == "" || countryCode == "XX" {
		return nil, nil
	}
	if to.Before(from) {
		to = from
	}

	var holidays []model.Holiday
	for year := from.Year(); year <= to.Year(); year++ {
		yearHolidays, err := c.byYear(ctx, countryCode, year)
		if err != nil {
			c.logger.Warn("Holiday lookup failed", "country", countryCode, "year", year, "error", err)
			return nil, nil
		}
		holidays = append(holidays, yearHolidays...)
	}

	filtered := holidays[:0]
	for _, h := range holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			filtered = append(filtered, h)
		}
	}

	return filtered, nil
}

func (c *Client) byYear(ctx context.Context, countryCode string, year int) ([]model.Holiday, error) {
	u := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, countryCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("holiday request returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload []holidayPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse holiday response: %w", err)
	}

	holidays := make([]model.Holiday, 0, len(payload))
	for _, h := range payload {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		holidays = append(holidays, model.Holiday{
			Date:        date,
			Name:        h.Name,
			LocalName:   h.LocalName,
			CountryCode: countryCode,
		})
	}

	return holidays, nil
}
