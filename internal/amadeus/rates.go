package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// baseCurrency is the currency all offers are priced in before conversion.
const baseCurrency = "EUR"

// frankfurterURL serves daily reference exchange rates.
const frankfurterURL = "https://api.frankfurter.app/latest"

// LatestRates fetches all supported exchange rates for the base currency.
// The base currency itself maps to 1.0. Rates are fetched fresh per window
// call; the endpoint is not cached here.
func (c *Client) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ratesURL+"?from="+base, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse rates response: %w", err)
	}

	rates := payload.Rates
	if rates == nil {
		rates = make(map[string]float64)
	}
	rates[base] = 1.0

	return rates, nil
}

// convert converts an amount between currencies using pre-fetched rates.
func convert(amount float64, rates map[string]float64, to string) (float64, error) {
	rate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("currency %s not found in rates", to)
	}
	return amount * rate, nil
}
