package amadeus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/model"
)

// DefaultWindowDays bounds the date window queried around the target date.
const DefaultWindowDays = 7

// maxConcurrency caps the optional worker pool; the provider enforces
// per-request rate limits, so anything wider just trades 429s for latency.
const maxConcurrency = 3

// WindowFetcher retrieves raw fare quotes for a bounded set of dates around
// a target travel date.
type WindowFetcher struct {
	client *Client
	// Progress, when set, is called after each date completes.
	Progress func(completed, total int)
	// Concurrency > 1 enables a bounded worker pool. The abort-on-hard-
	// failure contract and per-date rate-limit backoff hold either way.
	Concurrency int
}

// NewWindowFetcher creates a fetcher over an authenticated client.
func NewWindowFetcher(client *Client) *WindowFetcher {
	return &WindowFetcher{client: client, Concurrency: 1}
}

// WindowDates computes the calendar dates to query. A target closer than
// windowDays uses a forward-only window [today, today+2·windowDays], since a
// backward one would include past dates; otherwise the window is symmetric
// around the target.
func WindowDates(targetDate, today time.Time, windowDays int) []time.Time {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	target := midnight(targetDate)
	start := midnight(today)

	dates := make([]time.Time, 0, 2*windowDays+1)
	if daysBetween(start, target) < windowDays {
		for i := 0; i <= 2*windowDays; i++ {
			dates = append(dates, start.AddDate(0, 0, i))
		}
		return dates
	}

	for i := -windowDays; i <= windowDays; i++ {
		dates = append(dates, target.AddDate(0, 0, i))
	}
	return dates
}

// AcquireWindow fetches quotes for every date in the query's window.
//
// Per-date failure handling: an invalid-date rejection contributes zero
// quotes; rate limiting is retried with backoff and surfaced only once
// exhausted; any other hard failure aborts the whole window — partial
// results are never returned as if complete.
func (f *WindowFetcher) AcquireWindow(ctx context.Context, query model.FareQuery) ([]model.FareQuote, error) {
	dates := WindowDates(query.TargetDate, time.Now(), query.WindowDays)

	rates, ratesErr := f.windowRates(ctx, query.Currency)

	perDate := make([][]model.FareQuote, len(dates))
	var completed atomic.Int64

	if f.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		limit := f.Concurrency
		if limit > maxConcurrency {
			limit = maxConcurrency
		}
		g.SetLimit(limit)

		for i, date := range dates {
			i, date := i, date
			g.Go(func() error {
				quotes, err := f.fetchDate(gctx, query, date, rates, ratesErr)
				if err != nil {
					return err
				}
				perDate[i] = quotes
				f.reportProgress(&completed, len(dates))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, date := range dates {
			quotes, err := f.fetchDate(ctx, query, date, rates, ratesErr)
			if err != nil {
				return nil, err
			}
			perDate[i] = quotes
			f.reportProgress(&completed, len(dates))
		}
	}

	var all []model.FareQuote
	for _, quotes := range perDate {
		all = append(all, quotes...)
	}

	f.client.logger.Info("Window fetch complete",
		"origin", query.Origin,
		"destination", query.Destination,
		"dates", len(dates),
		"quotes", len(all))

	return all, nil
}

// windowRates fetches exchange rates once per window call. A rates failure
// is not fatal: quotes degrade to unconverted amounts.
func (f *WindowFetcher) windowRates(ctx context.Context, currency string) (map[string]float64, error) {
	if currency == "" || currency == baseCurrency {
		return nil, nil
	}
	rates, err := f.client.LatestRates(ctx, baseCurrency)
	if err != nil {
		f.client.logger.Warn("Exchange rate fetch failed, prices stay unconverted",
			"currency", currency, "error", err)
		return nil, common.NewFetchError(common.FetchConversion, 0, "exchange rate fetch failed", err)
	}
	return rates, nil
}

// fetchDate queries one departure date and converts its offers into quotes.
func (f *WindowFetcher) fetchDate(ctx context.Context, query model.FareQuery, date time.Time, rates map[string]float64, ratesErr error) ([]model.FareQuote, error) {
	var offers []flightOffer

	err := common.WithRetry(ctx, func() error {
		var opErr error
		offers, opErr = f.client.searchOffers(ctx, query.Origin, query.Destination, date, query.TravelClass, query.Adults)
		return opErr
	}, f.client.retryOpts)

	if err != nil {
		if kind, ok := common.FetchErrorKindOf(err); ok && kind == common.FetchInvalidDate {
			f.client.logger.Debug("Provider rejected date, treating as zero quotes",
				"date", date.Format("2006-01-02"))
			return nil, nil
		}
		return nil, err
	}

	var quotes []model.FareQuote
	for _, offer := range offers {
		for _, it := range offer.Itineraries {
			quote, ok := quoteFromItinerary(it, query.Origin, query.Destination, date)
			if !ok {
				continue
			}
			f.priceQuote(&quote, offer.Price.Total, query, rates, ratesErr)
			quotes = append(quotes, quote)
		}
	}

	return quotes, nil
}

// priceQuote formats the quote's price in the requested currency. A
// conversion failure keeps the unconverted amount tagged as failed; the
// quote is never dropped.
func (f *WindowFetcher) priceQuote(quote *model.FareQuote, rawTotal string, query model.FareQuery, rates map[string]float64, ratesErr error) {
	amount, parseErr := strconv.ParseFloat(rawTotal, 64)

	if query.Currency != "" && query.Currency != baseCurrency {
		converted, err := convertPrice(amount, parseErr, rates, ratesErr, query.Currency)
		if err != nil {
			quote.Price = fmt.Sprintf("%s %s (conversion failed)", rawTotal, baseCurrency)
			quote.Currency = baseCurrency
			quote.ConversionFailed = true
			quote.Price = withAdults(quote.Price, query.Adults)
			return
		}
		quote.Price = withAdults(fmt.Sprintf("%.2f %s", converted, query.Currency), query.Adults)
		quote.Currency = query.Currency
		return
	}

	if parseErr != nil {
		quote.Price = fmt.Sprintf("%s %s", rawTotal, baseCurrency)
	} else {
		quote.Price = fmt.Sprintf("%.2f %s", amount, baseCurrency)
	}
	quote.Currency = baseCurrency
	quote.Price = withAdults(quote.Price, query.Adults)
}

func convertPrice(amount float64, parseErr error, rates map[string]float64, ratesErr error, currency string) (float64, error) {
	if parseErr != nil {
		return 0, parseErr
	}
	if ratesErr != nil {
		return 0, ratesErr
	}
	if rates == nil {
		return 0, errors.New("no exchange rates available")
	}
	return convert(amount, rates, currency)
}

// withAdults appends the passenger-count annotation for multi-adult totals.
func withAdults(formatted string, adults int) string {
	if adults > 1 {
		return fmt.Sprintf("%s - for [%d Adults]", formatted, adults)
	}
	return formatted
}

func (f *WindowFetcher) reportProgress(completed *atomic.Int64, total int) {
	if f.Progress == nil {
		return
	}
	f.Progress(int(completed.Add(1)), total)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
