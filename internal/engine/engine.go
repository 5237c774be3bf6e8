// Package engine orchestrates the fare pipeline: fetch a date window,
// aggregate it into a daily price series, fit the forecast model and derive
// a purchase-timing recommendation. The expensive fetch/aggregate/fit cycle
// is memoized per query; enrichment lookups are memoized per city.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/valyzer/valyzer/internal/aggregate"
	"github.com/valyzer/valyzer/internal/cache"
	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/forecast"
	"github.com/valyzer/valyzer/internal/model"
)

// Advice is the full pipeline output for one query.
type Advice struct {
	Recommendation *model.Recommendation
	Series         model.FareSeries
	Forecast       []model.ForecastPoint
	Quotes         []model.FareQuote
	Trend          model.TrendSummary
	ModelState     forecast.State
	RMSE           float64
	HeldOut        bool
}

// pipelineResult is the cached portion of the pipeline. The forecast and
// recommendation are derived per call, since "today" moves.
type pipelineResult struct {
	fitted *forecast.Model
	quotes []model.FareQuote
	series model.FareSeries
}

// Engine wires the pipeline stages together behind the request caches.
type Engine struct {
	fetcher   QuoteFetcher
	enricher  Enricher
	weather   WeatherProvider
	holidays  HolidayProvider
	store     ReferenceStore
	logger    *slog.Logger
	fareCache *cache.Cache[*pipelineResult]
	cityCache *cache.Cache[any]
}

// New creates an engine. The enrichment providers may be nil; the
// corresponding accessors then report a configuration error.
func New(fetcher QuoteFetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		logger:    slog.Default().With("component", "engine"),
		fareCache: cache.New[*pipelineResult](),
		cityCache: cache.New[any](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithEnricher attaches the activities/hotels provider.
func WithEnricher(enricher Enricher) Option {
	return func(e *Engine) { e.enricher = enricher }
}

// WithWeather attaches the weather provider.
func WithWeather(weather WeatherProvider) Option {
	return func(e *Engine) { e.weather = weather }
}

// WithHolidays attaches the holiday provider.
func WithHolidays(holidays HolidayProvider) Option {
	return func(e *Engine) { e.holidays = holidays }
}

// WithStore attaches the airport reference store.
func WithStore(store ReferenceStore) Option {
	return func(e *Engine) { e.store = store }
}

// Close releases the engine's caches.
func (e *Engine) Close() {
	e.fareCache.Close()
	e.cityCache.Close()
}

// Advise runs the pipeline for one query.
//
// Fatal conditions (auth failure, exhausted rate limiting, hard upstream
// errors) surface as a typed error. Non-fatal conditions are absorbed into
// emptier output: an invalid date contributes zero quotes, too few rows
// leave the model untrained, and no data at all yields a nil
// recommendation.
func (e *Engine) Advise(ctx context.Context, query model.FareQuery) (*Advice, error) {
	result, err := e.fareCache.GetOrCompute(ctx, query.Key(), cache.FareTTL, func(ctx context.Context) (*pipelineResult, error) {
		return e.runPipeline(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	points := result.fitted.Forecast(query.TargetDate)
	advisor := forecast.NewAdvisor(points, result.series)
	recommendation, _ := advisor.Recommend()

	return &Advice{
		Quotes:         result.quotes,
		Series:         result.series,
		Forecast:       points,
		Recommendation: recommendation,
		Trend:          advisor.TrendSummary(),
		ModelState:     result.fitted.State(),
		RMSE:           result.fitted.RMSE(),
		HeldOut:        result.fitted.HeldOut(),
	}, nil
}

// runPipeline is the expensive cached stage: fetch, aggregate, fit.
func (e *Engine) runPipeline(ctx context.Context, query model.FareQuery) (*pipelineResult, error) {
	quotes, err := e.fetcher.AcquireWindow(ctx, query)
	if err != nil {
		return nil, err
	}

	series := aggregate.Aggregate(quotes, query.TargetDate)

	fitted := forecast.NewModel()
	if err := fitted.Fit(series); err != nil {
		if !errors.Is(err, common.ErrInsufficientData) {
			return nil, err
		}
		e.logger.Info("Not enough data points for training, model stays untrained",
			"rows", len(series))
	}

	return &pipelineResult{quotes: quotes, series: series, fitted: fitted}, nil
}

// Activities returns points of interest for a destination city, cached per
// city.
func (e *Engine) Activities(ctx context.Context, cityName string) ([]model.Activity, error) {
	if e.enricher == nil {
		return nil, common.ErrMissingConfig
	}
	v, err := e.cityCache.GetOrCompute(ctx, "activities:"+cityName, cache.CityTTL, func(ctx context.Context) (any, error) {
		return e.enricher.Activities(ctx, cityName)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Activity), nil
}

// Hotels returns hotels for a destination city code, cached per city.
func (e *Engine) Hotels(ctx context.Context, cityCode string) ([]model.Hotel, error) {
	if e.enricher == nil {
		return nil, common.ErrMissingConfig
	}
	v, err := e.cityCache.GetOrCompute(ctx, "hotels:"+cityCode, cache.CityTTL, func(ctx context.Context) (any, error) {
		return e.enricher.HotelsByCity(ctx, cityCode)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Hotel), nil
}

// Weather returns current conditions for a destination city, cached per
// city.
func (e *Engine) Weather(ctx context.Context, cityName string) (*model.Weather, error) {
	if e.weather == nil {
		return nil, common.ErrMissingConfig
	}
	v, err := e.cityCache.GetOrCompute(ctx, "weather:"+cityName, cache.CityTTL, func(ctx context.Context) (any, error) {
		return e.weather.Current(ctx, cityName)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Weather), nil
}

// Holidays returns the destination country's public holidays within the
// travel window, resolved from the airport reference dataset.
func (e *Engine) Holidays(ctx context.Context, iata string, from, to time.Time) ([]model.Holiday, error) {
	if e.holidays == nil || e.store == nil {
		return nil, common.ErrMissingConfig
	}
	countryCode := e.store.CountryCode(ctx, iata)
	return e.holidays.InRange(ctx, countryCode, from, to)
}
