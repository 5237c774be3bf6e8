package engine

import (
	"context"
	"time"

	"github.com/valyzer/valyzer/internal/model"
)

// QuoteFetcher retrieves raw fare quotes for a bounded date window.
type QuoteFetcher interface {
	AcquireWindow(ctx context.Context, query model.FareQuery) ([]model.FareQuote, error)
}

// Enricher supplies destination points-of-interest and hotels.
type Enricher interface {
	Activities(ctx context.Context, cityName string) ([]model.Activity, error)
	HotelsByCity(ctx context.Context, cityCode string) ([]model.Hotel, error)
}

// WeatherProvider supplies current destination conditions.
type WeatherProvider interface {
	Current(ctx context.Context, cityName string) (*model.Weather, error)
}

// HolidayProvider supplies public holidays for a country and date range.
type HolidayProvider interface {
	InRange(ctx context.Context, countryCode string, from, to time.Time) ([]model.Holiday, error)
}

// ReferenceStore resolves airports from the local reference dataset.
type ReferenceStore interface {
	Lookup(ctx context.Context, iata string) (*model.Airport, error)
	Search(ctx context.Context, query string) ([]model.Airport, error)
	CountryCode(ctx context.Context, iata string) string
}
