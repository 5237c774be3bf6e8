package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/valyzer/valyzer/internal/amadeus"
	"github.com/valyzer/valyzer/internal/config"
	"github.com/valyzer/valyzer/internal/engine"
	"github.com/valyzer/valyzer/internal/holiday"
	"github.com/valyzer/valyzer/internal/storage"
	"github.com/valyzer/valyzer/internal/weather"
)

// initStorage opens the airport reference store with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initClient builds the authenticated Amadeus client from configuration.
func initClient() (*amadeus.Client, error) {
	return amadeus.NewClient(config.LoadAmadeusConfig())
}

// initEngine assembles the pipeline engine with whatever collaborators are
// configured. Weather is optional; a missing API key just disables it.
func initEngine(client *amadeus.Client, store *storage.SQLiteStore, fetcher engine.QuoteFetcher) *engine.Engine {
	opts := []engine.Option{
		engine.WithEnricher(client),
		engine.WithHolidays(holiday.NewClient()),
		engine.WithStore(store),
	}

	if key := viper.GetString("openweathermap.api_key"); key != "" {
		if w, err := weather.NewClient(key); err == nil {
			opts = append(opts, engine.WithWeather(w))
		}
	}

	return engine.New(fetcher, opts...)
}
