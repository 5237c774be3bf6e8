package model

import "time"

// ForecastPoint is a projected purchase-day price with its confidence band.
// Bounds are symmetric around the prediction and deliberately not clamped at
// zero, so a negative lower bound surfaces as-is.
type ForecastPoint struct {
	Date            time.Time
	PredictedPrice  float64
	LowerBound      float64
	UpperBound      float64
	DaysUntilFlight int
}

// RecommendationSource records which data backed a recommendation.
type RecommendationSource string

// Recommendation sources.
const (
	SourceForecast   RecommendationSource = "forecast"
	SourceHistorical RecommendationSource = "historical"
)

// Recommendation is the advised purchase timing: buy the ticket this many
// days before departure at the given expected price.
type Recommendation struct {
	DaysBeforeDeparture int
	Price               float64
	Source              RecommendationSource
}

// TrendSummary holds descriptive statistics over the aggregated series.
// Statistics whose input subset is empty are nil, never zero.
type TrendSummary struct {
	WeekendAvg    *float64
	WeekdayAvg    *float64
	BestDayOfWeek *string
	MinPrice      *float64
	MaxPrice      *float64
	AvgPrice      *float64
}
