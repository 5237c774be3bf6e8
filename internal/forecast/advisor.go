package forecast

import (
	"math"

	"github.com/valyzer/valyzer/internal/model"
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Advisor selects the best purchase day from a forecast, falling back to
// historical data when no forecast exists, and computes descriptive trend
// statistics over the aggregated series.
type Advisor struct {
	forecast []model.ForecastPoint
	series   model.FareSeries
}

// NewAdvisor creates an advisor over a forecast and the series it was
// derived from. Either input may be empty.
func NewAdvisor(forecast []model.ForecastPoint, series model.FareSeries) *Advisor {
	return &Advisor{forecast: forecast, series: series}
}

// Recommend returns the advised purchase timing. Priority: the forecast
// point with the minimum predicted price; else the historical row with the
// minimum observed price; else absent (ok=false).
func (a *Advisor) Recommend() (*model.Recommendation, bool) {
	if len(a.forecast) > 0 {
		best := a.forecast[0]
		for _, p := range a.forecast[1:] {
			if p.PredictedPrice < best.PredictedPrice {
				best = p
			}
		}
		return &model.Recommendation{
			DaysBeforeDeparture: best.DaysUntilFlight,
			Price:               round2(best.PredictedPrice),
			Source:              model.SourceForecast,
		}, true
	}

	if best, ok := a.series.MinRow(); ok {
		return &model.Recommendation{
			DaysBeforeDeparture: best.DaysUntilFlight,
			Price:               round2(best.MinPrice),
			Source:              model.SourceHistorical,
		}, true
	}

	return nil, false
}

// TrendSummary computes weekend/weekday averages, the cheapest day of the
// week and overall min/max/avg prices over the series, rounded to 2
// decimals. Statistics over an empty subset stay nil.
func (a *Advisor) TrendSummary() model.TrendSummary {
	var summary model.TrendSummary
	if len(a.series) == 0 {
		return summary
	}

	var weekendSum, weekdaySum, totalSum float64
	var weekendN, weekdayN int
	daySums := [7]float64{}
	dayCounts := [7]int{}

	minPrice := a.series[0].MinPrice
	maxPrice := a.series[0].MinPrice

	for _, p := range a.series {
		totalSum += p.MinPrice
		if p.IsWeekend {
			weekendSum += p.MinPrice
			weekendN++
		} else {
			weekdaySum += p.MinPrice
			weekdayN++
		}
		daySums[p.DayOfWeek] += p.MinPrice
		dayCounts[p.DayOfWeek]++

		if p.MinPrice < minPrice {
			minPrice = p.MinPrice
		}
		if p.MinPrice > maxPrice {
			maxPrice = p.MinPrice
		}
	}

	if weekendN > 0 {
		summary.WeekendAvg = ptr(round2(weekendSum / float64(weekendN)))
	}
	if weekdayN > 0 {
		summary.WeekdayAvg = ptr(round2(weekdaySum / float64(weekdayN)))
	}

	bestDay := -1
	var bestAvg float64
	for d := 0; d < 7; d++ {
		if dayCounts[d] == 0 {
			continue
		}
		avg := daySums[d] / float64(dayCounts[d])
		if bestDay < 0 || avg < bestAvg {
			bestDay = d
			bestAvg = avg
		}
	}
	if bestDay >= 0 {
		summary.BestDayOfWeek = ptr(dayNames[bestDay])
	}

	summary.MinPrice = ptr(round2(minPrice))
	summary.MaxPrice = ptr(round2(maxPrice))
	summary.AvgPrice = ptr(round2(totalSum / float64(len(a.series))))

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
