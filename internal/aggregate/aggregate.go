// Package aggregate reduces raw fare quotes into a daily minimum-price series
// with calendar-derived features. Aggregation is pure: identical input always
// yields identical output.
package aggregate

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/valyzer/valyzer/internal/model"
)

// priceRe extracts the leading decimal from a formatted price, tolerating
// trailing annotations such as "123.45 EUR - for [2 Adults]".
var priceRe = regexp.MustCompile(`[\d.]+`)

// ParsePrice extracts the numeric amount from a formatted price string.
// Returns false when no number is present.
func ParsePrice(formatted string) (float64, bool) {
	m := priceRe.FindString(formatted)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Aggregate groups quotes by calendar date and emits one row per date holding
// the minimum parsed price and the features derived from that date. Dates with
// no quotes simply do not appear; empty input yields an empty series.
func Aggregate(quotes []model.FareQuote, targetDate time.Time) model.FareSeries {
	return AggregateAt(quotes, targetDate, time.Now())
}

// AggregateAt is Aggregate with an explicit observation time, which anchors
// the days-until-flight feature.
func AggregateAt(quotes []model.FareQuote, targetDate, now time.Time) model.FareSeries {
	today := midnight(now)
	target := midnight(targetDate)

	minByDate := make(map[time.Time]float64)
	for _, q := range quotes {
		price, ok := ParsePrice(q.Price)
		if !ok {
			continue
		}
		d := midnight(q.Date)
		if cur, seen := minByDate[d]; !seen || price < cur {
			minByDate[d] = price
		}
	}

	series := make(model.FareSeries, 0, len(minByDate))
	for d, price := range minByDate {
		_, week := d.ISOWeek()
		dow := mondayIndexed(d.Weekday())
		series = append(series, model.SeriesPoint{
			Date:            d,
			MinPrice:        price,
			DaysUntilFlight: daysBetween(today, d),
			DayOfWeek:       dow,
			IsWeekend:       dow >= 5,
			WeekOfYear:      week,
			Month:           int(d.Month()),
			DaysFromTarget:  daysBetween(target, d),
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// mondayIndexed converts time.Weekday (Sunday=0) to Monday=0 .. Sunday=6.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
