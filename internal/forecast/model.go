// Package forecast trains a regression over an aggregated fare series and
// projects purchase-day prices with a confidence band, then advises the best
// day to buy.
package forecast

import (
	"math"
	"time"

	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/model"
)

// Training thresholds.
const (
	// MinTrainingRows is the minimum series length for any training at all.
	MinTrainingRows = 5
	// minHoldoutRows is the series length from which a chronological
	// train/test split produces an honest RMSE.
	minHoldoutRows = 10
	// confidenceZ builds the 95% band around predictions.
	confidenceZ = 1.96
)

// State is the model's explicit training state.
type State int

// Model states. Callers branch on these instead of probing for absent values.
const (
	Untrained State = iota
	Trained
)

func (s State) String() string {
	if s == Trained {
		return "trained"
	}
	return "untrained"
}

// Model fits a linear regression over temporal features of a fare series.
// A Model is created per fit call and not persisted; fresh input data means a
// fresh model.
type Model struct {
	now     func() time.Time
	series  model.FareSeries
	coeffs  []float64
	rmse    float64
	state   State
	heldOut bool
}

// NewModel creates an untrained model.
func NewModel() *Model {
	return &Model{now: time.Now}
}

// State reports whether the model has been trained.
func (m *Model) State() State {
	return m.state
}

// RMSE returns the model's accuracy estimate. Only meaningful when Trained.
func (m *Model) RMSE() float64 {
	return m.rmse
}

// HeldOut reports whether the RMSE came from a genuine chronological holdout.
// False means the model was evaluated on its own training rows, an
// explicitly optimistic estimate used when fewer than 10 rows are available.
func (m *Model) HeldOut() bool {
	return m.heldOut
}

// TrainingSeries returns the series the model was fitted on.
func (m *Model) TrainingSeries() model.FareSeries {
	return m.series
}

// Fit trains the model on the aggregated series. Fewer than MinTrainingRows
// rows leaves the model Untrained and returns ErrInsufficientData, which is
// a non-fatal signal: forecasting is simply skipped.
//
// With 10 or more rows the last 20% is held out chronologically for the RMSE
// estimate; random sampling would leak future prices into the past, since
// row order encodes time.
func (m *Model) Fit(series model.FareSeries) error {
	m.state = Untrained
	m.series = series
	m.coeffs = nil
	m.rmse = 0
	m.heldOut = false

	if len(series) < MinTrainingRows {
		return common.ErrInsufficientData
	}

	x := make([][]float64, len(series))
	y := make([]float64, len(series))
	for i, p := range series {
		x[i] = featureVector(p.DaysUntilFlight, p.DayOfWeek, p.IsWeekend, p.Month, p.DaysFromTarget)
		y[i] = p.MinPrice
	}

	trainX, trainY := x, y
	testX, testY := x, y
	if len(series) >= minHoldoutRows {
		nTest := (len(series) + 4) / 5 // ceil(20%)
		split := len(series) - nTest
		trainX, trainY = x[:split], y[:split]
		testX, testY = x[split:], y[split:]
		m.heldOut = true
	}

	coeffs, err := solveLeastSquares(trainX, trainY)
	if err != nil {
		return err
	}
	m.coeffs = coeffs

	var sse float64
	for i, row := range testX {
		diff := predict(coeffs, row) - testY[i]
		sse += diff * diff
	}
	m.rmse = math.Sqrt(sse / float64(len(testX)))
	m.state = Trained

	return nil
}

// Forecast projects one point for every date from today through the day
// before departure. A departure today or earlier yields an empty sequence,
// not an error. An Untrained model always forecasts nothing.
func (m *Model) Forecast(targetDate time.Time) []model.ForecastPoint {
	if m.state != Trained {
		return nil
	}

	today := midnight(m.now())
	target := midnight(targetDate)
	daysToFlight := daysBetween(today, target)
	if daysToFlight <= 0 {
		return nil
	}

	points := make([]model.ForecastPoint, 0, daysToFlight)
	for d := today; d.Before(target); d = d.AddDate(0, 0, 1) {
		daysUntil := daysBetween(d, target)
		dow := mondayIndexed(d.Weekday())
		features := featureVector(daysUntil, dow, dow >= 5, int(d.Month()), -daysUntil)

		predicted := predict(m.coeffs, features)
		band := confidenceZ * m.rmse
		points = append(points, model.ForecastPoint{
			Date:            d,
			PredictedPrice:  predicted,
			LowerBound:      predicted - band,
			UpperBound:      predicted + band,
			DaysUntilFlight: daysUntil,
		})
	}

	return points
}

func featureVector(daysUntil, dayOfWeek int, isWeekend bool, month, daysFromTarget int) []float64 {
	weekend := 0.0
	if isWeekend {
		weekend = 1.0
	}
	return []float64{
		float64(daysUntil),
		float64(dayOfWeek),
		weekend,
		float64(month),
		float64(daysFromTarget),
	}
}

func predict(coeffs, features []float64) float64 {
	v := coeffs[0]
	for i, f := range features {
		v += coeffs[i+1] * f
	}
	return v
}

func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
