package growthcast

import (
	"errors"
	"math"
	"testing"
	"time"

	"growthcast/forecast"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// joinSeries generates a daily cumulative series starting 2024-01-01 growing
// at a constant rate of members per day.
func joinSeries(n int, rate float64) ([]time.Time, []float64) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
		y = append(y, rate*float64(i+1))
	}
	return t, y
}

func linearPredictorOptions() *Options {
	return &Options{
		SeriesOptions: &forecast.Options{
			GrowthOrder:    1,
			WeeklyOrders:   0,
			Regularization: []float64{0.0},
		},
		ResidualOptions: &forecast.Options{
			GrowthOrder:    1,
			WeeklyOrders:   0,
			Regularization: []float64{0.0},
		},
		ResidualWindow: 10,
		ResidualZscore: 4.0,
	}
}

func TestNewDefaultPredictor(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, DefaultResidualWindow, p.opt.ResidualWindow)
}

func TestFitLinearSeries(t *testing.T) {
	tSeries, y := joinSeries(120, 2.0)

	p, err := New(linearPredictorOptions())
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	res := p.FitResults()
	require.NotNil(t, res)
	require.Equal(t, len(tSeries), len(res.Forecast))
	for i := 0; i < len(y); i++ {
		assert.InDelta(t, y[i], res.Forecast[i], 1e-3)
		assert.GreaterOrEqual(t, res.Upper[i], res.Lower[i])
	}

	scores := p.SeriesScores()
	assert.Greater(t, scores.R2, 0.999)
}

func TestFitMasksOutliers(t *testing.T) {
	tSeries, y := joinSeries(100, 2.0)

	// single mass join event
	spikeIdx := 50
	y[spikeIdx] += 80.0

	opt := linearPredictorOptions()
	opt.OutlierOptions = NewOutlierOptions()

	p, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	residuals := p.Residuals()
	require.Equal(t, len(tSeries), len(residuals))
	assert.True(t, math.IsNaN(residuals[spikeIdx]))

	// the masked fit should track the underlying growth at the spike
	res := p.FitResults()
	assert.InDelta(t, 2.0*float64(spikeIdx+1), res.Forecast[spikeIdx], 2.0)
}

func TestFitErrors(t *testing.T) {
	p, err := New(linearPredictorOptions())
	require.NoError(t, err)

	tSeries, y := joinSeries(3, 1.0)
	testData := map[string]struct {
		t []time.Time
		y []float64
	}{
		"no data":      {nil, nil},
		"len mismatch": {tSeries, y[:2]},
		"too short":    {tSeries[:1], y[:1]},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, p.Fit(td.t, td.y))
		})
	}
}

func TestTargetDate(t *testing.T) {
	tSeries, y := joinSeries(120, 2.0)

	p, err := New(linearPredictorOptions())
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	// growing 2/day from 2024-01-01 reaches 400 members around day 200
	est, err := p.TargetDate(400, 365)
	require.NoError(t, err)

	expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 199)
	assert.WithinDuration(t, expected, est.T, 3*24*time.Hour)
	assert.False(t, est.Earliest.IsZero())
	assert.False(t, est.Latest.IsZero())
	assert.True(t, !est.Earliest.After(est.Latest))
	require.NotNil(t, est.Horizon)
	assert.Equal(t, tSeries[0], est.Horizon.T[0])
}

func TestTargetDateObserved(t *testing.T) {
	tSeries, y := joinSeries(120, 2.0)

	p, err := New(linearPredictorOptions())
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	// the series already passed 50 members on day 24 so the estimate pins
	// to the observed crossing rather than the fit
	est, err := p.TargetDate(50, 30)
	require.NoError(t, err)
	assert.Equal(t, tSeries[24], est.T)
}

func TestTargetDateObservedBeyondForecast(t *testing.T) {
	tSeries, y := joinSeries(100, 1.0)

	// mass join event that later prunes back down; the fit masks it as an
	// outlier so the forecast alone never reaches the target
	y[50] = 300

	opt := linearPredictorOptions()
	opt.OutlierOptions = NewOutlierOptions()

	p, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	est, err := p.TargetDate(200, 5)
	require.NoError(t, err)
	assert.Equal(t, tSeries[50], est.T)
}

func TestTargetDateErrors(t *testing.T) {
	tSeries, y := joinSeries(60, 1.0)

	fit, err := New(linearPredictorOptions())
	require.NoError(t, err)
	require.NoError(t, fit.Fit(tSeries, y))

	unfit, err := New(linearPredictorOptions())
	require.NoError(t, err)

	testData := map[string]struct {
		p       *Predictor
		target  float64
		horizon int
		err     error
	}{
		"zero target":     {fit, 0, 30, ErrNonPositiveTarget},
		"negative target": {fit, -5, 30, ErrNonPositiveTarget},
		"zero horizon":    {fit, 100, 0, ErrNonPositiveHorizon},
		"unfit":           {unfit, 100, 30, ErrEmptySeries},
		"not reached":     {fit, 1e6, 30, ErrTargetNotReached},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.p.TargetDate(td.target, td.horizon)
			require.Error(t, err)
			assert.True(t, errors.Is(err, td.err))
		})
	}
}

func TestModelRoundTrip(t *testing.T) {
	tSeries, y := joinSeries(90, 3.0)

	p, err := New(linearPredictorOptions())
	require.NoError(t, err)
	require.NoError(t, p.Fit(tSeries, y))

	model, err := p.Model()
	require.NoError(t, err)

	out, err := json.Marshal(model)
	require.NoError(t, err)

	var loadedModel Model
	require.NoError(t, json.Unmarshal(out, &loadedModel))

	loaded, err := NewFromModel(loadedModel)
	require.NoError(t, err)

	horizon := make([]time.Time, 0, 30)
	last := tSeries[len(tSeries)-1]
	for i := 1; i <= 30; i++ {
		horizon = append(horizon, last.AddDate(0, 0, i))
	}

	expected, err := p.Predict(horizon)
	require.NoError(t, err)
	got, err := loaded.Predict(horizon)
	require.NoError(t, err)

	for i := 0; i < len(horizon); i++ {
		assert.InDelta(t, expected.Forecast[i], got.Forecast[i], 1e-6)
		assert.InDelta(t, expected.Upper[i], got.Upper[i], 1e-6)
		assert.InDelta(t, expected.Lower[i], got.Lower[i], 1e-6)
	}
}

func TestNewFromModelNoOptions(t *testing.T) {
	_, err := NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
}
