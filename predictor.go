// Package growthcast forecasts when a community will reach a target member
// count. A Predictor fits a decomposable growth model to the cumulative
// membership series, fits a second model to the rolling residual spread for
// uncertainty bands, and scans the forecast horizon for the first target
// crossing.
package growthcast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"growthcast/forecast"
	"growthcast/membership"
	"growthcast/stats"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientResidual = errors.New("insufficient samples from residual after outlier removal")
	ErrEmptySeries          = errors.New("no membership series or uninitialized")
	ErrNoOptionsInModel     = errors.New("no options set in model")
)

const (
	MinResidualWindow       = 2
	MinResidualSize         = 2
	MinResidualWindowFactor = 4
)

// Predictor fits a growth model to a cumulative membership series and can
// be used to generate forecasts with uncertainty bands.
type Predictor struct {
	opt *Options

	seriesForecast   *forecast.Forecast
	residualForecast *forecast.Forecast

	fitSeries  *membership.Series
	fitResults *Results
	residual   []float64
}

// New creates a new instance of a Predictor using the provided options. If
// no options are provided a default is used.
func New(opt *Options) (*Predictor, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	p := &Predictor{
		opt: opt,
	}

	seriesForecast, err := forecast.New(p.opt.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize series forecast, %w", err)
	}
	p.seriesForecast = seriesForecast

	residualForecast, err := forecast.New(p.opt.ResidualOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize residual forecast, %w", err)
	}
	p.residualForecast = residualForecast
	return p, nil
}

// NewFromModel creates a new instance of a Predictor from a pre-existing
// model generated from a previous call to Model().
func NewFromModel(model Model) (*Predictor, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	opt := model.Options
	opt.SeriesOptions = model.Series.Options
	opt.ResidualOptions = model.Residual.Options

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}
	residualForecast, err := forecast.NewFromModel(model.Residual)
	if err != nil {
		return nil, fmt.Errorf("unable to load from residual model, %w", err)
	}
	return &Predictor{
		opt:              opt,
		seriesForecast:   seriesForecast,
		residualForecast: residualForecast,
	}, nil
}

// Fit uses the input cumulative membership series and fits both the series
// and uncertainty models.
func (p *Predictor) Fit(t []time.Time, y []float64) error {
	s, err := membership.NewSeries(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training series, %w", err)
	}
	p.fitSeries = s.Copy()

	residual, err := p.fitSeriesWithOutliers(s.T, s.Y)
	if err != nil {
		return err
	}

	p.residual = make([]float64, len(t))
	var j int
	for i := 0; i < len(t); i++ {
		if j < len(s.T) && t[i].Equal(s.T[j]) {
			p.residual[i] = residual[j]
			j += 1
		} else {
			p.residual[i] = math.NaN()
		}
	}
	if err := p.fitResidual(s.T, residual); err != nil {
		return err
	}

	p.fitResults, err = p.Predict(t)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}

	return nil
}

// fitSeriesWithOutliers iterates the series fit masking residual outliers,
// e.g. mass join events, to NaN between passes.
func (p *Predictor) fitSeriesWithOutliers(t []time.Time, y []float64) ([]float64, error) {
	numPasses := 0
	if p.opt.OutlierOptions != nil {
		numPasses = p.opt.OutlierOptions.NumPasses
	}

	var residual []float64
	for i := 0; i <= numPasses; i++ {
		if err := p.seriesForecast.Fit(t, y); err != nil {
			return nil, fmt.Errorf("unable to fit series, %w", err)
		}

		residual = p.seriesForecast.Residuals()

		// break out if no outlier options provided
		if p.opt.OutlierOptions == nil {
			break
		}

		outlierIdxs := stats.DetectOutliers(
			residual,
			p.opt.OutlierOptions.LowerPercentile,
			p.opt.OutlierOptions.UpperPercentile,
			p.opt.OutlierOptions.TukeyFactor,
		)

		// no more outliers detected so break early
		if len(outlierIdxs) == 0 {
			break
		}

		for _, idx := range outlierIdxs {
			y[idx] = math.NaN()
		}
	}
	return residual, nil
}

// fitResidual computes a rolling window standard deviation of the series
// residual and fits the uncertainty model to it. The window is not
// necessarily a block of continuous time but could jump across outlier
// points.
func (p *Predictor) fitResidual(t []time.Time, residual []float64) error {
	if len(residual) < MinResidualSize {
		return ErrInsufficientResidual
	}

	// limit residual window to a quarter of the resulting residual output
	if len(residual)/MinResidualWindowFactor < p.opt.ResidualWindow {
		p.opt.ResidualWindow = len(residual) / MinResidualWindowFactor
	}
	if p.opt.ResidualWindow < MinResidualWindow {
		p.opt.ResidualWindow = MinResidualWindow
	}

	numWindows := len(residual) - p.opt.ResidualWindow + 1
	stddevSeries := make([]float64, numWindows)
	for i := 0; i < numWindows; i++ {
		_, stddev := stat.MeanStdDev(residual[i:i+p.opt.ResidualWindow], nil)
		stddevSeries[i] = p.opt.ResidualZscore * stddev
	}

	// shift by half the residual window since computing the rolling series
	// is similar to a finite impulse response filter with a group delay of
	// window/2
	start := p.opt.ResidualWindow / 2
	end := len(t) - p.opt.ResidualWindow/2 - p.opt.ResidualWindow%2 + 1

	residualSeries, err := membership.NewSeries(t[start:end], stddevSeries)
	if err != nil {
		return fmt.Errorf("unable to create uncertainty series, %w", err)
	}

	if err := p.residualForecast.Fit(residualSeries.T, residualSeries.Y); err != nil {
		return fmt.Errorf("unable to fit uncertainty model, %w", err)
	}

	return nil
}

// Predict takes in any set of time samples and generates a forecast along
// with upper and lower uncertainty values per time point.
func (p *Predictor) Predict(t []time.Time) (*Results, error) {
	seriesRes, seriesComp, err := p.seriesForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series, %w", err)
	}
	residualRes, residualComp, err := p.residualForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict uncertainty, %w", err)
	}

	// cap uncertainty predictions to be greater than or equal to 0
	for i := 0; i < len(residualRes); i++ {
		if residualRes[i] < 0.0 {
			residualRes[i] = 0.0
		}
	}

	r := &Results{
		T:                  t,
		Forecast:           seriesRes,
		SeriesComponents:   seriesComp,
		ResidualComponents: residualComp,
	}
	upper := make([]float64, len(seriesRes))
	lower := make([]float64, len(seriesRes))

	copy(upper, seriesRes)
	copy(lower, seriesRes)

	floats.Add(upper, residualRes)
	floats.Sub(lower, residualRes)
	r.Upper = upper
	r.Lower = lower
	return r, nil
}

// Residuals returns the difference between the final series fit against the
// training data
func (p *Predictor) Residuals() []float64 {
	res := make([]float64, len(p.residual))
	copy(res, p.residual)
	return res
}

// TrendComponent returns the trend component of the series fit
func (p *Predictor) TrendComponent() []float64 {
	return p.seriesForecast.TrendComponent()
}

// SeasonalityComponent returns the seasonality component of the series fit
func (p *Predictor) SeasonalityComponent() []float64 {
	return p.seriesForecast.SeasonalityComponent()
}

// EventComponent returns the event component of the series fit
func (p *Predictor) EventComponent() []float64 {
	return p.seriesForecast.EventComponent()
}

// SeriesScores returns the fit scores of the series model
func (p *Predictor) SeriesScores() forecast.Scores {
	return p.seriesForecast.Scores()
}

// TrainingSeries returns the series used to fit the current predictor
func (p *Predictor) TrainingSeries() *membership.Series {
	return p.fitSeries
}

// FitResults returns the results of the fit which includes the forecast,
// upper, and lower values over the training window
func (p *Predictor) FitResults() *Results {
	return p.fitResults
}

// TrainEndTime returns the end of the series training window
func (p *Predictor) TrainEndTime() time.Time {
	return p.seriesForecast.TrainEndTime()
}

// Model generates a serializeable representation of the fit options, series
// model, and uncertainty model.
func (p *Predictor) Model() (Model, error) {
	seriesModel, err := p.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	residualModel, err := p.residualForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch residual model, %w", err)
	}
	return Model{
		Options:  p.opt,
		Series:   seriesModel,
		Residual: residualModel,
	}, nil
}
