package growthcast

import (
	"growthcast/forecast"
)

const (
	DefaultResidualWindow = 30
	DefaultResidualZscore = 4.0
)

// OutlierOptions configures the iterative masking of mass join or prune
// spikes before the final series fit.
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes" yaml:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor" yaml:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures a Predictor with separate forecast options for the
// cumulative series fit and for the uncertainty fit on its residual.
type Options struct {
	SeriesOptions   *forecast.Options `json:"series_options" yaml:"series_options"`
	ResidualOptions *forecast.Options `json:"residual_options" yaml:"residual_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options" yaml:"outlier_options"`

	// ResidualWindow is the number of residual points per rolling stddev
	// window used to build the uncertainty series.
	ResidualWindow int `json:"residual_window" yaml:"residual_window"`

	// ResidualZscore scales the rolling stddev into the upper and lower
	// uncertainty bands.
	ResidualZscore float64 `json:"residual_zscore" yaml:"residual_zscore"`
}

// NewDefaultOptions generates a default set of options for daily membership
// series. The residual fit drops the polynomial growth down to linear since
// the uncertainty scale tends to move slowly.
func NewDefaultOptions() *Options {
	residualOpt := &forecast.Options{
		GrowthOrder:    1,
		WeeklyOrders:   0,
		Regularization: []float64{1.0},
	}
	return &Options{
		SeriesOptions:   forecast.NewDefaultOptions(),
		ResidualOptions: residualOpt,
		ResidualWindow:  DefaultResidualWindow,
		ResidualZscore:  DefaultResidualZscore,
	}
}
