package forecast

import (
	"growthcast/event"
)

const (
	DefaultGrowthOrder         = 3
	DefaultAutoNumChangepoints = 8
	DefaultWeeklyOrders        = 2
	DefaultYearlyOrders        = 0
)

// Options configures the features generated when fitting a growth forecast.
type Options struct {
	// GrowthOrder is the highest polynomial order of the trend backbone.
	// Order 1 models linear member growth, higher orders capture join rate
	// acceleration.
	GrowthOrder int `json:"growth_order" yaml:"growth_order"`

	ChangepointOptions ChangepointOptions `json:"changepoint_options" yaml:"changepoint_options"`

	// WeeklyOrders sets the number of fourier orders modeling the
	// day-of-week join pattern. 0 disables weekly seasonality.
	WeeklyOrders int `json:"weekly_orders" yaml:"weekly_orders"`

	// YearlyOrders sets the number of fourier orders modeling the
	// day-of-year join pattern. 0 disables yearly seasonality.
	YearlyOrders int `json:"yearly_orders" yaml:"yearly_orders"`

	EventOptions EventOptions `json:"event_options" yaml:"event_options"`

	// Regularization is the lasso lambda grid. A single 0.0 converges to
	// OLS. Multiple values fit in parallel keeping the best score.
	Regularization []float64 `json:"regularization" yaml:"regularization"`
}

// NewDefaultOptions returns a set of default forecast options for daily
// cumulative membership series.
func NewDefaultOptions() *Options {
	return &Options{
		GrowthOrder: DefaultGrowthOrder,
		ChangepointOptions: ChangepointOptions{
			Auto:                true,
			AutoNumChangepoints: DefaultAutoNumChangepoints,
		},
		WeeklyOrders:   DefaultWeeklyOrders,
		YearlyOrders:   DefaultYearlyOrders,
		Regularization: []float64{1.0},
	}
}

// ChangepointOptions configures the growth trend shifts of the forecast. Set
// Auto to spread evenly spaced changepoints over the training window or
// provide explicit changepoints.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints" yaml:"changepoints"`
	Auto                bool          `json:"auto" yaml:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints" yaml:"auto_num_changepoints"`
}

// EventOptions tracks labeled time windows modeled separately from the
// baseline growth, e.g. holiday join surges.
type EventOptions struct {
	Events []event.Event `json:"events" yaml:"events"`
}
