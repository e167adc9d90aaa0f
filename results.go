package growthcast

import (
	"time"

	"growthcast/forecast"
)

// Results stores a prediction over a set of time points along with the
// upper and lower uncertainty bands and the decomposed model components.
type Results struct {
	T                  []time.Time         `json:"time"`
	Forecast           []float64           `json:"forecast"`
	Upper              []float64           `json:"upper"`
	Lower              []float64           `json:"lower"`
	SeriesComponents   forecast.Components `json:"series_components"`
	ResidualComponents forecast.Components `json:"residual_components"`
}
