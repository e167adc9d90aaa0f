package forecast

import "time"

// Changepoint describes a point in time that shifts the ongoing growth trend.
// Each contributes both a bias and a slope feature.
type Changepoint struct {
	T    time.Time `json:"time" yaml:"time"`
	Name string    `json:"name" yaml:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}
