// Package feature provides the typed model features used to decompose a
// membership growth series. Each feature has a stable string label used to
// line up design matrix columns with fitted coefficients.
package feature

type FeatureType int

const (
	FeatureTypeGrowth FeatureType = iota
	FeatureTypeChangepoint
	FeatureTypeSeasonality
	FeatureTypeEvent
	FeatureTypeTime
)

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// Data pairs a feature with its observed values.
type Data struct {
	F    Feature
	Data []float64
}
