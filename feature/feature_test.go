package feature

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFeatureLabels(t *testing.T) {
	testData := map[string]struct {
		feat     Feature
		label    string
		ftype    FeatureType
		getKey   string
		getValue string
	}{
		"growth": {
			feat:     NewGrowth("poly", 2),
			label:    "growth_poly_02",
			ftype:    FeatureTypeGrowth,
			getKey:   "order",
			getValue: "2",
		},
		"changepoint": {
			feat:     NewChangepoint("auto_0", ChangepointCompSlope),
			label:    "chpnt_auto_0_slope",
			ftype:    FeatureTypeChangepoint,
			getKey:   "changepoint_component",
			getValue: "slope",
		},
		"seasonality": {
			feat:     NewSeasonality("dow", FourierCompSin, 1),
			label:    "seas_dow_01_sin",
			ftype:    FeatureTypeSeasonality,
			getKey:   "fourier_component",
			getValue: "sin",
		},
		"event": {
			feat:     NewEvent("christmas_2024"),
			label:    "event_christmas_2024",
			ftype:    FeatureTypeEvent,
			getKey:   "name",
			getValue: "christmas_2024",
		},
		"time": {
			feat:     NewTime("dow"),
			label:    "tfeat_dow",
			ftype:    FeatureTypeTime,
			getKey:   "name",
			getValue: "dow",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.label, td.feat.String())
			assert.Equal(t, td.ftype, td.feat.Type())

			val, exists := td.feat.Get(td.getKey)
			require.True(t, exists)
			assert.Equal(t, td.getValue, val)

			_, exists = td.feat.Get("bogus")
			assert.False(t, exists)
		})
	}
}

func TestGrowthJSON(t *testing.T) {
	g := NewGrowth("poly", 3)
	out, err := json.Marshal(g.Decode())
	require.Nil(t, err)

	var next Growth
	require.Nil(t, json.Unmarshal(out, &next))
	assert.Equal(t, *g, next)
}

func TestSeasonalityJSON(t *testing.T) {
	s := NewSeasonality("dow", FourierCompCos, 2)
	out, err := json.Marshal(s.Decode())
	require.Nil(t, err)

	var next Seasonality
	require.Nil(t, json.Unmarshal(out, &next))
	assert.Equal(t, *s, next)
}

func TestSetMatrix(t *testing.T) {
	s := make(Set)
	linear := NewGrowth("poly", 1)
	quad := NewGrowth("poly", 2)
	s[linear.String()] = Data{F: linear, Data: []float64{1, 2, 3}}
	s[quad.String()] = Data{F: quad, Data: []float64{1, 4, 9}}

	labels := s.Labels()
	require.Equal(t, 2, labels.Len())

	idx, exists := labels.Index(linear)
	require.True(t, exists)
	assert.Equal(t, 0, idx)

	mx := s.Matrix(true)
	m, n := mx.Dims()
	assert.Equal(t, 3, m)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 4}, mat.Row(nil, 1, mx))

	slice := s.MatrixSlice(false)
	require.Len(t, slice, 2)
	assert.Equal(t, []float64{1, 2, 3}, slice[0])
	assert.Equal(t, []float64{1, 4, 9}, slice[1])
}

func TestSetUpdate(t *testing.T) {
	s := make(Set)
	linear := NewGrowth("poly", 1)
	s[linear.String()] = Data{F: linear, Data: []float64{1, 2}}

	other := make(Set)
	ev := NewEvent("surge")
	other[ev.String()] = Data{F: ev, Data: []float64{0, 1}}

	s.Update(other)
	require.Len(t, s, 2)
	assert.Equal(t, []float64{0, 1}, s[ev.String()].Data)
}

func TestSetPruneZeroed(t *testing.T) {
	s := make(Set)
	linear := NewGrowth("poly", 1)
	past := NewEvent("surge")
	future := NewEvent("launch")
	s[linear.String()] = Data{F: linear, Data: []float64{0, 1, 2}}
	s[past.String()] = Data{F: past, Data: []float64{0, 1, 0}}
	s[future.String()] = Data{F: future, Data: []float64{0, 0, 0}}

	s.PruneZeroed()
	require.Len(t, s, 2)
	_, exists := s[linear.String()]
	assert.True(t, exists)
	_, exists = s[past.String()]
	assert.True(t, exists)
	_, exists = s[future.String()]
	assert.False(t, exists)
}
