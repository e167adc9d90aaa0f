package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseline() []float64 {
	return []float64{
		1, 2, 1, 3, 2, 1, 2, 3, 2, 3,
		1, 2, 1, 3, 2, 1, 2, 3, 2, 3,
	}
}

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y           func() []float64
		lowerPerc   float64
		upperPerc   float64
		tukeyFactor float64
		expected    []int
	}{
		"upper outlier": {
			y: func() []float64 {
				y := baseline()
				y[19] = 50
				return y
			},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 1.0,
			expected:    []int{19},
		},
		"lower and upper outliers": {
			y: func() []float64 {
				y := baseline()
				y[0] = -40
				y[19] = 50
				return y
			},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 1.0,
			expected:    []int{0, 19},
		},
		"no outliers": {
			y:           baseline,
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 3.0,
			expected:    nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, DetectOutliers(td.y(), td.lowerPerc, td.upperPerc, td.tukeyFactor))
		})
	}
}
