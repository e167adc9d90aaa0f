package growthcast

import (
	"testing"
	"time"

	"github.com/pkg/profile"
)

var benchEstimate *TargetEstimate

func benchSetup() ([]time.Time, []float64, *Options) {
	t, y := joinSeries(365*2, 3.0)
	opt := NewDefaultOptions()
	opt.OutlierOptions = NewOutlierOptions()
	return t, y, opt
}

func BenchmarkFit(b *testing.B) {
	t, y, opt := benchSetup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := New(opt)
		if err != nil {
			panic(err)
		}
		if err := p.Fit(t, y); err != nil {
			panic(err)
		}
	}
}

func BenchmarkTargetDate(b *testing.B) {
	t, y, opt := benchSetup()

	p, err := New(opt)
	if err != nil {
		panic(err)
	}
	if err := p.Fit(t, y); err != nil {
		panic(err)
	}

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		benchEstimate, err = p.TargetDate(5000, 365*5)
		if err != nil {
			panic(err)
		}
	}
}
