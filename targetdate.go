package growthcast

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNonPositiveTarget  = errors.New("target must be greater than zero")
	ErrNonPositiveHorizon = errors.New("horizon must be at least one day")
	ErrTargetNotReached   = errors.New("target not reached within the forecast horizon")
)

// TargetEstimate reports when the forecast expects the cumulative count to
// reach a target. Earliest and Latest bound the crossing with the upper and
// lower uncertainty bands and are zero when the band never crosses within
// the horizon.
type TargetEstimate struct {
	Target   float64   `json:"target"`
	T        time.Time `json:"time"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`

	// Horizon holds the daily forecast scanned for the crossing covering
	// the training window plus horizon days.
	Horizon *Results `json:"-"`
}

// TargetDate scans a daily forecast from the training start through
// horizonDays past the training end and returns the first date the forecast
// meets or exceeds the target. Historical crossings resolve to the day the
// observed series first reached the target regardless of the fit. Returns
// ErrTargetNotReached when neither the observed series nor the forecast
// reaches the target within the horizon.
func (p *Predictor) TargetDate(target float64, horizonDays int) (*TargetEstimate, error) {
	if target <= 0 {
		return nil, ErrNonPositiveTarget
	}
	if horizonDays < 1 {
		return nil, ErrNonPositiveHorizon
	}
	if p.fitSeries == nil || p.fitSeries.Len() == 0 {
		return nil, ErrEmptySeries
	}

	start := p.fitSeries.T[0]
	end := p.TrainEndTime().AddDate(0, 0, horizonDays)

	t := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		t = append(t, d)
	}

	res, err := p.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast over horizon, %w", err)
	}

	est := &TargetEstimate{
		Target:  target,
		Horizon: res,
	}

	// prefer the observed crossing when the series already reached the
	// target during training
	for i := 0; i < p.fitSeries.Len(); i++ {
		if p.fitSeries.Y[i] >= target {
			est.T = p.fitSeries.T[i]
			break
		}
	}

	for i := 0; i < len(t); i++ {
		if est.Earliest.IsZero() && res.Upper[i] >= target {
			est.Earliest = t[i]
		}
		if est.T.IsZero() && res.Forecast[i] >= target {
			est.T = t[i]
		}
		if est.Latest.IsZero() && res.Lower[i] >= target {
			est.Latest = t[i]
		}
	}

	if est.T.IsZero() {
		return nil, fmt.Errorf("target %0.f not reached by %s, %w", target, end.Format(time.DateOnly), ErrTargetNotReached)
	}

	return est, nil
}
