package membership

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrNoJoinDates       = errors.New("no join dates")
	ErrNoSeriesData      = errors.New("no series data")
	ErrNonMonotonic      = errors.New("series time is not strictly increasing")
	ErrSeriesLenMismatch = errors.New("series time has a different length than counts")
)

// Series represents the cumulative membership count over time. Time must be
// strictly increasing and both slices must be of the same length.
type Series struct {
	T []time.Time
	Y []float64
}

// NewSeries returns an instance of a Series given a time and count slice.
func NewSeries(t []time.Time, y []float64) (*Series, error) {
	if len(y) == 0 {
		return nil, ErrNoSeriesData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"series time has length of %d, but counts has a length of %d, %w",
			len(t), len(y), ErrSeriesLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &Series{
		T: tSeries,
		Y: ySeries,
	}, nil
}

// FromJoinDates builds the daily cumulative membership series from raw member
// join times. Joins are truncated to UTC midnight and sorted. Multiple joins
// on the same day collapse into that day's final count so the series time
// stays strictly increasing.
func FromJoinDates(joins []time.Time) (*Series, error) {
	if len(joins) == 0 {
		return nil, ErrNoJoinDates
	}

	days := make([]time.Time, len(joins))
	for i, j := range joins {
		days[i] = Day(j)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	t := make([]time.Time, 0, len(days))
	y := make([]float64, 0, len(days))
	for i, d := range days {
		cnt := float64(i + 1)
		if len(t) > 0 && t[len(t)-1].Equal(d) {
			y[len(y)-1] = cnt
			continue
		}
		t = append(t, d)
		y = append(y, cnt)
	}
	return &Series{T: t, Y: y}, nil
}

// Day truncates a time to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Series) Copy() *Series {
	if s == nil {
		return nil
	}
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.Y))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &Series{
		T: tSeries,
		Y: ySeries,
	}
}

// DropNan returns a copy of the series with NaN counts removed along with
// their time points.
func (s *Series) DropNan() *Series {
	if s == nil {
		return nil
	}
	t := make([]time.Time, 0, len(s.T))
	y := make([]float64, 0, len(s.Y))
	for i := 0; i < len(s.T); i++ {
		if math.IsNaN(s.Y[i]) {
			continue
		}
		t = append(t, s.T[i])
		y = append(y, s.Y[i])
	}
	return &Series{T: t, Y: y}
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.T)
}

// Current returns the latest observed cumulative count.
func (s *Series) Current() float64 {
	if s == nil || len(s.Y) == 0 {
		return 0
	}
	return s.Y[len(s.Y)-1]
}
