// Package render draws a membership forecast into a PNG chart suitable for
// embedding in a chat message or API response.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	ErrNoChartData      = errors.New("no chart data to render")
	ErrChartLenMismatch = errors.New("chart series must have the same length as the time slice")
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

var (
	actualColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	bandColor     = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	markerColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// ChartData holds the series plotted on a forecast chart. Actual may be
// shorter than T leaving the horizon portion to the forecast line. NaN values
// are skipped when drawing.
type ChartData struct {
	T        []time.Time
	Actual   []float64
	Forecast []float64
	Upper    []float64
	Lower    []float64

	// Target and TargetDate mark the goal member count and the date the
	// forecast expects to reach it. TargetDate may be zero to skip the
	// marker.
	Target     float64
	TargetDate time.Time
}

func (d *ChartData) valid() error {
	if d == nil || len(d.T) == 0 {
		return ErrNoChartData
	}
	for _, series := range [][]float64{d.Forecast, d.Upper, d.Lower} {
		if len(series) != 0 && len(series) != len(d.T) {
			return ErrChartLenMismatch
		}
	}
	if len(d.Actual) > len(d.T) {
		return ErrChartLenMismatch
	}
	return nil
}

// ForecastPNG renders the chart data into PNG bytes showing the observed
// counts, the forecast with uncertainty bands, and the target crossing
// marker.
func ForecastPNG(d *ChartData) ([]byte, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Member Growth Forecast"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Members"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	if pts := xyPoints(d.T, d.Actual); len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("unable to draw actual line, %w", err)
		}
		line.LineStyle.Color = actualColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Actual", line)
	}

	if pts := xyPoints(d.T, d.Forecast); len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("unable to draw forecast line, %w", err)
		}
		line.LineStyle.Color = forecastColor
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("Forecast", line)
	}

	for _, band := range []struct {
		name string
		y    []float64
	}{
		{"Upper", d.Upper},
		{"Lower", d.Lower},
	} {
		pts := xyPoints(d.T, band.y)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("unable to draw %s band, %w", band.name, err)
		}
		line.LineStyle.Color = bandColor
		line.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
	}

	if err := addTargetMarkers(p, d); err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("unable to create png writer, %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to render png, %w", err)
	}
	return buf.Bytes(), nil
}

// ForecastPNGBase64 renders the chart data and encodes the resulting PNG
// with standard base64.
func ForecastPNGBase64(d *ChartData) (string, error) {
	png, err := ForecastPNG(d)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// addTargetMarkers draws a horizontal line at the target count and a
// vertical line at the expected crossing date.
func addTargetMarkers(p *plot.Plot, d *ChartData) error {
	if d.Target <= 0 {
		return nil
	}

	minX := float64(d.T[0].Unix())
	maxX := float64(d.T[len(d.T)-1].Unix())

	target, err := plotter.NewLine(plotter.XYs{
		{X: minX, Y: d.Target},
		{X: maxX, Y: d.Target},
	})
	if err != nil {
		return fmt.Errorf("unable to draw target line, %w", err)
	}
	target.LineStyle.Color = markerColor
	target.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(target)
	p.Legend.Add("Target", target)

	if d.TargetDate.IsZero() {
		return nil
	}

	maxY := d.Target
	for _, series := range [][]float64{d.Actual, d.Forecast, d.Upper} {
		for _, v := range series {
			if !math.IsNaN(v) && v > maxY {
				maxY = v
			}
		}
	}

	marker, err := plotter.NewLine(plotter.XYs{
		{X: float64(d.TargetDate.Unix()), Y: 0},
		{X: float64(d.TargetDate.Unix()), Y: maxY},
	})
	if err != nil {
		return fmt.Errorf("unable to draw target date marker, %w", err)
	}
	marker.LineStyle.Color = markerColor
	p.Add(marker)
	return nil
}

func xyPoints(t []time.Time, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(y))
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(t[i].Unix()), Y: y[i]})
	}
	return pts
}
