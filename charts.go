package growthcast

import (
	"errors"
	"io"
	"math"
	"time"

	"growthcast/membership"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrCannotInferInterval = errors.New("cannot infer interval from training series")

// LineTSeries generates an echart multi-line chart for some arbitrary
// time/value combination. The input y is a slice of series that must have
// the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}
	return line
}

// LineForecast generates an echart line chart for a fit result plotting the
// observed counts along with the forecasted, upper, and lower values over
// the training window and horizon.
func LineForecast(trainingSeries *membership.Series, res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Membership Forecast Fit",
			},
		),
	)

	lineDataActual := make([]opts.LineData, 0, len(res.T))
	lineDataForecast := make([]opts.LineData, 0, len(res.T))
	lineDataUpper := make([]opts.LineData, 0, len(res.T))
	lineDataLower := make([]opts.LineData, 0, len(res.T))

	var j int
	for i := 0; i < len(res.T); i++ {
		if j < trainingSeries.Len() && res.T[i].Equal(trainingSeries.T[j]) {
			lineDataActual = append(lineDataActual, opts.LineData{Value: trainingSeries.Y[j]})
			j += 1
		} else {
			lineDataActual = append(lineDataActual, opts.LineData{})
		}
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: res.Forecast[i]})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: res.Upper[i]})
		lineDataLower = append(lineDataLower, opts.LineData{Value: res.Lower[i]})
	}

	line.SetXAxis(res.T).
		AddSeries("Actual", lineDataActual).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

// PlotOpts sets the horizon to forecast out. By default will use 10% of the
// training size assuming daily intervals.
type PlotOpts struct {
	HorizonCnt      int
	HorizonInterval time.Duration
}

// PlotFit uses the Apache Echarts library to generate an html report
// showing the resulting fit, model components, and fit residual.
func (p *Predictor) PlotFit(w io.Writer, opt *PlotOpts) error {
	s := p.TrainingSeries()
	if s == nil || s.Len() < 2 {
		return ErrCannotInferInterval
	}
	lastTime := s.T[s.Len()-1]

	horizonCnt := s.Len() / 10
	horizonInterval, err := membership.TimeSlice(s.T).EstimateFreq()
	if err != nil {
		return err
	}
	if opt != nil {
		horizonCnt = opt.HorizonCnt
		horizonInterval = opt.HorizonInterval
	}
	if horizonCnt < 1 {
		horizonCnt = 1
	}

	t := make([]time.Time, 0, s.Len()+horizonCnt)
	t = append(t, s.T...)
	zpad := make([]float64, 0, horizonCnt)
	for i := 0; i < horizonCnt; i++ {
		t = append(t, lastTime.Add(time.Duration(i+1)*horizonInterval))
		zpad = append(zpad, math.NaN())
	}

	forecastRes, err := p.Predict(t)
	if err != nil {
		return err
	}

	residuals := p.Residuals()
	residuals = append(residuals, zpad...)

	page := components.NewPage()
	page.AddCharts(
		LineForecast(s, forecastRes),
		LineTSeries(
			"Forecast Components",
			[]string{"Trend", "Seasonality"},
			t,
			[][]float64{
				forecastRes.SeriesComponents.Trend,
				forecastRes.SeriesComponents.Seasonality,
			},
		),
		LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			t,
			[][]float64{residuals},
		),
	)
	return page.Render(w)
}
