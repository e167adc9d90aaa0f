// Command growthcast reads a prediction request from stdin and writes the
// predicted target date and a base64 PNG chart to stdout as JSON. Any
// failure, from malformed input through an unreachable target, results in a
// null-filled response and a zero exit code so callers never need to handle
// a crash.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"growthcast"
	"growthcast/membership"
	"growthcast/protocol"
	"growthcast/render"

	"github.com/pkg/profile"
)

// DefaultHorizonDays scans five years past the last join for the target
// crossing.
const DefaultHorizonDays = 365 * 5

func main() {
	configPath := flag.String("config", "", "path to optional YAML config")
	horizonDays := flag.Int("horizon-days", DefaultHorizonDays, "days past the last join to scan for the target crossing")
	noChart := flag.Bool("no-chart", false, "skip rendering the forecast chart")
	chartHTML := flag.String("chart-html", "", "write an html fit report to this path")
	printModel := flag.Bool("print-model", false, "write a fit model summary to stderr")
	cpuProfile := flag.Bool("cpuprofile", false, "write a cpu profile to the current directory")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	resp := run(os.Stdin, &runOpts{
		configPath:  *configPath,
		horizonDays: *horizonDays,
		noChart:     *noChart,
		chartHTML:   *chartHTML,
		printModel:  *printModel,
	})

	if err := protocol.WriteResponse(os.Stdout, resp); err != nil {
		slog.Error("unable to write response", "error", err)
	}
}

type runOpts struct {
	configPath  string
	horizonDays int
	noChart     bool
	chartHTML   string
	printModel  bool
}

// run produces a response for a single request. It never returns an error;
// every failure path logs and degrades to the null response.
func run(r io.Reader, opts *runOpts) (resp protocol.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("recovered from panic", "panic", rec)
			resp = protocol.NullResponse()
		}
	}()

	req, err := protocol.ReadRequest(r)
	if err != nil {
		slog.Error("unable to read request", "error", err)
		return protocol.NullResponse()
	}
	if err := req.Valid(); err != nil {
		slog.Error("invalid request", "error", err)
		return protocol.NullResponse()
	}

	joins, err := req.JoinDates()
	if err != nil {
		slog.Error("unable to parse join dates", "error", err)
		return protocol.NullResponse()
	}

	s, err := membership.FromJoinDates(joins)
	if err != nil {
		slog.Error("unable to build membership series", "error", err)
		return protocol.NullResponse()
	}
	slog.Debug("built membership series", "days", s.Len(), "members", s.Current())

	var cfg *Config
	if opts.configPath != "" {
		cfg, err = loadConfig(opts.configPath)
		if err != nil {
			slog.Error("unable to load config", "error", err)
			return protocol.NullResponse()
		}
	}

	trainEnd := s.T[s.Len()-1]
	opt, err := cfg.predictorOptions(s.T[0], trainEnd.AddDate(0, 0, opts.horizonDays))
	if err != nil {
		slog.Error("unable to resolve predictor options", "error", err)
		return protocol.NullResponse()
	}

	p, err := growthcast.New(opt)
	if err != nil {
		slog.Error("unable to create predictor", "error", err)
		return protocol.NullResponse()
	}
	if err := p.Fit(s.T, s.Y); err != nil {
		slog.Error("unable to fit membership series", "error", err)
		return protocol.NullResponse()
	}
	slog.Debug("fit series model", "scores", p.SeriesScores())

	if opts.printModel {
		printModel(p)
	}

	est, err := p.TargetDate(req.Target, opts.horizonDays)
	if err != nil {
		slog.Error("unable to estimate target date", "target", req.Target, "error", err)
		return protocol.NullResponse()
	}
	slog.Debug("estimated target date", "target", req.Target, "date", est.T, "earliest", est.Earliest, "latest", est.Latest)

	if opts.chartHTML != "" {
		writeChartHTML(p, opts.chartHTML)
	}

	var image string
	if !opts.noChart {
		image, err = renderChart(s, est)
		if err != nil {
			// degrade to a date-only response rather than dropping the
			// prediction
			slog.Error("unable to render chart", "error", err)
		}
	}

	return protocol.NewResponse(est.T, image)
}

// renderChart draws the horizon forecast with the observed series overlaid
// and the target crossing marked.
func renderChart(s *membership.Series, est *growthcast.TargetEstimate) (string, error) {
	horizon := est.Horizon

	actual := make([]float64, len(horizon.T))
	var j int
	for i := 0; i < len(horizon.T); i++ {
		if j < s.Len() && horizon.T[i].Equal(s.T[j]) {
			actual[i] = s.Y[j]
			j += 1
		} else {
			actual[i] = math.NaN()
		}
	}

	return render.ForecastPNGBase64(&render.ChartData{
		T:          horizon.T,
		Actual:     actual,
		Forecast:   horizon.Forecast,
		Upper:      horizon.Upper,
		Lower:      horizon.Lower,
		Target:     est.Target,
		TargetDate: est.T,
	})
}

func writeChartHTML(p *growthcast.Predictor, path string) {
	f, err := os.Create(path)
	if err != nil {
		slog.Error("unable to create html report", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := p.PlotFit(f, nil); err != nil {
		slog.Error("unable to render html report", "path", path, "error", err)
	}
}

func printModel(p *growthcast.Predictor) {
	model, err := p.Model()
	if err != nil {
		slog.Error("unable to fetch model", "error", err)
		return
	}
	fmt.Fprintln(os.Stderr, "series model:")
	if err := model.Series.TablePrint(os.Stderr); err != nil {
		slog.Error("unable to print series model", "error", err)
		return
	}
	fmt.Fprintln(os.Stderr, "residual model:")
	if err := model.Residual.TablePrint(os.Stderr); err != nil {
		slog.Error("unable to print residual model", "error", err)
	}
}
