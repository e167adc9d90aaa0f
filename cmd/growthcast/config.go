package main

import (
	"fmt"
	"os"
	"time"

	"growthcast"
	"growthcast/event"
	"growthcast/forecast"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). All fields are optional
// and overlay the default predictor options.
type Config struct {
	Predictor *growthcast.Options `yaml:"predictor"`

	// Holidays lists holiday join surges to model as labeled event windows,
	// one window per occurrence over the training span.
	Holidays []HolidayConfig `yaml:"holidays"`
}

// HolidayConfig names a supported holiday with optional padding around the
// observed day.
type HolidayConfig struct {
	Name      string   `yaml:"name"`
	PadBefore Duration `yaml:"pad_before"`
	PadAfter  Duration `yaml:"pad_after"`
}

// Duration wraps time.Duration to accept 24h style strings in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("unable to parse duration, %w", err)
	}
	*d = Duration(parsed)
	return nil
}

func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config, %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config, %w", err)
	}
	return &c, nil
}

// predictorOptions resolves the config into predictor options generating any
// configured holiday events over the given span.
func (c *Config) predictorOptions(start, end time.Time) (*growthcast.Options, error) {
	opt := growthcast.NewDefaultOptions()
	if c == nil {
		return opt, nil
	}
	if c.Predictor != nil {
		opt = c.Predictor
		if opt.SeriesOptions == nil {
			opt.SeriesOptions = forecast.NewDefaultOptions()
		}
	}

	for _, h := range c.Holidays {
		var events []event.Event
		switch h.Name {
		case "christmas":
			events = event.Christmas(start, end, time.Duration(h.PadBefore), time.Duration(h.PadAfter))
		case "new_years":
			events = event.NewYears(start, end, time.Duration(h.PadBefore), time.Duration(h.PadAfter))
		default:
			return nil, fmt.Errorf("unknown holiday, %q", h.Name)
		}
		opt.SeriesOptions.EventOptions.Events = append(opt.SeriesOptions.EventOptions.Events, events...)
	}
	return opt, nil
}
