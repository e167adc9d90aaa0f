package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
predictor:
  series_options:
    growth_order: 2
    weekly_orders: 1
    regularization: [0.0]
  residual_window: 14
  residual_zscore: 3.0
holidays:
  - name: christmas
    pad_before: 24h
    pad_after: 48h
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Predictor)
	assert.Equal(t, 2, cfg.Predictor.SeriesOptions.GrowthOrder)
	assert.Equal(t, 14, cfg.Predictor.ResidualWindow)
	require.Len(t, cfg.Holidays, 1)
	assert.Equal(t, "christmas", cfg.Holidays[0].Name)
	assert.Equal(t, Duration(24*time.Hour), cfg.Holidays[0].PadBefore)
}

func TestLoadConfigErrors(t *testing.T) {
	badPath := writeConfig(t, `predictor: [not, a, mapping]`)
	testData := map[string]string{
		"missing file": filepath.Join(t.TempDir(), "nope.yaml"),
		"bad yaml":     badPath,
	}
	for name, path := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestPredictorOptions(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("nil config uses defaults", func(t *testing.T) {
		var cfg *Config
		opt, err := cfg.predictorOptions(start, end)
		require.NoError(t, err)
		require.NotNil(t, opt.SeriesOptions)
		assert.Empty(t, opt.SeriesOptions.EventOptions.Events)
	})

	t.Run("holidays become events", func(t *testing.T) {
		cfg := &Config{
			Holidays: []HolidayConfig{
				{Name: "christmas"},
				{Name: "new_years"},
			},
		}
		opt, err := cfg.predictorOptions(start, end)
		require.NoError(t, err)

		// two christmases and two new years fall in the span
		assert.Len(t, opt.SeriesOptions.EventOptions.Events, 4)
		for _, e := range opt.SeriesOptions.EventOptions.Events {
			assert.NoError(t, e.Valid())
		}
	})

	t.Run("unknown holiday", func(t *testing.T) {
		cfg := &Config{Holidays: []HolidayConfig{{Name: "arbor_day"}}}
		_, err := cfg.predictorOptions(start, end)
		assert.Error(t, err)
	})
}
