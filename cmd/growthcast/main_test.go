package main

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"growthcast/protocol"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRequest builds a request with joinsPerDay joins on each of n
// consecutive days starting 2024-01-01.
func testRequest(n, joinsPerDay int, target float64) string {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]string, 0, n*joinsPerDay)
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		for j := 0; j < joinsPerDay; j++ {
			dates = append(dates, day)
		}
	}
	req := protocol.Request{Dates: dates, Target: target}
	out, _ := json.Marshal(req)
	return string(out)
}

func TestRun(t *testing.T) {
	input := testRequest(120, 2, 400)
	resp := run(strings.NewReader(input), &runOpts{horizonDays: DefaultHorizonDays})

	require.NotNil(t, resp.PredictedDate)
	predicted, err := time.Parse(time.RFC3339, *resp.PredictedDate)
	require.NoError(t, err)

	lastJoin := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, predicted.After(lastJoin), "predicted %s should be past the last join %s", predicted, lastJoin)
	assert.Equal(t, time.UTC, predicted.Location())

	require.NotNil(t, resp.ImageBase64)
	png, err := base64.StdEncoding.DecodeString(*resp.ImageBase64)
	require.NoError(t, err)
	require.Greater(t, len(png), 4)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, png[:4])
}

func TestRunNoChart(t *testing.T) {
	input := testRequest(120, 2, 400)
	resp := run(strings.NewReader(input), &runOpts{horizonDays: DefaultHorizonDays, noChart: true})

	require.NotNil(t, resp.PredictedDate)
	assert.Nil(t, resp.ImageBase64)
}

func TestRunTargetAlreadyReached(t *testing.T) {
	input := testRequest(120, 2, 100)
	resp := run(strings.NewReader(input), &runOpts{horizonDays: DefaultHorizonDays, noChart: true})

	require.NotNil(t, resp.PredictedDate)
	predicted, err := time.Parse(time.RFC3339, *resp.PredictedDate)
	require.NoError(t, err)

	// 2 joins per day reaches 100 members on day 50
	expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 49)
	assert.Equal(t, expected, predicted)
}

func TestRunWithHolidayConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "holidays:\n  - name: christmas\n  - name: new_years\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	input := testRequest(120, 2, 400)
	resp := run(strings.NewReader(input), &runOpts{
		horizonDays: DefaultHorizonDays,
		configPath:  cfgPath,
		noChart:     true,
	})

	// holiday windows falling past the training end must not degrade an
	// otherwise predictable request to the null response
	require.NotNil(t, resp.PredictedDate)
	_, err := time.Parse(time.RFC3339, *resp.PredictedDate)
	require.NoError(t, err)
}

func TestRunNullResponses(t *testing.T) {
	testData := map[string]struct {
		input string
		opts  *runOpts
	}{
		"malformed json": {
			input: `{"dates": [`,
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"not json": {
			input: `hello`,
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"no dates": {
			input: `{"dates": [], "target": 100}`,
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"zero target": {
			input: testRequest(30, 1, 0),
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"unparseable date": {
			input: `{"dates": ["someday"], "target": 100}`,
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"single join": {
			input: testRequest(1, 1, 100),
			opts:  &runOpts{horizonDays: DefaultHorizonDays},
		},
		"target not reached": {
			input: testRequest(60, 1, 1e9),
			opts:  &runOpts{horizonDays: 30},
		},
		"missing config": {
			input: testRequest(60, 1, 100),
			opts:  &runOpts{horizonDays: DefaultHorizonDays, configPath: "does-not-exist.yaml"},
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			resp := run(strings.NewReader(td.input), td.opts)
			assert.Nil(t, resp.PredictedDate)
			assert.Nil(t, resp.ImageBase64)
		})
	}
}
