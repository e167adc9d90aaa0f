package event

import (
	"testing"
	"time"

	"github.com/rickar/cal/v2/us"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValid(t *testing.T) {
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		event Event
		err   error
	}{
		"valid": {
			event: NewEvent("surge", start, end),
		},
		"unset times": {
			event: Event{Name: "surge"},
			err:   ErrUnsetTime,
		},
		"start after end": {
			event: NewEvent("surge", end, start),
			err:   ErrStartAfterEnd,
		},
		"no name": {
			event: NewEvent("", start, end),
			err:   ErrNoEventName,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.event.Valid()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestHoliday(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	events := Holiday(us.ChristmasDay, start, end, 24*time.Hour, 24*time.Hour)
	require.Len(t, events, 2)

	assert.Equal(t, "Christmas_Day_2023", events[0].Name)
	assert.Equal(t, time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC), events[0].End)
	assert.Equal(t, "Christmas_Day_2024", events[1].Name)
}

func TestHolidayOutOfRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	events := Christmas(start, end, 0, 0)
	assert.Empty(t, events)
}
