package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecurringWindows_WeeklyExpansion(t *testing.T) {
	// GIVEN: a Wednesday 12:00-18:00 exception with no date bounds
	// WHEN: expanding over the one-year horizon
	// THEN: one window per week, each stamped on a Wednesday

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	cfg := CustodyConfig{
		Timezone: paris,
		RecurringExceptions: []RecurringException{{
			Weekday: time.Wednesday,
			Start:   MustClock("12:00"),
			End:     MustClock("18:00"),
			Label:   "Wednesday afternoons",
		}},
	}

	windows := GenerateRecurringWindows(now, cfg)
	require.NotEmpty(t, windows)

	// A one-year horizon holds 52 Wednesdays, give or take the boundary.
	assert.InDelta(t, 52, len(windows), 1)

	for _, w := range windows {
		assert.Equal(t, time.Wednesday, w.Start.Weekday())
		assert.Equal(t, 12, w.Start.Hour())
		assert.Equal(t, 18, w.End.Hour())
		assert.Equal(t, SourceRecurring, w.Source)
		assert.Equal(t, "Wednesday afternoons", w.Label)
		assert.True(t, w.Valid())
	}
}

func TestGenerateRecurringWindows_DateBounds(t *testing.T) {
	// GIVEN: the same exception limited to a four-week range
	// WHEN: expanding
	// THEN: only Wednesdays inside the range appear

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	from := time.Date(2025, time.July, 1, 0, 0, 0, 0, paris)
	until := time.Date(2025, time.July, 28, 0, 0, 0, 0, paris)
	cfg := CustodyConfig{
		Timezone: paris,
		RecurringExceptions: []RecurringException{{
			Weekday: time.Wednesday,
			Start:   MustClock("12:00"),
			End:     MustClock("18:00"),
			From:    &from,
			Until:   &until,
		}},
	}

	windows := GenerateRecurringWindows(now, cfg)
	// Wednesdays in [Jul 1, Jul 28]: Jul 2, 9, 16, 23.
	require.Len(t, windows, 4)
	assert.Equal(t, 2, windows[0].Start.Day())
	assert.Equal(t, 23, windows[3].Start.Day())

	for _, w := range windows {
		assert.Equal(t, "Recurring exception", w.Label)
	}
}

func TestGenerateRecurringWindows_InvalidRuleSkipped(t *testing.T) {
	// GIVEN: a rule whose end is not after its start
	// WHEN: expanding
	// THEN: the rule is dropped, valid siblings still expand

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	cfg := CustodyConfig{
		Timezone: paris,
		RecurringExceptions: []RecurringException{
			{Weekday: time.Monday, Start: MustClock("18:00"), End: MustClock("12:00")},
			{Weekday: time.Friday, Start: MustClock("08:00"), End: MustClock("10:00")},
		},
	}

	windows := GenerateRecurringWindows(now, cfg)
	require.NotEmpty(t, windows)
	for _, w := range windows {
		assert.Equal(t, time.Friday, w.Start.Weekday())
	}
}

func TestGenerateRecurringWindows_EmptyConfig(t *testing.T) {
	// GIVEN: no recurring exceptions
	// WHEN: expanding
	// THEN: nil, without touching the recurrence machinery

	assert.Nil(t, GenerateRecurringWindows(time.Now(), CustodyConfig{}))
}
