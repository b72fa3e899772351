package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePresence_InsideWindow(t *testing.T) {
	// GIVEN: now inside a window, with another window after it
	// WHEN: evaluating presence
	// THEN: present, departure is the current end, arrival the next start

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	current := window(
		time.Date(2025, time.June, 23, 8, 0, 0, 0, paris),
		time.Date(2025, time.June, 29, 19, 0, 0, 0, paris),
		SourcePattern,
	)
	next := window(
		time.Date(2025, time.July, 7, 8, 0, 0, 0, paris),
		time.Date(2025, time.July, 13, 19, 0, 0, 0, paris),
		SourcePattern,
	)

	result := EvaluatePresence(now, []CustodyWindow{current, next}, nil)

	assert.True(t, result.IsPresent)
	require.NotNil(t, result.NextDeparture)
	assert.Equal(t, current.End, *result.NextDeparture)
	require.NotNil(t, result.NextArrival)
	assert.Equal(t, next.Start, *result.NextArrival)
	require.NotNil(t, result.DaysRemaining)
	// Mon 09:00 to Sun 19:00 is 6 days 10 hours = 6.42 days.
	assert.InDelta(t, 6.42, *result.DaysRemaining, 0.01)
}

func TestEvaluatePresence_Absent(t *testing.T) {
	// GIVEN: now between windows
	// WHEN: evaluating presence
	// THEN: absent, both pointers target the next window, days count down
	//       to the arrival

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 30, 9, 0, 0, 0, paris)
	next := window(
		time.Date(2025, time.July, 7, 8, 0, 0, 0, paris),
		time.Date(2025, time.July, 13, 19, 0, 0, 0, paris),
		SourcePattern,
	)

	result := EvaluatePresence(now, []CustodyWindow{next}, nil)

	assert.False(t, result.IsPresent)
	require.NotNil(t, result.NextArrival)
	assert.Equal(t, next.Start, *result.NextArrival)
	require.NotNil(t, result.NextDeparture)
	assert.Equal(t, next.End, *result.NextDeparture)
	require.NotNil(t, result.DaysRemaining)
	assert.InDelta(t, 6.96, *result.DaysRemaining, 0.01)
}

func TestEvaluatePresence_GraceMargin(t *testing.T) {
	// GIVEN: a window ending 30 seconds from now
	// WHEN: evaluating presence
	// THEN: the window counts as already ended and the evaluator falls
	//       forward to the next one

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 29, 18, 59, 30, 0, paris)
	ending := window(
		time.Date(2025, time.June, 23, 8, 0, 0, 0, paris),
		time.Date(2025, time.June, 29, 19, 0, 0, 0, paris),
		SourcePattern,
	)
	next := window(
		time.Date(2025, time.July, 7, 8, 0, 0, 0, paris),
		time.Date(2025, time.July, 13, 19, 0, 0, 0, paris),
		SourcePattern,
	)

	result := EvaluatePresence(now, []CustodyWindow{ending, next}, nil)

	assert.False(t, result.IsPresent, "a window inside the grace margin is already over")
	require.NotNil(t, result.NextDeparture)
	assert.Equal(t, next.End, *result.NextDeparture)
	require.NotNil(t, result.NextArrival)
	assert.Equal(t, next.Start, *result.NextArrival)
}

func TestEvaluatePresence_OverrideWins(t *testing.T) {
	// GIVEN: now inside a window but an "absent" override is active
	// WHEN: evaluating presence
	// THEN: the override state wins

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	current := window(
		time.Date(2025, time.June, 23, 8, 0, 0, 0, paris),
		time.Date(2025, time.June, 29, 19, 0, 0, 0, paris),
		SourcePattern,
	)

	result := EvaluatePresence(now, []CustodyWindow{current}, &ManualOverride{State: StateAbsent})
	assert.False(t, result.IsPresent)

	result = EvaluatePresence(now, nil, &ManualOverride{State: StatePresent})
	assert.True(t, result.IsPresent)
}

func TestEvaluatePresence_OverrideWithExpiry(t *testing.T) {
	// GIVEN: a "present" override expiring in two hours, no windows
	// WHEN: evaluating presence
	// THEN: present, departure is the override expiry

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	until := now.Add(2 * time.Hour)

	result := EvaluatePresence(now, nil, &ManualOverride{State: StatePresent, Until: &until})

	assert.True(t, result.IsPresent)
	require.NotNil(t, result.NextDeparture)
	assert.Equal(t, until, *result.NextDeparture)
}

func TestEvaluatePresence_ExpiredOverrideIgnored(t *testing.T) {
	// GIVEN: an override whose expiry has passed
	// WHEN: evaluating presence
	// THEN: window membership decides again

	paris := parisLoc(t)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	until := now.Add(-time.Minute)
	current := window(
		time.Date(2025, time.June, 23, 8, 0, 0, 0, paris),
		time.Date(2025, time.June, 29, 19, 0, 0, 0, paris),
		SourcePattern,
	)

	result := EvaluatePresence(now, []CustodyWindow{current},
		&ManualOverride{State: StateAbsent, Until: &until})
	assert.True(t, result.IsPresent)
}

func TestEvaluatePresence_NoWindows(t *testing.T) {
	// GIVEN: an empty timeline and no override
	// WHEN: evaluating presence
	// THEN: absent with nil pointers, not an error

	result := EvaluatePresence(time.Now(), nil, nil)

	assert.False(t, result.IsPresent)
	assert.Nil(t, result.NextArrival)
	assert.Nil(t, result.NextDeparture)
	assert.Nil(t, result.DaysRemaining)
}

func TestManualOverride_Active(t *testing.T) {
	// GIVEN: overrides with and without expiries
	// WHEN: checking activity
	// THEN: nil receiver inactive, nil Until always active, expiry inclusive

	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, time.UTC)

	var none *ManualOverride
	assert.False(t, none.Active(now))

	assert.True(t, (&ManualOverride{State: StatePresent}).Active(now))

	exactly := now
	assert.True(t, (&ManualOverride{State: StatePresent, Until: &exactly}).Active(now))

	past := now.Add(-time.Second)
	assert.False(t, (&ManualOverride{State: StatePresent, Until: &past}).Active(now))
}
