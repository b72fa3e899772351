package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestEffectiveBounds_SnapsToFridayAndSunday(t *testing.T) {
	// GIVEN: Toussaint 2025 as the provider reports it, Saturday Oct 18
	//        through Monday Nov 3 at midnight (exclusive resume day)
	// WHEN: deriving effective bounds with 16:15 arrival and 19:00 departure
	// THEN: start snaps back to Friday Oct 17 16:15, end to Sunday Nov 2 19:00

	paris := parisLoc(t)
	holiday := SchoolHoliday{
		Name:  "Vacances de la Toussaint",
		Zone:  "C",
		Start: time.Date(2025, time.October, 18, 0, 0, 0, 0, paris),
		End:   time.Date(2025, time.November, 3, 0, 0, 0, 0, paris),
	}

	bounds := EffectiveBounds(holiday, MustClock("16:15"), MustClock("19:00"))

	assert.Equal(t, time.Date(2025, time.October, 17, 16, 15, 0, 0, paris), bounds.Start)
	assert.Equal(t, time.Date(2025, time.November, 2, 19, 0, 0, 0, paris), bounds.End)
}

func TestEffectiveBounds_MidnightEndCorrection(t *testing.T) {
	// GIVEN: the same holiday with a non-midnight end timestamp
	// WHEN: deriving bounds
	// THEN: no day is subtracted; only an exact-midnight end steps back

	paris := parisLoc(t)
	holiday := SchoolHoliday{
		Start: time.Date(2025, time.October, 18, 0, 0, 0, 0, paris),
		End:   time.Date(2025, time.November, 2, 23, 0, 0, 0, paris), // Sunday evening
	}

	bounds := EffectiveBounds(holiday, MustClock("08:00"), MustClock("19:00"))
	assert.Equal(t, time.Date(2025, time.November, 2, 19, 0, 0, 0, paris), bounds.End)
}

func TestEffectiveBounds_Idempotence(t *testing.T) {
	// GIVEN: bounds already aligned on Friday/Sunday
	// WHEN: running the derivation on its own output dates
	// THEN: the dates are a fixed point

	paris := parisLoc(t)
	holiday := SchoolHoliday{
		Start: time.Date(2025, time.October, 17, 0, 0, 0, 0, paris), // Friday
		End:   time.Date(2025, time.November, 2, 19, 0, 0, 0, paris), // Sunday
	}
	arrival, departure := MustClock("16:15"), MustClock("19:00")

	first := EffectiveBounds(holiday, arrival, departure)
	second := EffectiveBounds(SchoolHoliday{Start: first.Start, End: first.End}, arrival, departure)

	assert.Equal(t, first.Start, second.Start)
	assert.Equal(t, first.End, second.End)
}

func TestEffectiveBounds_MidpointSymmetry(t *testing.T) {
	// GIVEN: any effective bounds
	// WHEN: computing the midpoint
	// THEN: midpoint-start equals end-midpoint exactly

	paris := parisLoc(t)
	holiday := SchoolHoliday{
		Start: time.Date(2025, time.October, 18, 0, 0, 0, 0, paris),
		End:   time.Date(2025, time.November, 3, 0, 0, 0, 0, paris),
	}

	bounds := EffectiveBounds(holiday, MustClock("16:15"), MustClock("19:00"))
	assert.Equal(t, bounds.Midpoint.Sub(bounds.Start), bounds.End.Sub(bounds.Midpoint))

	// Toussaint 2025: Fri Oct 17 16:15 -> Sun Nov 2 19:00 halves at
	// Oct 25 17:37:30 (DST shift ignored by duration arithmetic).
	assert.True(t, bounds.Midpoint.After(bounds.Start))
	assert.True(t, bounds.Midpoint.Before(bounds.End))
}

func TestEffectiveBounds_InversionFallback(t *testing.T) {
	// GIVEN: a degenerate one-day "holiday" on a Saturday, where snapping
	//        the end back to Sunday lands before the snapped Friday start
	// WHEN: deriving bounds
	// THEN: the raw dates are stamped instead and the interval is non-empty

	paris := parisLoc(t)
	holiday := SchoolHoliday{
		Start: time.Date(2025, time.October, 18, 0, 0, 0, 0, paris), // Saturday
		End:   time.Date(2025, time.October, 18, 23, 0, 0, 0, paris),
	}

	bounds := EffectiveBounds(holiday, MustClock("08:00"), MustClock("19:00"))
	assert.True(t, bounds.End.After(bounds.Start))
	assert.Equal(t, time.Date(2025, time.October, 18, 8, 0, 0, 0, paris), bounds.Start)
	assert.Equal(t, time.Date(2025, time.October, 18, 19, 0, 0, 0, paris), bounds.End)
}
