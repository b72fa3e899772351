package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toussaint2025(loc *time.Location) SchoolHoliday {
	return SchoolHoliday{
		Name:  "Vacances de la Toussaint",
		Zone:  "C",
		Start: time.Date(2025, time.October, 18, 0, 0, 0, 0, loc),
		End:   time.Date(2025, time.November, 3, 0, 0, 0, 0, loc),
	}
}

func summer2025(loc *time.Location) SchoolHoliday {
	return SchoolHoliday{
		Name:  "Vacances d'Été",
		Zone:  "C",
		Start: time.Date(2025, time.July, 5, 0, 0, 0, 0, loc),
		End:   time.Date(2025, time.September, 1, 0, 0, 0, 0, loc),
	}
}

func vacationConfig(loc *time.Location) CustodyConfig {
	return CustodyConfig{
		CustodyType:            CustodyAlternateWeekend,
		ReferenceYearCustody:   ParityEven,
		ReferenceYearVacations: ParityOdd,
		VacationSplitMode:      SplitOddFirst,
		ArrivalTime:            MustClock("16:15"),
		DepartureTime:          MustClock("19:00"),
		Zone:                   "C",
		Timezone:               loc,
	}
}

// =============================================================================
// AUTOMATIC SPLIT
// =============================================================================

func TestGenerateVacationWindows_OddFirstHalf(t *testing.T) {
	// GIVEN: Toussaint 2025 (odd year), odd_first split, odd vacation parity
	// WHEN: generating vacation windows
	// THEN: a filter window spans the full effective period and the custody
	//       window covers exactly the first half, up to the midpoint

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	now := time.Date(2025, time.October, 1, 9, 0, 0, 0, paris)
	holiday := toussaint2025(paris)
	bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{holiday})
	require.Len(t, windows, 2)

	filter := windows[0]
	assert.Equal(t, SourceVacationFilter, filter.Source)
	assert.Equal(t, bounds.Start, filter.Start)
	assert.Equal(t, bounds.End, filter.End)
	assert.Contains(t, filter.Label, "full period (filter)")

	custody := windows[1]
	assert.Equal(t, SourceVacation, custody.Source)
	assert.Equal(t, bounds.Start, custody.Start)
	assert.Equal(t, bounds.Midpoint, custody.End)
	assert.Contains(t, custody.Label, "first half")
}

func TestGenerateVacationWindows_OddSecondHalf(t *testing.T) {
	// GIVEN: the same holiday with odd_second split
	// WHEN: generating vacation windows
	// THEN: the custody window covers the second half

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.VacationSplitMode = SplitOddSecond
	now := time.Date(2025, time.October, 1, 9, 0, 0, 0, paris)
	holiday := toussaint2025(paris)
	bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{holiday})
	require.Len(t, windows, 2)

	custody := windows[1]
	assert.Equal(t, bounds.Midpoint, custody.Start)
	assert.Equal(t, bounds.End, custody.End)
	assert.Contains(t, custody.Label, "second half")
}

func TestGenerateVacationWindows_ParityMismatchStillEmitsFilter(t *testing.T) {
	// GIVEN: a 2025 holiday but even vacation parity (other parent's year)
	// WHEN: generating vacation windows
	// THEN: no custody window, but the filter window is still emitted so the
	//       pattern stays suppressed for the whole vacation

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.ReferenceYearVacations = ParityEven
	now := time.Date(2025, time.October, 1, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{toussaint2025(paris)})
	require.Len(t, windows, 1)
	assert.Equal(t, SourceVacationFilter, windows[0].Source)
}

func TestGenerateVacationWindows_PastHolidaySkipped(t *testing.T) {
	// GIVEN: a holiday whose effective end has passed
	// WHEN: generating vacation windows
	// THEN: nothing is emitted for it

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	now := time.Date(2025, time.December, 1, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{toussaint2025(paris)})
	assert.Empty(t, windows)
}

// =============================================================================
// SUMMER RULES
// =============================================================================

func TestGenerateVacationWindows_SummerJulyByParity(t *testing.T) {
	// GIVEN: summer 2025 with the july_by_parity rule and matching parity
	// WHEN: generating vacation windows
	// THEN: the custody window covers July, clipped to the effective bounds

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.SummerRule = SummerJulyByParity
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{summer2025(paris)})
	require.Len(t, windows, 2)

	july := windows[1]
	assert.Equal(t, SourceSummer, july.Source)
	// Effective start is Friday July 4 (snapped back from Saturday July 5).
	assert.Equal(t, time.Date(2025, time.July, 4, 16, 15, 0, 0, paris), july.Start)
	assert.Equal(t, time.Date(2025, time.July, 31, 19, 0, 0, 0, paris), july.End)
	assert.Contains(t, july.Label, "full July")
}

func TestGenerateVacationWindows_SummerJulyByParity_OtherParent(t *testing.T) {
	// GIVEN: the same rule in a year whose parity does not match
	// WHEN: generating vacation windows
	// THEN: only the filter window remains

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.SummerRule = SummerJulyByParity
	cfg.ReferenceYearVacations = ParityEven
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{summer2025(paris)})
	require.Len(t, windows, 1)
	assert.Equal(t, SourceVacationFilter, windows[0].Source)
}

func TestGenerateVacationWindows_SummerJulyFirstHalf(t *testing.T) {
	// GIVEN: the july_half_1 rule; first halves belong to the parent whose
	//        parity does NOT match the year
	// WHEN: generating for 2025 with even configured parity
	// THEN: the custody window covers July 1-15

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.SummerRule = SummerJulyFirstHalf
	cfg.ReferenceYearVacations = ParityEven
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{summer2025(paris)})
	require.Len(t, windows, 2)

	half := windows[1]
	assert.Equal(t, time.Date(2025, time.July, 4, 16, 15, 0, 0, paris), half.Start)
	assert.Equal(t, time.Date(2025, time.July, 15, 19, 0, 0, 0, paris), half.End)
}

func TestGenerateVacationWindows_SummerAugustSecondHalf_MondayEndPulledToSunday(t *testing.T) {
	// GIVEN: the august_half_2 rule with matching parity; the effective end
	//        of summer 2025 is Sunday August 31
	// WHEN: generating vacation windows
	// THEN: the window runs August 16 through Sunday August 31 19:00

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.SummerRule = SummerAugustSecondHalf
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, paris)

	windows := GenerateVacationWindows(now, cfg, []SchoolHoliday{summer2025(paris)})
	require.Len(t, windows, 2)

	half := windows[1]
	assert.Equal(t, time.Date(2025, time.August, 16, 16, 15, 0, 0, paris), half.Start)
	assert.Equal(t, time.Date(2025, time.August, 31, 19, 0, 0, 0, paris), half.End)
}

func TestIsSummerBreak(t *testing.T) {
	// GIVEN: holidays named or dated like summer
	// WHEN: classifying them
	// THEN: name match or July/August bounds qualify

	paris := parisLoc(t)
	assert.True(t, isSummerBreak(summer2025(paris)))
	assert.True(t, isSummerBreak(SchoolHoliday{
		Name:  "Grandes vacances",
		Start: time.Date(2025, time.July, 5, 0, 0, 0, 0, paris),
		End:   time.Date(2025, time.September, 1, 0, 0, 0, 0, paris),
	}))
	assert.False(t, isSummerBreak(toussaint2025(paris)))
}
