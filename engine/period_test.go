package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPeriod(t *testing.T) {
	// GIVEN: a zone-configured child and the Toussaint 2025 calendar
	// WHEN: classifying instants inside and outside the effective bounds
	// THEN: vacation with the holiday name inside, school outside

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	holidays := []SchoolHoliday{toussaint2025(paris)}

	inside := time.Date(2025, time.October, 20, 10, 0, 0, 0, paris)
	period, name := ClassifyPeriod(inside, cfg, holidays)
	assert.Equal(t, PeriodVacation, period)
	assert.Equal(t, "Vacances de la Toussaint", name)

	// Friday Oct 17 at noon: before the 16:15 effective start.
	before := time.Date(2025, time.October, 17, 12, 0, 0, 0, paris)
	period, name = ClassifyPeriod(before, cfg, holidays)
	assert.Equal(t, PeriodSchool, period)
	assert.Empty(t, name)
}

func TestClassifyPeriod_NoZoneIsAlwaysSchool(t *testing.T) {
	// GIVEN: a child without a school zone
	// WHEN: classifying any instant
	// THEN: school period, holidays ignored

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.Zone = ""

	inside := time.Date(2025, time.October, 20, 10, 0, 0, 0, paris)
	period, _ := ClassifyPeriod(inside, cfg, []SchoolHoliday{toussaint2025(paris)})
	assert.Equal(t, PeriodSchool, period)
}

func TestNextVacation_UpcomingSegment(t *testing.T) {
	// GIVEN: odd year, odd_first split, evaluated two weeks before Toussaint
	// WHEN: resolving the next vacation
	// THEN: the first-half custody segment with a positive countdown

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	now := time.Date(2025, time.October, 3, 9, 0, 0, 0, paris)
	holiday := toussaint2025(paris)
	bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)

	info := NextVacation(now, cfg, []SchoolHoliday{holiday})

	assert.Equal(t, "Vacances de la Toussaint", info.Name)
	require.NotNil(t, info.Start)
	assert.Equal(t, bounds.Start, *info.Start)
	require.NotNil(t, info.End)
	assert.Equal(t, bounds.Midpoint, *info.End)
	require.NotNil(t, info.DaysUntil)
	assert.Greater(t, *info.DaysUntil, 13.0)
	assert.Less(t, *info.DaysUntil, 15.0)
}

func TestNextVacation_InsideVacation(t *testing.T) {
	// GIVEN: now inside the vacation
	// WHEN: resolving
	// THEN: the current holiday with a zero countdown

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	now := time.Date(2025, time.October, 20, 10, 0, 0, 0, paris)

	info := NextVacation(now, cfg, []SchoolHoliday{toussaint2025(paris)})

	assert.Equal(t, "Vacances de la Toussaint", info.Name)
	require.NotNil(t, info.DaysUntil)
	assert.Zero(t, *info.DaysUntil)
}

func TestNextVacation_SkipsOtherParentsHoliday(t *testing.T) {
	// GIVEN: even configured parity in an odd year: Toussaint 2025 belongs
	//        to the other parent, the next even-year holiday does not exist
	//        in the list
	// WHEN: resolving
	// THEN: no segment is reported, but the raw list still shows the holiday

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	cfg.ReferenceYearVacations = ParityEven
	now := time.Date(2025, time.October, 3, 9, 0, 0, 0, paris)

	info := NextVacation(now, cfg, []SchoolHoliday{toussaint2025(paris)})

	assert.Empty(t, info.Name)
	assert.Nil(t, info.Start)
	require.Len(t, info.Raw, 1)
	assert.Equal(t, "Vacances de la Toussaint", info.Raw[0].Name)
}

func TestNextVacation_RawListSkipsPastHolidays(t *testing.T) {
	// GIVEN: one past and one future holiday
	// WHEN: building the raw display list
	// THEN: only the future one appears, with formatted bounds

	paris := parisLoc(t)
	cfg := vacationConfig(paris)
	now := time.Date(2025, time.December, 1, 9, 0, 0, 0, paris)

	christmas := SchoolHoliday{
		Name:  "Vacances de Noël",
		Zone:  "C",
		Start: time.Date(2025, time.December, 20, 0, 0, 0, 0, paris),
		End:   time.Date(2026, time.January, 5, 0, 0, 0, 0, paris),
	}

	info := NextVacation(now, cfg, []SchoolHoliday{toussaint2025(paris), christmas})

	require.Len(t, info.Raw, 1)
	raw := info.Raw[0]
	assert.Equal(t, "Vacances de Noël", raw.Name)
	assert.Equal(t, "20 December 2025", raw.OfficialStart)
	assert.Equal(t, "Saturday", raw.OfficialStartWeekday)
	assert.Contains(t, raw.EffectiveStart, "19 December 2025")
}
