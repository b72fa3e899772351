/*
bounds.go - Effective holiday bounds

PURPOSE:
  Converts a raw school-holiday record into the custody-relevant interval.
  Providers report administrative bounds (often a Saturday start and a
  Monday-midnight "resume" end); custody handovers happen at school pickup
  on Friday and on Sunday evening.

ALGORITHM:
  1. If the raw end is exactly midnight, the calendar day before is the true
     last day (exclusive-end correction).
  2. Walk the start date backward to the nearest Friday <= it, and the
     corrected end date backward to the nearest Sunday <= it.
  3. Stamp the Friday with the arrival time and the Sunday with the
     departure time.
  4. If that inverts the interval (malformed or degenerate input), fall back
     to stamping the raw bounds directly. The result is always non-empty.
  5. Midpoint is the literal temporal half, time component preserved. The
     split is intentionally not day-aligned.

PROPERTIES (covered in bounds_test.go):
  - Idempotence: bounds already aligned to Friday/Sunday are a fixed point.
  - Midpoint symmetry: midpoint-start == end-midpoint exactly.
*/
package engine

import "time"

// EffectiveBounds derives the custody bounds of a holiday from its raw
// provider bounds and the configured arrival/departure times.
func EffectiveBounds(holiday SchoolHoliday, arrival, departure Clock) EffectiveHolidayBounds {
	startDate := midnightOf(holiday.Start)

	// An end at exactly midnight is the exclusive "resume" day; the calendar
	// day before is the true last day.
	endDate := midnightOf(holiday.End)
	if holiday.End.Equal(endDate) {
		endDate = endDate.AddDate(0, 0, -1)
	}

	effectiveStart := arrival.On(backToWeekday(startDate, time.Friday))
	effectiveEnd := departure.On(backToWeekday(endDate, time.Sunday))

	// Safety fallback: never hand out an inverted interval.
	if !effectiveEnd.After(effectiveStart) {
		effectiveStart = arrival.On(holiday.Start)
		effectiveEnd = departure.On(holiday.End)
	}

	midpoint := effectiveStart.Add(effectiveEnd.Sub(effectiveStart) / 2)
	return EffectiveHolidayBounds{Start: effectiveStart, End: effectiveEnd, Midpoint: midpoint}
}
