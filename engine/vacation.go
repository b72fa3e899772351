/*
vacation.go - Vacation window generation

PURPOSE:
  Expands school-holiday periods into custody windows. For every holiday
  whose effective end has not passed, two things happen:

  1. A vacation_filter window always spans the full effective period. It is
     the suppression mechanism consumed by the resolver (vacations fully
     pre-empt the normal pattern), independent of whether a custody
     sub-window is produced - a holiday assigned to the other parent still
     suppresses this parent's pattern windows.

  2. A custody sub-window is produced either by the summer override rule
     (when the holiday is the summer break and a rule is configured) or by
     the automatic split rule: the holiday year's parity combined with the
     split mode decides which half belongs to which parent, and a window is
     emitted only when the configured vacation parity matches the year.

  The split is exact-midpoint, not day-aligned. Windows that collapse after
  clipping (end <= start) are discarded silently.
*/
package engine

import (
	"fmt"
	"strings"
	"time"
)

// GenerateVacationWindows expands the holiday list into vacation custody
// windows plus one filter window per holiday.
func GenerateVacationWindows(now time.Time, cfg CustodyConfig, holidays []SchoolHoliday) []CustodyWindow {
	var windows []CustodyWindow

	for _, holiday := range holidays {
		bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)
		if bounds.End.Before(now) {
			continue
		}

		// The filter window always covers the full effective period:
		// school holidays dominate the normal pattern for their whole span.
		windows = append(windows, CustodyWindow{
			Start:  bounds.Start,
			End:    bounds.End,
			Label:  fmt.Sprintf("%s - full period (filter)", holiday.Name),
			Source: SourceVacationFilter,
		})

		if isSummerBreak(holiday) && cfg.SummerRule != SummerNone && cfg.SummerRule != "" {
			windows = append(windows, summerWindows(cfg, holiday, bounds)...)
			continue
		}

		if w, ok := automaticSplitWindow(cfg, holiday, bounds); ok {
			windows = append(windows, w)
		}
	}
	return windows
}

// =============================================================================
// AUTOMATIC SPLIT RULE
// =============================================================================

// automaticSplitWindow applies the year-parity + split-mode rule. The second
// return value is false when this holiday belongs to the other parent or the
// clipped window is empty.
func automaticSplitWindow(cfg CustodyConfig, holiday SchoolHoliday, bounds EffectiveHolidayBounds) (CustodyWindow, bool) {
	year := bounds.Start.Year()
	if !cfg.ReferenceYearVacations.MatchesYear(year) {
		return CustodyWindow{}, false
	}

	evenYear := year%2 == 0
	var secondHalf bool
	switch cfg.VacationSplitMode {
	case SplitOddSecond:
		secondHalf = !evenYear
	default: // SplitOddFirst
		secondHalf = evenYear
	}

	start, end := bounds.Start, bounds.Midpoint
	half := "first half"
	if secondHalf {
		start, end = bounds.Midpoint, bounds.End
		half = "second half"
	}
	if !end.After(start) {
		return CustodyWindow{}, false
	}

	return CustodyWindow{
		Start:  start,
		End:    end,
		Label:  fmt.Sprintf("School holidays - %s (%s)", holiday.Name, half),
		Source: SourceVacation,
	}, true
}

// =============================================================================
// SUMMER RULES
// =============================================================================

// isSummerBreak detects the summer break: the local word for summer in the
// name, or either raw bound falling in July/August.
func isSummerBreak(holiday SchoolHoliday) bool {
	name := strings.ToLower(holiday.Name)
	if strings.Contains(name, "été") || strings.Contains(name, "ete") {
		return true
	}
	return holiday.Start.Month() == time.July || holiday.Start.Month() == time.August ||
		holiday.End.Month() == time.July || holiday.End.Month() == time.August
}

// summerWindows applies the configured summer rule. The switch is exhaustive
// over SummerRule so a new rule is a compile-visible gap, not a silent no-op.
func summerWindows(cfg CustodyConfig, holiday SchoolHoliday, bounds EffectiveHolidayBounds) []CustodyWindow {
	year := bounds.Start.Year()
	loc := bounds.Start.Location()
	parityMatches := cfg.ReferenceYearVacations.MatchesYear(year)

	var windows []CustodyWindow
	switch cfg.SummerRule {
	case SummerJulyByParity:
		if parityMatches {
			windows = monthWindow(cfg, bounds, year, time.July, loc, "full July (by parity)")
		}
	case SummerAugustByParity:
		if parityMatches {
			windows = monthWindow(cfg, bounds, year, time.August, loc, "full August (by parity)")
		}
	case SummerJulyFirstHalf:
		// First halves go to the parent whose parity does NOT match the
		// year; second halves to the one whose parity does.
		if !parityMatches {
			windows = halfMonthWindow(cfg, bounds, year, time.July, 1, 15, loc, "July (first half)")
		}
	case SummerJulySecondHalf:
		if parityMatches {
			windows = halfMonthWindow(cfg, bounds, year, time.July, 16, 31, loc, "July (second half)")
		}
	case SummerAugustFirstHalf:
		if !parityMatches {
			windows = halfMonthWindow(cfg, bounds, year, time.August, 1, 15, loc, "August (first half)")
		}
	case SummerAugustSecondHalf:
		if parityMatches {
			windows = halfMonthWindow(cfg, bounds, year, time.August, 16, 31, loc, "August (second half)")
		}
	case SummerNone:
		// Callers guard against SummerNone; nothing to emit.
	}

	valid := windows[:0]
	for _, w := range windows {
		if w.Valid() {
			valid = append(valid, w)
		}
	}
	return valid
}

// monthWindow clips a whole calendar month against the effective bounds.
func monthWindow(cfg CustodyConfig, bounds EffectiveHolidayBounds, year int, month time.Month, loc *time.Location, desc string) []CustodyWindow {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	monthEnd := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).Add(-time.Second)
	if monthEnd.Before(bounds.Start) || monthStart.After(bounds.End) {
		return nil
	}
	return []CustodyWindow{{
		Start:  cfg.ArrivalTime.On(laterOf(bounds.Start, monthStart)),
		End:    sundayEnd(cfg, earlierOf(bounds.End, monthEnd)),
		Label:  fmt.Sprintf("School holidays - %s", desc),
		Source: SourceSummer,
	}}
}

// halfMonthWindow clips a half-month slice against the effective bounds.
func halfMonthWindow(cfg CustodyConfig, bounds EffectiveHolidayBounds, year int, month time.Month, fromDay, toDay int, loc *time.Location, desc string) []CustodyWindow {
	sliceStart := time.Date(year, month, fromDay, 0, 0, 0, 0, loc)
	sliceEnd := time.Date(year, month, toDay, 23, 59, 59, 0, loc)
	if sliceEnd.Before(bounds.Start) || sliceStart.After(bounds.End) {
		return nil
	}
	return []CustodyWindow{{
		Start:  cfg.ArrivalTime.On(laterOf(bounds.Start, sliceStart)),
		End:    sundayEnd(cfg, earlierOf(bounds.End, sliceEnd)),
		Label:  fmt.Sprintf("School holidays - %s", desc),
		Source: SourceSummer,
	}}
}

// sundayEnd stamps the departure time, pulling a Monday end back to the
// Sunday before it (custody ends Sunday evening when school resumes Monday).
func sundayEnd(cfg CustodyConfig, end time.Time) time.Time {
	if end.Weekday() == time.Monday {
		end = end.AddDate(0, 0, -1)
	}
	return cfg.DepartureTime.On(end)
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
