/*
pattern.go - Recurring custody pattern expansion

PURPOSE:
  Expands the configured custody pattern into concrete windows over a rolling
  90-day horizon. Two families:

  1. Parity-anchored weekly rules (alternate_weekend, alternate_week_parity):
     anchored to the first Monday of the reference year whose ISO week has
     the target parity, stepped week by week. Matching weeks emit a
     Friday->Sunday or Monday->Sunday window, extended by one day when a
     public holiday sits on the adjacent day (pont bridging) - unless the
     window touches a known vacation period, where vacations dominate and
     no bridging applies.

  2. Segment-cycle rules (alternate_week, 2-2-3, 2-2-5-5, custom): anchored
     to the configured start day in the adjusted reference year, walked
     cycle by cycle, one window per "on" segment.

  Windows are generated independently of vacation sub-windows; suppression
  happens later in the resolver. This generator never silently drops a
  window, it only skips the bridging embellishment inside vacations.
*/
package engine

import (
	"fmt"
	"time"
)

// patternHorizonDays is the rolling generation horizon.
const patternHorizonDays = 90

// GeneratePatternWindows expands the recurring custody pattern over
// [now, now+90d). vacationWindows (including filter windows) are consulted
// only to suppress public-holiday bridging inside vacations.
func GeneratePatternWindows(now time.Time, cfg CustodyConfig, vacationWindows []CustodyWindow) []CustodyWindow {
	if cfg.CustodyType.parityAnchored() {
		return parityWindows(now, cfg, vacationWindows)
	}
	return cycleWindows(now, cfg)
}

// =============================================================================
// PARITY-ANCHORED WEEKLY RULES
// =============================================================================

func parityWindows(now time.Time, cfg CustodyConfig, vacationWindows []CustodyWindow) []CustodyWindow {
	def, err := cfg.CustodyType.Cycle()
	if err != nil {
		return nil
	}

	targetParity := 0
	if cfg.ReferenceYearCustody == ParityOdd {
		targetParity = 1
	}

	horizon := now.AddDate(0, 0, patternHorizonDays)
	holidays := publicHolidaysAround(now)
	pointer := firstMondayWithWeekParity(referenceYear(now, cfg.ReferenceYearCustody), targetParity, cfg.Loc())

	// Fast-forward close to now, two weeks at a time to preserve the
	// alternation. Years with 53 ISO weeks can flip the parity at the year
	// boundary; re-align when that happens.
	for pointer.Before(now.AddDate(0, 0, -14)) {
		pointer = pointer.AddDate(0, 0, 14)
		if WeekParity(pointer) != targetParity {
			pointer = pointer.AddDate(0, 0, 7)
		}
	}

	var windows []CustodyWindow
	for pointer.Before(horizon) {
		if WeekParity(pointer) == targetParity {
			if cfg.CustodyType == CustodyAlternateWeekend {
				windows = append(windows, weekendWindow(pointer, cfg, def.Label, holidays, vacationWindows))
			} else {
				windows = append(windows, weekWindow(pointer, cfg, def.Label, holidays, vacationWindows))
			}
		}
		pointer = pointer.AddDate(0, 0, 7)
	}
	return windows
}

// weekendWindow builds the Friday->Sunday window of the week starting at
// monday, with pont bridging on adjacent public holidays.
func weekendWindow(monday time.Time, cfg CustodyConfig, typeLabel string, holidays map[CivilDate]string, vacations []CustodyWindow) CustodyWindow {
	thursday := monday.AddDate(0, 0, 3)
	friday := monday.AddDate(0, 0, 4)
	sunday := monday.AddDate(0, 0, 6)
	nextMonday := monday.AddDate(0, 0, 7)

	start, end := friday, sunday
	suffix := ""

	// Vacations dominate: a weekend touching a vacation period keeps its
	// plain bounds, the resolver decides its fate.
	inVacation := insideVacation(friday, vacations) ||
		insideVacation(sunday, vacations) ||
		insideVacation(nextMonday, vacations)

	if !inVacation {
		_, fridayHoliday := holidays[DateOf(friday)]
		_, mondayHoliday := holidays[DateOf(nextMonday)]
		if fridayHoliday {
			start = thursday
			suffix = " + Friday public holiday"
		}
		if mondayHoliday {
			end = nextMonday
			if suffix == "" {
				suffix = " + Monday public holiday"
			} else {
				suffix = " + pont"
			}
		}
	}

	return CustodyWindow{
		Start:  cfg.ArrivalTime.On(start),
		End:    cfg.DepartureTime.On(end),
		Label:  fmt.Sprintf("Custody - %s%s", typeLabel, suffix),
		Source: SourcePattern,
	}
}

// weekWindow builds the Monday->Sunday window of the week starting at monday,
// with pont bridging on the bounding Monday/Friday.
func weekWindow(monday time.Time, cfg CustodyConfig, typeLabel string, holidays map[CivilDate]string, vacations []CustodyWindow) CustodyWindow {
	previousFriday := monday.AddDate(0, 0, -3)
	friday := monday.AddDate(0, 0, 4)
	sunday := monday.AddDate(0, 0, 6)
	nextMonday := monday.AddDate(0, 0, 7)

	start, end := monday, sunday
	suffix := ""

	inVacation := insideVacation(monday, vacations) ||
		insideVacation(sunday, vacations) ||
		insideVacation(nextMonday, vacations)

	if !inVacation {
		_, mondayHoliday := holidays[DateOf(monday)]
		_, fridayHoliday := holidays[DateOf(friday)]
		if mondayHoliday {
			start = previousFriday
			suffix = " + Monday public holiday"
		}
		if fridayHoliday {
			end = nextMonday
			if suffix == "" {
				suffix = " + Friday public holiday"
			} else {
				suffix = " + pont"
			}
		}
	}

	return CustodyWindow{
		Start:  cfg.ArrivalTime.On(start),
		End:    cfg.DepartureTime.On(end),
		Label:  fmt.Sprintf("Custody - %s%s", typeLabel, suffix),
		Source: SourcePattern,
	}
}

// firstMondayWithWeekParity returns the first Monday of the year whose ISO
// week number has the requested parity (0 even / 1 odd).
func firstMondayWithWeekParity(year, parity int, loc *time.Location) time.Time {
	candidate := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	candidate = candidate.AddDate(0, 0, (int(time.Monday)-int(candidate.Weekday())+7)%7)
	for WeekParity(candidate) != parity {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// insideVacation reports whether t falls inside any vacation window,
// filter windows included (they span the full effective holiday).
func insideVacation(t time.Time, vacations []CustodyWindow) bool {
	for _, vw := range vacations {
		if !t.Before(vw.Start) && !t.After(vw.End) {
			return true
		}
	}
	return false
}

// =============================================================================
// SEGMENT-CYCLE RULES
// =============================================================================

func cycleWindows(now time.Time, cfg CustodyConfig) []CustodyWindow {
	def, err := cfg.cycle()
	if err != nil || def.CycleDays <= 0 || len(def.Segments) == 0 {
		return nil
	}

	horizon := now.AddDate(0, 0, patternHorizonDays)
	pointer := cycleAnchor(now, cfg)

	// Skip whole cycles in the past, preserving the phase of the anchor.
	for pointer.AddDate(0, 0, 2*def.CycleDays).Before(now) {
		pointer = pointer.AddDate(0, 0, def.CycleDays)
	}

	var windows []CustodyWindow
	for pointer.Before(horizon) {
		offset := 0
		for _, segment := range def.Segments {
			if segment.Days <= 0 {
				continue
			}
			segmentStart := pointer.AddDate(0, 0, offset)
			// An N-day segment spans day 0 through day N-1.
			segmentEnd := segmentStart.AddDate(0, 0, segment.Days-1)
			if segment.On {
				windows = append(windows, CustodyWindow{
					Start:  cfg.ArrivalTime.On(segmentStart),
					End:    cfg.DepartureTime.On(segmentEnd),
					Label:  fmt.Sprintf("Custody - %s", def.Label),
					Source: SourcePattern,
				})
			}
			offset += segment.Days
		}
		pointer = pointer.AddDate(0, 0, def.CycleDays)
	}
	return windows
}

// cycleAnchor is January 1st of the adjusted reference year, advanced to the
// configured start weekday.
func cycleAnchor(now time.Time, cfg CustodyConfig) time.Time {
	base := time.Date(referenceYear(now, cfg.ReferenceYearCustody), time.January, 1, 0, 0, 0, 0, cfg.Loc())
	delta := (int(cfg.StartDay) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, delta)
}
