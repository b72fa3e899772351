/*
period.go - Period classification and next-vacation resolution

PURPOSE:
  Classifies "now" as a school or vacation period and locates the current or
  next vacation's *custody segment* for display. The displayed "next
  vacation" reflects the actual custody slice - effective bounds, automatic
  split, summer override - not the provider's raw holiday bounds.
*/
package engine

import (
	"sort"
	"time"
)

// ClassifyPeriod returns the current period and, during a vacation, the
// holiday name. A holiday counts when now falls inside its effective bounds.
func ClassifyPeriod(now time.Time, cfg CustodyConfig, holidays []SchoolHoliday) (SchedulePeriod, string) {
	if cfg.Zone == "" {
		return PeriodSchool, ""
	}
	for _, holiday := range holidays {
		bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)
		if !now.Before(bounds.Start) && !now.After(bounds.End) {
			return PeriodVacation, holiday.Name
		}
	}
	return PeriodSchool, ""
}

// NextVacationInfo summarizes the current or next vacation custody segment
// plus the raw holiday display list.
type NextVacationInfo struct {
	Name      string
	Start     *time.Time
	End       *time.Time
	DaysUntil *float64
	Raw       []RawHoliday
}

// NextVacation finds the custody segment containing now, or the first one
// starting strictly after now, over the holidays sorted by effective start.
func NextVacation(now time.Time, cfg CustodyConfig, holidays []SchoolHoliday) NextVacationInfo {
	sorted := make([]SchoolHoliday, len(holidays))
	copy(sorted, holidays)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi := EffectiveBounds(sorted[i], cfg.ArrivalTime, cfg.DepartureTime)
		bj := EffectiveBounds(sorted[j], cfg.ArrivalTime, cfg.DepartureTime)
		return bi.Start.Before(bj.Start)
	})

	info := NextVacationInfo{Raw: rawHolidayList(now, cfg, sorted)}

	// Currently inside a vacation: report that holiday's segment.
	for _, holiday := range sorted {
		bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)
		if !now.Before(bounds.Start) && !now.After(bounds.End) {
			start, end := custodySegment(cfg, holiday, bounds)
			zero := 0.0
			info.Name = holiday.Name
			info.Start = timePtr(start)
			info.End = timePtr(end)
			info.DaysUntil = &zero
			return info
		}
	}

	// Otherwise, the first custody segment starting strictly after now.
	// Holidays assigned to the other parent yield empty segments and are
	// skipped naturally.
	for _, holiday := range sorted {
		bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)
		start, end := custodySegment(cfg, holiday, bounds)
		if start.After(now) && end.After(start) {
			info.Name = holiday.Name
			info.Start = timePtr(start)
			info.End = timePtr(end)
			info.DaysUntil = daysUntil(now, start)
			return info
		}
	}
	return info
}

// custodySegment computes the custody slice of a holiday: the full effective
// interval for summer breaks handled by a summer rule, the automatic split
// half otherwise, or an empty segment when the year belongs to the other
// parent.
func custodySegment(cfg CustodyConfig, holiday SchoolHoliday, bounds EffectiveHolidayBounds) (time.Time, time.Time) {
	if isSummerBreak(holiday) && cfg.SummerRule != SummerNone && cfg.SummerRule != "" {
		// Summer rules emit their own windows; for segment display, the
		// full effective interval stands in.
		return bounds.Start, bounds.End
	}

	year := bounds.Start.Year()
	if !cfg.ReferenceYearVacations.MatchesYear(year) {
		return bounds.Start, bounds.Start
	}

	evenYear := year%2 == 0
	var secondHalf bool
	switch cfg.VacationSplitMode {
	case SplitOddSecond:
		secondHalf = !evenYear
	default:
		secondHalf = evenYear
	}
	if secondHalf {
		return bounds.Midpoint, bounds.End
	}
	return bounds.Start, bounds.Midpoint
}

// rawHolidayList builds the display list of current and upcoming holidays
// with their official and effective bounds.
func rawHolidayList(now time.Time, cfg CustodyConfig, sorted []SchoolHoliday) []RawHoliday {
	var raw []RawHoliday
	for _, holiday := range sorted {
		bounds := EffectiveBounds(holiday, cfg.ArrivalTime, cfg.DepartureTime)
		if bounds.End.Before(now) {
			continue
		}
		raw = append(raw, RawHoliday{
			Name:                 holiday.Name,
			OfficialStart:        holiday.Start.Format("02 January 2006"),
			OfficialEnd:          holiday.End.Format("02 January 2006"),
			OfficialStartWeekday: holiday.Start.Weekday().String(),
			OfficialEndWeekday:   holiday.End.Weekday().String(),
			EffectiveStart:       bounds.Start.Format("02 January 2006 15:04"),
			EffectiveEnd:         bounds.End.Format("02 January 2006 15:04"),
		})
	}
	return raw
}
