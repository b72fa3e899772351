/*
recurring.go - Weekly recurring exception expansion

PURPOSE:
  Expands recurring exceptions (weekday + time range + optional date bounds)
  into one-off windows over a one-year horizon, using an RRULE weekly
  recurrence. Rules with a non-positive duration are configuration errors
  and are rejected here, at the generator boundary; the rest of the
  computation proceeds.
*/
package engine

import (
	"time"

	"github.com/teambition/rrule-go"
)

// recurringHorizonDays is the forward expansion horizon for recurring rules.
const recurringHorizonDays = 365

// GenerateRecurringWindows expands every recurring exception over
// [now-1d, now+365d], intersected with the rule's optional date range.
func GenerateRecurringWindows(now time.Time, cfg CustodyConfig) []CustodyWindow {
	if len(cfg.RecurringExceptions) == 0 {
		return nil
	}

	rangeStart := midnightOf(now).AddDate(0, 0, -1)
	rangeEnd := midnightOf(now).AddDate(0, 0, recurringHorizonDays)

	var windows []CustodyWindow
	for _, rule := range cfg.RecurringExceptions {
		// Non-positive duration is a configuration error: skip the rule.
		if rule.End.Minutes() <= rule.Start.Minutes() {
			continue
		}

		from := rangeStart
		if rule.From != nil && midnightOf(*rule.From).After(from) {
			from = midnightOf(*rule.From)
		}
		until := rangeEnd
		if rule.Until != nil && midnightOf(*rule.Until).Before(until) {
			until = midnightOf(*rule.Until)
		}
		if from.After(until) {
			continue
		}

		recurrence, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   from,
			Until:     until,
			Byweekday: []rrule.Weekday{rruleWeekday(rule.Weekday)},
		})
		if err != nil {
			continue
		}

		label := rule.Label
		if label == "" {
			label = "Recurring exception"
		}
		for _, occurrence := range recurrence.All() {
			start := rule.Start.On(occurrence)
			end := rule.End.On(occurrence)
			if end.After(start) {
				windows = append(windows, CustodyWindow{
					Start:  start,
					End:    end,
					Label:  label,
					Source: SourceRecurring,
				})
			}
		}
	}
	return windows
}

// rruleWeekday maps time.Weekday onto the RRULE weekday constants.
func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
