/*
Package provider supplies school-holiday calendars to the custody engine.

PURPOSE:
  Implementations of engine.HolidayProvider:

  - Client: fetches the official French school calendar from
    data.education.gouv.fr (education.go)
  - Cache: wraps any provider with a (zone, school year) keyed cache
    (cache.go)
  - Static: a fixed in-memory calendar, used in tests and for manual
    configurations (this file)

CONVENTIONS:
  Providers return every holiday overlapping the requested calendar year,
  sorted by start, deduplicated by (name, start, end). An empty result is
  valid and means "no vacation rules apply".
*/
package provider

import (
	"context"
	"sort"

	"github.com/coparent/custody-engine/engine"
)

// Static serves a fixed holiday list, filtered per request. The zero value
// is an empty calendar.
type Static struct {
	Holidays []engine.SchoolHoliday
}

// ListHolidays filters the fixed list by zone and calendar-year overlap.
func (s *Static) ListHolidays(_ context.Context, zone string, year int) ([]engine.SchoolHoliday, error) {
	var out []engine.SchoolHoliday
	for _, h := range s.Holidays {
		if h.Zone != "" && zone != "" && h.Zone != zone {
			continue
		}
		if overlapsYear(h, year) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// overlapsYear reports whether the holiday touches the calendar year.
func overlapsYear(h engine.SchoolHoliday, year int) bool {
	return h.Start.Year() == year || h.End.Year() == year
}
