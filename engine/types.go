/*
Package engine provides the custody window generation and resolution engine.

PURPOSE:
  This package contains the pure algorithms that turn a custody configuration
  (custody type, reference parity, arrival/departure times, school zone,
  vacation-split policy) plus an external school-holiday calendar into an
  ordered, non-contradictory sequence of presence windows, and evaluates
  "is the child present now" against that timeline.

KEY CONCEPTS IN THIS FILE (types.go):
  - CustodyWindow: An interval [start, end) during which the child is present
  - SchoolHoliday: A raw holiday period as reported by the external provider
  - EffectiveHolidayBounds: Friday/Sunday-snapped custody bounds + midpoint
  - ManualOverride: Caller-forced presence state with optional expiry
  - CustodyComputation: The full result consumed by sensors and calendars

DESIGN PRINCIPLES:
  1. Purity: a computation is a function of (config, holidays, now, manual
     state). No I/O happens inside the generators or the evaluator.
  2. Immutability: CustodyConfig is a value, replaced wholesale on change.
  3. One-way data flow: config + holidays -> generators -> resolver ->
     evaluator/classifier -> CustodyComputation.

SEE ALSO:
  - config.go:   CustodyConfig and the custody-type cycle table
  - bounds.go:   Effective holiday bounds calculation
  - pattern.go:  Recurring pattern window generation
  - vacation.go: Vacation window generation and split rules
  - resolver.go: Window merging and precedence
  - presence.go: Presence evaluation against "now"
*/
package engine

import (
	"time"
)

// =============================================================================
// WINDOW SOURCES - Closed set of rule families
// =============================================================================

// WindowSource tags which rule family produced a window. The resolver and
// the evaluator treat sources differently: vacation_filter windows suppress
// pattern windows and are never displayed.
type WindowSource string

const (
	SourcePattern        WindowSource = "pattern"
	SourceVacation       WindowSource = "vacation"
	SourceVacationFilter WindowSource = "vacation_filter"
	SourceSummer         WindowSource = "summer"
	SourceCustom         WindowSource = "custom"
	SourceManual         WindowSource = "manual"
	SourceRecurring      WindowSource = "exception_recurring"
	SourceOverride       WindowSource = "override"
)

// =============================================================================
// CUSTODY WINDOW - Atomic unit of the resolved timeline
// =============================================================================

// CustodyWindow is a presence interval [Start, End). Invariant: End > Start.
type CustodyWindow struct {
	Start  time.Time
	End    time.Time
	Label  string
	Source WindowSource
}

// Valid reports whether the window respects the End > Start invariant.
func (w CustodyWindow) Valid() bool {
	return w.End.After(w.Start)
}

// Contains reports whether t falls inside [Start, End).
func (w CustodyWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports strict interval overlap with [start, end). Touching edges
// do not count: a weekend that ends exactly when a vacation starts does not
// overlap it.
func (w CustodyWindow) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && w.End.After(start)
}

// =============================================================================
// SCHOOL HOLIDAY - Raw external input
// =============================================================================

// SchoolHoliday is a holiday period as reported by the holiday provider.
// End may represent an exclusive "resume" midnight. Immutable once fetched.
type SchoolHoliday struct {
	Name  string
	Zone  string
	Start time.Time
	End   time.Time
}

// EffectiveHolidayBounds are the custody-relevant bounds derived from a raw
// holiday: start snapped back to Friday at arrival time, end snapped back to
// Sunday at departure time, plus the exact temporal midpoint.
type EffectiveHolidayBounds struct {
	Start    time.Time
	End      time.Time
	Midpoint time.Time
}

// =============================================================================
// MANUAL OVERRIDE - Caller-forced presence
// =============================================================================

// PresenceState is the forced state of a manual override.
type PresenceState string

const (
	StatePresent PresenceState = "present"
	StateAbsent  PresenceState = "absent"
)

// ManualOverride forces the presence state until an optional expiry.
// It auto-expires when now > Until and is otherwise cleared explicitly.
type ManualOverride struct {
	State PresenceState
	Until *time.Time
}

// Active reports whether the override still applies at the given instant.
func (o *ManualOverride) Active(now time.Time) bool {
	if o == nil {
		return false
	}
	return o.Until == nil || !now.After(*o.Until)
}

// =============================================================================
// PERIOD CLASSIFICATION
// =============================================================================

// SchedulePeriod classifies "now" as a school period or a vacation period.
type SchedulePeriod string

const (
	PeriodSchool   SchedulePeriod = "school"
	PeriodVacation SchedulePeriod = "vacation"
)

// =============================================================================
// COMPUTATION RESULT
// =============================================================================

// RawHoliday is the display form of a provider holiday: official bounds plus
// the effective custody bounds, preformatted for consumers.
type RawHoliday struct {
	Name                 string `json:"name"`
	OfficialStart        string `json:"official_start"`
	OfficialEnd          string `json:"official_end"`
	OfficialStartWeekday string `json:"official_start_weekday"`
	OfficialEndWeekday   string `json:"official_end_weekday"`
	EffectiveStart       string `json:"effective_start"`
	EffectiveEnd         string `json:"effective_end"`
}

// Attributes is the small attribute bag attached to every computation.
type Attributes struct {
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

// CustodyComputation is the engine output. It is recomputed fresh on every
// evaluation and never mutated in place.
type CustodyComputation struct {
	IsPresent     bool
	NextArrival   *time.Time
	NextDeparture *time.Time
	DaysRemaining *float64

	CurrentPeriod SchedulePeriod
	VacationName  string

	NextVacationName  string
	NextVacationStart *time.Time
	NextVacationEnd   *time.Time
	DaysUntilVacation *float64

	SchoolHolidaysRaw []RawHoliday
	Windows           []CustodyWindow
	Attributes        Attributes
}
