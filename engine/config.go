/*
config.go - Immutable custody configuration

PURPOSE:
  CustodyConfig is the per-child snapshot every computation consumes. It is
  constructed once, replaced wholesale when options change, and never
  partially mutated during a computation.

KEY CONCEPTS:
  - CustodyType: the closed set of pattern families. Week/weekend parity
    types alternate on ISO week parity; the others are fixed segment cycles
    (N days on / M days off repeating every CycleDays).
  - Parity: which years (or ISO weeks) belong to this parent.
  - SplitMode: maps a holiday's year parity to first-half/second-half custody.
  - SummerRule: optional override replacing the automatic split for the
    summer break. SummerNone means "use the automatic split".

EXAMPLE:
  cfg := engine.CustodyConfig{
      CustodyType:            engine.CustodyAlternateWeekend,
      ReferenceYearCustody:   engine.ParityEven,
      ReferenceYearVacations: engine.ParityOdd,
      VacationSplitMode:      engine.SplitOddFirst,
      ArrivalTime:            engine.MustClock("16:15"),
      DepartureTime:          engine.MustClock("19:00"),
      Zone:                   "C",
  }
*/
package engine

import "time"

// =============================================================================
// ENUMS
// =============================================================================

// Parity selects even or odd reference years (and ISO weeks).
type Parity string

const (
	ParityEven Parity = "even"
	ParityOdd  Parity = "odd"
)

// MatchesYear reports whether the year has this parity.
func (p Parity) MatchesYear(year int) bool {
	if p == ParityOdd {
		return year%2 != 0
	}
	return year%2 == 0
}

// SplitMode maps a holiday's year parity to the custody half.
type SplitMode string

const (
	// SplitOddFirst: odd years take the first half, even years the second.
	SplitOddFirst SplitMode = "odd_first"
	// SplitOddSecond: odd years take the second half, even years the first.
	SplitOddSecond SplitMode = "odd_second"
)

// SchoolLevel only affects display adjustments, never the engine core.
type SchoolLevel string

const (
	LevelPrimary SchoolLevel = "primary"
	LevelMiddle  SchoolLevel = "middle"
	LevelHigh    SchoolLevel = "high"
)

// SummerRule replaces the automatic split for the summer break.
// SummerNone falls through to the automatic split.
type SummerRule string

const (
	SummerNone             SummerRule = "none"
	SummerJulyByParity     SummerRule = "july_by_parity"
	SummerAugustByParity   SummerRule = "august_by_parity"
	SummerJulyFirstHalf    SummerRule = "july_half_1"
	SummerJulySecondHalf   SummerRule = "july_half_2"
	SummerAugustFirstHalf  SummerRule = "august_half_1"
	SummerAugustSecondHalf SummerRule = "august_half_2"
)

// =============================================================================
// CUSTODY TYPES - Pattern families
// =============================================================================

// CustodyType identifies the recurring custody pattern family.
type CustodyType string

const (
	CustodyAlternateWeek       CustodyType = "alternate_week"        // 7 on / 7 off
	CustodyAlternateWeekParity CustodyType = "alternate_week_parity" // Mon-Sun on matching ISO weeks
	CustodyAlternateWeekend    CustodyType = "alternate_weekend"     // Fri-Sun on matching ISO weeks
	CustodyTwoTwoThree         CustodyType = "two_two_three"         // 2-2-3
	CustodyTwoTwoFiveFive      CustodyType = "two_two_five_five"     // 2-2-5-5
	CustodyCustom              CustodyType = "custom"                // caller-supplied segments
)

// Segment is one leg of a custody cycle: Days consecutive days, on or off.
type Segment struct {
	Days int
	On   bool
}

// CycleDef describes a segment-cycle custody type.
type CycleDef struct {
	Label     string
	CycleDays int
	Segments  []Segment
}

// Cycle returns the cycle definition for the custody type. Parity-anchored
// types carry no segments; they are expanded week by week instead.
func (t CustodyType) Cycle() (CycleDef, error) {
	switch t {
	case CustodyAlternateWeek:
		return CycleDef{
			Label:     "Alternate weeks (1/1)",
			CycleDays: 14,
			Segments:  []Segment{{Days: 7, On: true}, {Days: 7, On: false}},
		}, nil
	case CustodyAlternateWeekParity:
		return CycleDef{Label: "Alternate weeks", CycleDays: 7}, nil
	case CustodyAlternateWeekend:
		return CycleDef{Label: "Alternate weekends", CycleDays: 7}, nil
	case CustodyTwoTwoThree:
		return CycleDef{
			Label:     "2-2-3",
			CycleDays: 7,
			Segments:  []Segment{{Days: 2, On: true}, {Days: 2, On: false}, {Days: 3, On: true}},
		}, nil
	case CustodyTwoTwoFiveFive:
		return CycleDef{
			Label:     "2-2-5-5",
			CycleDays: 14,
			Segments:  []Segment{{Days: 2, On: true}, {Days: 2, On: false}, {Days: 5, On: true}, {Days: 5, On: false}},
		}, nil
	case CustodyCustom:
		return CycleDef{Label: "Custom cycle", CycleDays: 14}, nil
	default:
		return CycleDef{}, ErrUnknownCustodyType
	}
}

// parityAnchored reports whether windows come from ISO week parity rather
// than from a fixed segment cycle.
func (t CustodyType) parityAnchored() bool {
	return t == CustodyAlternateWeekParity || t == CustodyAlternateWeekend
}

// =============================================================================
// RULES SUPPLIED BY THE CALLER
// =============================================================================

// RecurringException is a weekly exception: the child is additionally present
// on Weekday between Start and End, optionally bounded by a date range.
type RecurringException struct {
	Weekday time.Weekday
	Start   Clock
	End     Clock
	From    *time.Time // inclusive date bound, nil = open
	Until   *time.Time // inclusive date bound, nil = open
	Label   string
}

// CustomRule is a one-off presence interval configured as an ISO range.
type CustomRule struct {
	Start time.Time
	End   time.Time
	Label string
}

// =============================================================================
// CUSTODY CONFIG
// =============================================================================

// CustodyConfig is the immutable per-computation snapshot.
type CustodyConfig struct {
	CustodyType            CustodyType
	ReferenceYearCustody   Parity
	ReferenceYearVacations Parity
	VacationSplitMode      SplitMode
	StartDay               time.Weekday
	ArrivalTime            Clock
	DepartureTime          Clock
	Zone                   string
	SchoolLevel            SchoolLevel
	SummerRule             SummerRule

	// CustomSegments applies when CustodyType is CustodyCustom, together
	// with CustomCycleDays.
	CustomSegments  []Segment
	CustomCycleDays int

	CustomRules         []CustomRule
	RecurringExceptions []RecurringException

	Location string
	Notes    string
	Timezone *time.Location
}

// Loc returns the configured timezone, defaulting to the local one.
func (c CustodyConfig) Loc() *time.Location {
	if c.Timezone != nil {
		return c.Timezone
	}
	return time.Local
}

// cycle resolves the effective cycle definition, honoring custom segments.
func (c CustodyConfig) cycle() (CycleDef, error) {
	def, err := c.CustodyType.Cycle()
	if err != nil {
		return CycleDef{}, err
	}
	if c.CustodyType == CustodyCustom {
		def.Segments = c.CustomSegments
		if c.CustomCycleDays > 0 {
			def.CycleDays = c.CustomCycleDays
		}
	}
	return def, nil
}

// referenceYear returns now's year stepped back by one when its parity does
// not match the requested one.
func referenceYear(now time.Time, desired Parity) int {
	year := now.Year()
	if !desired.MatchesYear(year) {
		year--
	}
	return year
}
