/*
Package factory provides JSON to Go custody configuration conversion.

PURPOSE:
  Converts JSON configuration documents into engine.CustodyConfig values.
  This enables per-child configuration without code changes: the same JSON
  is stored in the database, edited through the API, and parsed here on the
  way into a computation.

JSON SCHEMA:
  {
    "custody_type": "alternate_weekend",
    "reference_year_custody": "even",
    "reference_year_vacations": "odd",
    "vacation_split_mode": "odd_first",
    "start_day": "monday",
    "arrival_time": "16:15",
    "departure_time": "19:00",
    "zone": "C",
    "school_level": "primary",
    "summer_rule": "july_by_parity",
    "timezone": "Europe/Paris",
    "custom_segments": [{"days": 2, "on": true}, {"days": 5, "on": false}],
    "custom_cycle_days": 7,
    "custom_rules": [
      {"start": "2025-12-24T10:00:00+01:00", "end": "2025-12-26T19:00:00+01:00", "label": "Christmas"}
    ],
    "recurring_exceptions": [
      {"weekday": "wednesday", "start": "12:00", "end": "18:00", "label": "Wednesday afternoons"}
    ],
    "location": "Lyon",
    "notes": "School pickup at the side gate"
  }

KEY FEATURES:
  - Validates enums, clocks, and weekday names
  - Sets sensible defaults (alternate_week, 08:00/19:00, odd_first)
  - Resolves the IANA timezone once, at parse time

SEE ALSO:
  - engine/config.go: CustodyConfig definition
  - store/sqlite:     Where the JSON documents are persisted
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coparent/custody-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a custody configuration.
type ConfigJSON struct {
	CustodyType            string `json:"custody_type,omitempty"`
	ReferenceYearCustody   string `json:"reference_year_custody,omitempty"`
	ReferenceYearVacations string `json:"reference_year_vacations,omitempty"`
	VacationSplitMode      string `json:"vacation_split_mode,omitempty"`
	StartDay               string `json:"start_day,omitempty"`
	ArrivalTime            string `json:"arrival_time,omitempty"`
	DepartureTime          string `json:"departure_time,omitempty"`
	Zone                   string `json:"zone,omitempty"`
	SchoolLevel            string `json:"school_level,omitempty"`
	SummerRule             string `json:"summer_rule,omitempty"`
	Timezone               string `json:"timezone,omitempty"`

	CustomSegments  []SegmentJSON `json:"custom_segments,omitempty"`
	CustomCycleDays int           `json:"custom_cycle_days,omitempty"`

	CustomRules         []CustomRuleJSON         `json:"custom_rules,omitempty"`
	RecurringExceptions []RecurringExceptionJSON `json:"recurring_exceptions,omitempty"`

	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SegmentJSON is one leg of a custom cycle.
type SegmentJSON struct {
	Days int  `json:"days"`
	On   bool `json:"on"`
}

// CustomRuleJSON is a one-off presence interval as an ISO range.
type CustomRuleJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

// RecurringExceptionJSON is a weekly time-range exception.
type RecurringExceptionJSON struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	From    string `json:"from,omitempty"`
	Until   string `json:"until,omitempty"`
	Label   string `json:"label,omitempty"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	defaultArrival   = "08:00"
	defaultDeparture = "19:00"
	defaultTimezone  = "Europe/Paris"
)

// =============================================================================
// FACTORY
// =============================================================================

// ParseConfig converts a JSON document into a validated CustodyConfig.
func ParseConfig(raw json.RawMessage) (engine.CustodyConfig, error) {
	var doc ConfigJSON
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return engine.CustodyConfig{}, fmt.Errorf("invalid config JSON: %w", err)
		}
	}
	return BuildConfig(doc)
}

// BuildConfig converts a decoded document into a validated CustodyConfig,
// applying defaults for omitted fields.
func BuildConfig(doc ConfigJSON) (engine.CustodyConfig, error) {
	cfg := engine.CustodyConfig{
		Zone:     doc.Zone,
		Location: doc.Location,
		Notes:    doc.Notes,
	}

	custodyType, err := parseCustodyType(doc.CustodyType)
	if err != nil {
		return engine.CustodyConfig{}, err
	}
	cfg.CustodyType = custodyType

	if cfg.ReferenceYearCustody, err = parseParity("reference_year_custody", doc.ReferenceYearCustody); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.ReferenceYearVacations, err = parseParity("reference_year_vacations", doc.ReferenceYearVacations); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.VacationSplitMode, err = parseSplitMode(doc.VacationSplitMode); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.StartDay, err = parseWeekday(doc.StartDay, time.Monday); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.ArrivalTime, err = parseClock("arrival_time", doc.ArrivalTime, defaultArrival); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.DepartureTime, err = parseClock("departure_time", doc.DepartureTime, defaultDeparture); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.SchoolLevel, err = parseSchoolLevel(doc.SchoolLevel); err != nil {
		return engine.CustodyConfig{}, err
	}
	if cfg.SummerRule, err = parseSummerRule(doc.SummerRule); err != nil {
		return engine.CustodyConfig{}, err
	}

	tz := doc.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return engine.CustodyConfig{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	cfg.Timezone = loc

	for _, seg := range doc.CustomSegments {
		if seg.Days <= 0 {
			return engine.CustodyConfig{}, fmt.Errorf("custom segment days must be positive, got %d", seg.Days)
		}
		cfg.CustomSegments = append(cfg.CustomSegments, engine.Segment{Days: seg.Days, On: seg.On})
	}
	cfg.CustomCycleDays = doc.CustomCycleDays
	if cfg.CustodyType == engine.CustodyCustom && len(cfg.CustomSegments) == 0 {
		return engine.CustodyConfig{}, fmt.Errorf("custody type %q requires custom_segments", doc.CustodyType)
	}

	for i, rule := range doc.CustomRules {
		start, err := time.Parse(time.RFC3339, rule.Start)
		if err != nil {
			return engine.CustodyConfig{}, fmt.Errorf("custom rule %d: invalid start: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, rule.End)
		if err != nil {
			return engine.CustodyConfig{}, fmt.Errorf("custom rule %d: invalid end: %w", i, err)
		}
		if !end.After(start) {
			return engine.CustodyConfig{}, fmt.Errorf("custom rule %d: end must be after start", i)
		}
		cfg.CustomRules = append(cfg.CustomRules, engine.CustomRule{
			Start: start.In(loc),
			End:   end.In(loc),
			Label: rule.Label,
		})
	}

	for i, exc := range doc.RecurringExceptions {
		parsed, err := buildRecurringException(exc, loc)
		if err != nil {
			return engine.CustodyConfig{}, fmt.Errorf("recurring exception %d: %w", i, err)
		}
		cfg.RecurringExceptions = append(cfg.RecurringExceptions, parsed)
	}

	return cfg, nil
}

func buildRecurringException(doc RecurringExceptionJSON, loc *time.Location) (engine.RecurringException, error) {
	weekday, err := parseWeekday(doc.Weekday, time.Monday)
	if err != nil {
		return engine.RecurringException{}, err
	}
	if doc.Weekday == "" {
		return engine.RecurringException{}, fmt.Errorf("weekday is required")
	}

	start, err := engine.ParseClock(doc.Start)
	if err != nil {
		return engine.RecurringException{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := engine.ParseClock(doc.End)
	if err != nil {
		return engine.RecurringException{}, fmt.Errorf("invalid end: %w", err)
	}
	if end.Minutes() <= start.Minutes() {
		return engine.RecurringException{}, fmt.Errorf("end %q must be after start %q", doc.End, doc.Start)
	}

	exc := engine.RecurringException{
		Weekday: weekday,
		Start:   start,
		End:     end,
		Label:   doc.Label,
	}
	if doc.From != "" {
		from, err := parseDate(doc.From, loc)
		if err != nil {
			return engine.RecurringException{}, fmt.Errorf("invalid from: %w", err)
		}
		exc.From = &from
	}
	if doc.Until != "" {
		until, err := parseDate(doc.Until, loc)
		if err != nil {
			return engine.RecurringException{}, fmt.Errorf("invalid until: %w", err)
		}
		exc.Until = &until
	}
	return exc, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

func parseCustodyType(s string) (engine.CustodyType, error) {
	if s == "" {
		return engine.CustodyAlternateWeek, nil
	}
	t := engine.CustodyType(s)
	if _, err := t.Cycle(); err != nil {
		return "", fmt.Errorf("unknown custody_type %q", s)
	}
	return t, nil
}

func parseParity(field, s string) (engine.Parity, error) {
	switch s {
	case "", string(engine.ParityEven):
		return engine.ParityEven, nil
	case string(engine.ParityOdd):
		return engine.ParityOdd, nil
	default:
		return "", fmt.Errorf("%s must be \"even\" or \"odd\", got %q", field, s)
	}
}

func parseSplitMode(s string) (engine.SplitMode, error) {
	switch s {
	case "", string(engine.SplitOddFirst):
		return engine.SplitOddFirst, nil
	case string(engine.SplitOddSecond):
		return engine.SplitOddSecond, nil
	default:
		return "", fmt.Errorf("unknown vacation_split_mode %q", s)
	}
}

func parseSchoolLevel(s string) (engine.SchoolLevel, error) {
	switch s {
	case "":
		return "", nil
	case string(engine.LevelPrimary), string(engine.LevelMiddle), string(engine.LevelHigh):
		return engine.SchoolLevel(s), nil
	default:
		return "", fmt.Errorf("unknown school_level %q", s)
	}
}

func parseSummerRule(s string) (engine.SummerRule, error) {
	switch engine.SummerRule(s) {
	case "", engine.SummerNone:
		return engine.SummerNone, nil
	case engine.SummerJulyByParity, engine.SummerAugustByParity,
		engine.SummerJulyFirstHalf, engine.SummerJulySecondHalf,
		engine.SummerAugustFirstHalf, engine.SummerAugustSecondHalf:
		return engine.SummerRule(s), nil
	default:
		return "", fmt.Errorf("unknown summer_rule %q", s)
	}
}

func parseClock(field, s, fallback string) (engine.Clock, error) {
	if s == "" {
		s = fallback
	}
	clock, err := engine.ParseClock(s)
	if err != nil {
		return engine.Clock{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return clock, nil
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func parseWeekday(s string, fallback time.Weekday) (time.Weekday, error) {
	if s == "" {
		return fallback, nil
	}
	weekday, ok := weekdayNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return weekday, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}
