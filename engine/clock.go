/*
clock.go - Pure time helpers: time-of-day, ISO week parity, public holidays

PURPOSE:
  The small calendar vocabulary every generator shares: parsing "HH:MM"
  strings, stamping a date with a time-of-day, ISO week parity, and the
  French public-holiday table (fixed dates plus Easter-relative dates via
  the anonymous Gregorian computus).

KEY CONCEPTS:
  - Clock: a time-of-day without a date (arrival/departure times)
  - CivilDate: a calendar day without a time (public-holiday keys)
  - Week parity: ISO-8601 week number modulo 2, anchor of alternating rules

SEE ALSO:
  - pattern.go: consumes PublicHolidays for pont bridging
  - bounds.go:  consumes Clock stamping for effective holiday bounds
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CLOCK - Time of day
// =============================================================================

// Clock is a time-of-day (hours and minutes), independent of any date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" into a Clock.
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// MustClock parses "HH:MM" and panics on failure. For constants and tests.
func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// On stamps the date of t with this time-of-day, keeping t's location.
// Seconds and sub-seconds are zeroed.
func (c Clock) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// Minutes returns the clock as minutes since midnight, for ordering.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// CIVIL DATE - Calendar day
// =============================================================================

// CivilDate identifies a calendar day regardless of time and zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the civil date of a timestamp in its own location.
func DateOf(t time.Time) CivilDate {
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// =============================================================================
// ISO WEEK PARITY
// =============================================================================

// ISOWeek returns the ISO-8601 week number of t.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// WeekParity returns 0 for even ISO weeks and 1 for odd ones.
func WeekParity(t time.Time) int {
	return ISOWeek(t) % 2
}

// =============================================================================
// PUBLIC HOLIDAYS - French jours fériés
// =============================================================================

// EasterSunday computes Easter Sunday for a year using the anonymous
// Gregorian computus.
func EasterSunday(year int) CivilDate {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return CivilDate{Year: year, Month: time.Month(month), Day: day}
}

// PublicHolidays returns the French public holidays for a year, keyed by
// calendar day with the holiday name as value. Fixed dates plus the three
// Easter-relative ones (Easter Monday, Ascension, Whit Monday).
func PublicHolidays(year int) map[CivilDate]string {
	holidays := map[CivilDate]string{
		{year, time.January, 1}:   "Jour de l'An",
		{year, time.May, 1}:       "Fête du Travail",
		{year, time.May, 8}:       "Victoire 1945",
		{year, time.July, 14}:     "Fête Nationale",
		{year, time.August, 15}:   "Assomption",
		{year, time.November, 1}:  "Toussaint",
		{year, time.November, 11}: "Armistice",
		{year, time.December, 25}: "Noël",
	}

	easter := time.Date(year, EasterSunday(year).Month, EasterSunday(year).Day, 0, 0, 0, 0, time.UTC)
	holidays[DateOf(easter.AddDate(0, 0, 1))] = "Lundi de Pâques"
	holidays[DateOf(easter.AddDate(0, 0, 39))] = "Jeudi de l'Ascension"
	holidays[DateOf(easter.AddDate(0, 0, 50))] = "Lundi de Pentecôte"
	return holidays
}

// publicHolidaysAround merges the public-holiday tables of now's year and the
// next one, covering the full generation horizon.
func publicHolidaysAround(now time.Time) map[CivilDate]string {
	holidays := PublicHolidays(now.Year())
	for day, name := range PublicHolidays(now.Year() + 1) {
		holidays[day] = name
	}
	return holidays
}

// =============================================================================
// DATE WALKING HELPERS
// =============================================================================

// midnightOf truncates t to midnight in its own location.
func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// backToWeekday walks t backward day by day until it lands on the requested
// weekday (t itself qualifies).
func backToWeekday(t time.Time, weekday time.Weekday) time.Time {
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
