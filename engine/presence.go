/*
presence.go - Presence evaluation against "now"

PURPOSE:
  Given the resolved, sorted window list and an optional manual override,
  computes the presence summary: is the child present, when is the next
  arrival/departure, and how many days remain.

STATE MACHINE:
  ABSENT               no current window, no (or absent) override
  PRESENT_IN_WINDOW    a window contains now
  PRESENT_VIA_OVERRIDE an active "present" override, regardless of windows

GRACE MARGIN:
  A window ending within the next minute is treated as already ended. This
  avoids momentarily reporting a departure that is effectively "now" (or a
  departure in the past, after clock skew between evaluations). Whenever the
  nominal next-departure candidate falls inside the grace margin, the
  evaluator falls forward to the next non-grace window end and re-derives
  the matching arrival.

EDGE POLICY:
  No windows at all is not an error: absent, nil next-arrival/departure,
  nil days-remaining.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// GraceMargin is how close to its end a window counts as already ended.
const GraceMargin = time.Minute

// PresenceResult is the evaluated presence summary.
type PresenceResult struct {
	IsPresent     bool
	CurrentWindow *CustodyWindow
	NextArrival   *time.Time
	NextDeparture *time.Time
	DaysRemaining *float64
}

// EvaluatePresence computes the presence summary from the sorted window list
// and an optional override. The override, while active, takes precedence over
// window membership; it expires lazily when now passes its Until.
func EvaluatePresence(now time.Time, windows []CustodyWindow, override *ManualOverride) PresenceResult {
	grace := now.Add(GraceMargin)

	current := currentWindow(now, grace, windows)
	next := nextWindow(now, windows)

	overrideState := activeOverrideState(now, override)
	isPresent := current != nil
	if overrideState != nil {
		isPresent = *overrideState
	}

	var nextArrival, nextDeparture *time.Time
	switch {
	case isPresent && current != nil:
		// Presence backed by a real window: departure is its end.
		departure := current.End
		if departure.After(grace) {
			nextDeparture = &departure
			nextArrival = firstStartAfter(windows, departure)
		} else {
			nextDeparture, nextArrival = fallForward(grace, next, windows)
		}

	case isPresent && override != nil && override.Until != nil:
		// Presence forced by an override with a known expiry.
		departure := *override.Until
		if departure.After(grace) {
			nextDeparture = &departure
			nextArrival = firstStartAfter(windows, departure)
		} else {
			nextDeparture, nextArrival = fallForward(grace, next, windows)
		}

	case isPresent:
		// Open-ended override: fall back to the next scheduled window.
		if next != nil {
			nextDeparture = timePtr(next.End)
			nextArrival = timePtr(next.Start)
		}

	default:
		// Absent: both fields point at the next future window.
		if next != nil {
			nextArrival = timePtr(next.Start)
			nextDeparture = timePtr(next.End)
		}
		if nextDeparture != nil && !nextDeparture.After(grace) {
			nextDeparture, nextArrival = fallForward(grace, nil, windows)
		}
	}

	result := PresenceResult{
		IsPresent:     isPresent,
		CurrentWindow: current,
		NextArrival:   nextArrival,
		NextDeparture: nextDeparture,
	}

	target := nextArrival
	if isPresent {
		target = nextDeparture
	}
	if target != nil {
		result.DaysRemaining = daysUntil(now, *target)
	}
	return result
}

// currentWindow returns the window containing now, unless it ends within the
// grace margin, in which case it is treated as already ended.
func currentWindow(now, grace time.Time, windows []CustodyWindow) *CustodyWindow {
	for i := range windows {
		w := &windows[i]
		if w.Contains(now) && w.End.After(grace) {
			return w
		}
	}
	return nil
}

// nextWindow returns the first window starting strictly after now.
func nextWindow(now time.Time, windows []CustodyWindow) *CustodyWindow {
	for i := range windows {
		w := &windows[i]
		if w.Start.After(now) && w.End.After(now) {
			return w
		}
	}
	return nil
}

// fallForward re-derives (departure, arrival) when the nominal candidate is
// inside the grace margin: prefer the next future window, else the first
// window end beyond the grace margin with its matching start.
func fallForward(grace time.Time, next *CustodyWindow, windows []CustodyWindow) (*time.Time, *time.Time) {
	if next != nil {
		return timePtr(next.End), timePtr(next.Start)
	}
	for i := range windows {
		w := &windows[i]
		if w.End.After(grace) {
			return timePtr(w.End), timePtr(w.Start)
		}
	}
	return nil, nil
}

// firstStartAfter returns the start of the first window beginning strictly
// after t.
func firstStartAfter(windows []CustodyWindow, t time.Time) *time.Time {
	for i := range windows {
		if windows[i].Start.After(t) {
			return timePtr(windows[i].Start)
		}
	}
	return nil
}

// daysUntil converts the distance to target into days rounded to two
// decimals, clamped at zero. Decimal rounding keeps the value exact (86400s
// divisions drift under float64 printf rounding).
func daysUntil(now, target time.Time) *float64 {
	days := decimal.NewFromFloat(target.Sub(now).Seconds() / 86400).Round(2)
	if days.IsNegative() {
		days = decimal.Zero
	}
	value, _ := days.Float64()
	return &value
}

// activeOverrideState returns the forced presence state, or nil when no
// override applies (none set, or expired).
func activeOverrideState(now time.Time, override *ManualOverride) *bool {
	if !override.Active(now) {
		return nil
	}
	state := override.State == StatePresent
	return &state
}

func timePtr(t time.Time) *time.Time { return &t }
