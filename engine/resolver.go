/*
resolver.go - Window merging and precedence

PURPOSE:
  Merges the window families into one ordered timeline:

  1. Vacations fully pre-empt the normal pattern. Every holiday emits a
     filter window over its full effective span; any pattern window that
     strictly overlaps one of those spans is dropped - never partially
     clipped. Touching edges do not count as overlap.
  2. Manual, vacation-display, custom, and recurring-exception windows are
     concatenated unfiltered; manual windows win simply by being present.
  3. Windows that ended more than a day ago are dropped (recently-ended
     ones are kept briefly for display consistency).
  4. The result is sorted ascending by start. No deduplication happens
     beyond the pattern suppression: overlapping windows from different
     sources are preserved as-is.

  Filter windows never appear in the output; their only job is suppression.
*/
package engine

import (
	"sort"
	"time"
)

// ResolveWindows merges all window families into the final sorted timeline.
func ResolveWindows(now time.Time, pattern, vacation, custom, recurring, manual []CustodyWindow) []CustodyWindow {
	suppression := suppressionSpans(vacation)

	merged := make([]CustodyWindow, 0, len(pattern)+len(vacation)+len(custom)+len(recurring)+len(manual))
	merged = append(merged, manual...)
	for _, w := range vacation {
		if w.Source != SourceVacationFilter {
			merged = append(merged, w)
		}
	}
	merged = append(merged, custom...)
	for _, w := range pattern {
		if !overlapsAny(w, suppression) {
			merged = append(merged, w)
		}
	}
	merged = append(merged, recurring...)

	// Drop windows fully in the past, with a one-day retention margin.
	cutoff := now.AddDate(0, 0, -1)
	kept := merged[:0]
	for _, w := range merged {
		if w.End.After(cutoff) {
			kept = append(kept, w)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start.Before(kept[j].Start) })
	return kept
}

// suppressionSpans returns the full effective vacation spans (the filter
// windows). School holidays pre-empt the pattern for their entire duration,
// whoever holds custody inside them.
func suppressionSpans(vacation []CustodyWindow) []CustodyWindow {
	var spans []CustodyWindow
	for _, w := range vacation {
		if w.Source == SourceVacationFilter {
			spans = append(spans, w)
		}
	}
	return spans
}

func overlapsAny(w CustodyWindow, spans []CustodyWindow) bool {
	for _, span := range spans {
		if w.Overlaps(span.Start, span.End) {
			return true
		}
	}
	return false
}
