/*
errors.go - Centralized error types for the custody engine

PURPOSE:
  All engine error types in one place. The taxonomy is deliberately small:

  1. Configuration errors - malformed times, weekdays, or rules. They are
     rejected at the boundary of the generator that consumes them; the
     offending rule is skipped, never fatal to the whole computation.
  2. Data errors - inverted or missing holiday bounds. Corrected by the
     safety fallback in bounds.go, never propagated.
  3. Evaluation errors - anything that prevents producing a full
     CustodyComputation (in practice: the holiday provider failing). These
     surface as a single ErrComputationFailed wrapping the cause, so callers
     can keep serving their last known-good result.

USAGE:
  if errors.Is(err, engine.ErrComputationFailed) {
      // keep previous state
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrComputationFailed wraps any failure that prevented producing a full
	// CustodyComputation. A failed computation never returns a partial result.
	ErrComputationFailed = errors.New("custody computation failed")

	// ErrInvalidClock is returned for time strings that are not valid "HH:MM".
	ErrInvalidClock = errors.New("invalid time of day")

	// ErrInvalidWindow is returned for manual or custom windows with end <= start.
	ErrInvalidWindow = errors.New("invalid window: end not after start")

	// ErrUnknownCustodyType is returned for custody types outside the closed set.
	ErrUnknownCustodyType = errors.New("unknown custody type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ComputationError wraps the cause of a failed computation.
type ComputationError struct {
	Stage string // "holiday_fetch", "evaluation"
	Cause error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("custody computation failed at %s: %v", e.Stage, e.Cause)
}

func (e *ComputationError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrComputationFailed) hold for wrapped causes.
func (e *ComputationError) Is(target error) bool { return target == ErrComputationFailed }
