/*
engine.go - Computation orchestration and manual-state management

PURPOSE:
  Two layers:

  - Compute: the pure pipeline. One holiday fetch, then window generation,
    resolution, presence evaluation, and period classification. No shared
    state, safe to run concurrently for independent children.

  - Manager: owns the only mutable state in the surrounding system - manual
    windows and the presence override - behind a mutex. Callers mutate it
    between computations; each computation reads a consistent snapshot at
    its start.

ERROR CONTRACT:
  A failed computation never returns a partial result. The only failure
  source is the holiday provider; its error is wrapped so that
  errors.Is(err, ErrComputationFailed) holds and callers can keep serving
  their last known-good result.
*/
package engine

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// HOLIDAY PROVIDER - The engine's only external dependency
// =============================================================================

// HolidayProvider lists all school-holiday periods overlapping a calendar
// year for a zone, sorted by start and deduplicated by (name, start, end).
// An empty list means "no vacation rules apply", never an error.
type HolidayProvider interface {
	ListHolidays(ctx context.Context, zone string, year int) ([]SchoolHoliday, error)
}

// =============================================================================
// PURE COMPUTATION
// =============================================================================

// Compute runs the full pipeline: fetch holidays once, generate every window
// family, resolve precedence, evaluate presence, classify the period.
func Compute(
	ctx context.Context,
	now time.Time,
	cfg CustodyConfig,
	provider HolidayProvider,
	manualWindows []CustodyWindow,
	override *ManualOverride,
) (*CustodyComputation, error) {
	now = now.In(cfg.Loc())

	// The provider is invoked exactly once and awaited before any window
	// generation proceeds.
	var holidays []SchoolHoliday
	if cfg.Zone != "" && provider != nil {
		fetched, err := provider.ListHolidays(ctx, cfg.Zone, now.Year())
		if err != nil {
			return nil, &ComputationError{Stage: "holiday_fetch", Cause: err}
		}
		holidays = fetched
	}

	vacationWindows := GenerateVacationWindows(now, cfg, holidays)
	patternWindows := GeneratePatternWindows(now, cfg, vacationWindows)
	customWindows := customRuleWindows(cfg)
	recurringWindows := GenerateRecurringWindows(now, cfg)

	windows := ResolveWindows(now, patternWindows, vacationWindows, customWindows, recurringWindows, manualWindows)

	presence := EvaluatePresence(now, windows, override)
	period, vacationName := ClassifyPeriod(now, cfg, holidays)
	nextVacation := NextVacation(now, cfg, holidays)

	return &CustodyComputation{
		IsPresent:         presence.IsPresent,
		NextArrival:       presence.NextArrival,
		NextDeparture:     presence.NextDeparture,
		DaysRemaining:     presence.DaysRemaining,
		CurrentPeriod:     period,
		VacationName:      vacationName,
		NextVacationName:  nextVacation.Name,
		NextVacationStart: nextVacation.Start,
		NextVacationEnd:   nextVacation.End,
		DaysUntilVacation: nextVacation.DaysUntil,
		SchoolHolidaysRaw: nextVacation.Raw,
		Windows:           windows,
		Attributes: Attributes{
			Location: cfg.Location,
			Notes:    cfg.Notes,
			Zone:     cfg.Zone,
		},
	}, nil
}

// customRuleWindows transforms the configured one-off ISO ranges. Invalid
// ranges (end <= start) are configuration errors and are skipped.
func customRuleWindows(cfg CustodyConfig) []CustodyWindow {
	var windows []CustodyWindow
	for _, rule := range cfg.CustomRules {
		label := rule.Label
		if label == "" {
			label = "Custom rule"
		}
		w := CustodyWindow{Start: rule.Start, End: rule.End, Label: label, Source: SourceCustom}
		if w.Valid() {
			windows = append(windows, w)
		}
	}
	return windows
}

// =============================================================================
// MANAGER - Mutable manual state behind a mutex
// =============================================================================

// ManualRange is a caller-supplied one-off presence window.
type ManualRange struct {
	Start time.Time
	End   time.Time
	Label string
}

// Manager couples an immutable config with the caller-mutable manual state
// and serializes access to it. One Manager per child; independent managers
// may compute concurrently.
type Manager struct {
	mu sync.Mutex

	config        CustodyConfig
	holidays      HolidayProvider
	manualWindows []CustodyWindow
	override      *ManualOverride
}

// NewManager creates a manager for one child.
func NewManager(cfg CustodyConfig, holidays HolidayProvider) *Manager {
	return &Manager{config: cfg, holidays: holidays}
}

// UpdateConfig replaces the configuration wholesale.
func (m *Manager) UpdateConfig(cfg CustodyConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() CustodyConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetManualWindows replaces the manual presence windows. Ranges violating
// the end > start invariant are skipped.
func (m *Manager) SetManualWindows(ranges []ManualRange) {
	windows := make([]CustodyWindow, 0, len(ranges))
	for _, r := range ranges {
		label := r.Label
		if label == "" {
			label = "Manual custody"
		}
		w := CustodyWindow{Start: r.Start, End: r.End, Label: label, Source: SourceManual}
		if w.Valid() {
			windows = append(windows, w)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.manualWindows = windows
}

// Override forces the presence state, optionally for a bounded duration.
func (m *Manager) Override(now time.Time, state PresenceState, duration *time.Duration) {
	var until *time.Time
	if duration != nil {
		t := now.Add(*duration)
		until = &t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.override = &ManualOverride{State: state, Until: until}
}

// ClearOverride removes the manual override.
func (m *Manager) ClearOverride() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.override = nil
}

// Compute takes a consistent snapshot of the manual state and runs the pure
// pipeline. Expired overrides are cleared lazily here.
func (m *Manager) Compute(ctx context.Context, now time.Time) (*CustodyComputation, error) {
	m.mu.Lock()
	cfg := m.config
	manual := make([]CustodyWindow, len(m.manualWindows))
	copy(manual, m.manualWindows)

	override := m.override
	if override != nil && !override.Active(now) {
		m.override = nil
		override = nil
	}
	if override != nil {
		snapshot := *override
		override = &snapshot
	}
	m.mu.Unlock()

	return Compute(ctx, now, cfg, m.holidays, manual, override)
}
