/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's internal model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigJSON type
*/
package api

import (
	"time"

	"github.com/coparent/custody-engine/engine"
	"github.com/coparent/custody-engine/factory"
	"github.com/coparent/custody-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ChildDTO represents a child in API responses.
type ChildDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    factory.ConfigJSON `json:"config"`
	CreatedAt string             `json:"created_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

// CreateChildRequest is the request to create or update a child.
type CreateChildRequest struct {
	Name   string             `json:"name"`
	Config factory.ConfigJSON `json:"config"`
}

// WindowDTO represents one resolved presence window.
type WindowDTO struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

// ScheduleDTO is the full computed schedule for a child.
type ScheduleDTO struct {
	ChildID       string   `json:"child_id"`
	IsPresent     bool     `json:"is_present"`
	NextArrival   *string  `json:"next_arrival,omitempty"`
	NextDeparture *string  `json:"next_departure,omitempty"`
	DaysRemaining *float64 `json:"days_remaining,omitempty"`

	CurrentPeriod string `json:"current_period"`
	VacationName  string `json:"vacation_name,omitempty"`

	NextVacationName  string   `json:"next_vacation_name,omitempty"`
	NextVacationStart *string  `json:"next_vacation_start,omitempty"`
	NextVacationEnd   *string  `json:"next_vacation_end,omitempty"`
	DaysUntilVacation *float64 `json:"days_until_vacation,omitempty"`

	SchoolHolidays []engine.RawHoliday `json:"school_holidays,omitempty"`
	Windows        []WindowDTO         `json:"windows"`
	Attributes     engine.Attributes   `json:"attributes"`
	ComputedAt     string              `json:"computed_at"`
}

// ManualWindowRequest is one manual presence window in a replace request.
type ManualWindowRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

// SetManualWindowsRequest replaces a child's manual windows wholesale.
type SetManualWindowsRequest struct {
	Windows []ManualWindowRequest `json:"windows"`
}

// OverrideRequest forces the presence state for a child.
type OverrideRequest struct {
	State           string   `json:"state"`                      // "present" or "absent"
	DurationMinutes *float64 `json:"duration_minutes,omitempty"` // nil = until cleared
}

// HolidayDTO represents one school holiday period.
type HolidayDTO struct {
	Name  string `json:"name"`
	Zone  string `json:"zone"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toChildDTO(child sqlite.Child, config factory.ConfigJSON) ChildDTO {
	return ChildDTO{
		ID:        child.ID,
		Name:      child.Name,
		Config:    config,
		CreatedAt: child.CreatedAt.Format(time.RFC3339),
		UpdatedAt: child.UpdatedAt.Format(time.RFC3339),
	}
}

func toScheduleDTO(childID string, now time.Time, c *engine.CustodyComputation) ScheduleDTO {
	windows := make([]WindowDTO, len(c.Windows))
	for i, w := range c.Windows {
		windows[i] = WindowDTO{
			Start:  w.Start.Format(time.RFC3339),
			End:    w.End.Format(time.RFC3339),
			Label:  w.Label,
			Source: string(w.Source),
		}
	}
	return ScheduleDTO{
		ChildID:           childID,
		IsPresent:         c.IsPresent,
		NextArrival:       formatTimePtr(c.NextArrival),
		NextDeparture:     formatTimePtr(c.NextDeparture),
		DaysRemaining:     c.DaysRemaining,
		CurrentPeriod:     string(c.CurrentPeriod),
		VacationName:      c.VacationName,
		NextVacationName:  c.NextVacationName,
		NextVacationStart: formatTimePtr(c.NextVacationStart),
		NextVacationEnd:   formatTimePtr(c.NextVacationEnd),
		DaysUntilVacation: c.DaysUntilVacation,
		SchoolHolidays:    c.SchoolHolidaysRaw,
		Windows:           windows,
		Attributes:        c.Attributes,
		ComputedAt:        now.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
