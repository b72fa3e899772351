/*
handlers.go - HTTP API handlers for the custody schedule service

PURPOSE:
  Exposes the custody engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and the store.

ENDPOINTS:
  Children:
    GET    /api/children                    List all children
    POST   /api/children                    Create child
    GET    /api/children/{id}               Get child details
    PUT    /api/children/{id}               Update child configuration
    DELETE /api/children/{id}               Delete child
    GET    /api/children/{id}/schedule      Computed schedule and presence

  Manual state:
    GET    /api/children/{id}/manual-windows  List manual windows
    PUT    /api/children/{id}/manual-windows  Replace manual windows
    POST   /api/children/{id}/override        Force presence state
    DELETE /api/children/{id}/override        Clear forced state

  Calendar:
    GET    /api/holidays?zone=C&year=2025   Raw school holidays
    POST   /api/refresh                     Drop the holiday cache

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Holidays: The (usually cached) holiday provider
  - One engine.Manager per child, created lazily and kept in memory

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (factory for configs)
  3. Call engine logic
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Child not found
  - 502: Holiday provider failure during computation
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background recomputation
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/coparent/custody-engine/engine"
	"github.com/coparent/custody-engine/factory"
	"github.com/coparent/custody-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Holidays engine.HolidayProvider

	// One manager per child, created lazily from the stored config.
	mu       sync.Mutex
	managers map[string]*engine.Manager

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store and provider.
func NewHandler(store *sqlite.Store, holidays engine.HolidayProvider) *Handler {
	return &Handler{
		Store:    store,
		Holidays: holidays,
		managers: make(map[string]*engine.Manager),
		Now:      time.Now,
	}
}

// manager returns the engine manager for a child, building it from the
// stored configuration and manual state on first use.
func (h *Handler) manager(r *http.Request, childID string) (*engine.Manager, error) {
	h.mu.Lock()
	if m, ok := h.managers[childID]; ok {
		h.mu.Unlock()
		return m, nil
	}
	h.mu.Unlock()

	ctx := r.Context()
	child, err := h.Store.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	cfg, err := factory.ParseConfig(child.Config)
	if err != nil {
		return nil, err
	}

	m := engine.NewManager(cfg, h.Holidays)

	stored, err := h.Store.ListManualWindows(ctx, childID)
	if err != nil {
		return nil, err
	}
	m.SetManualWindows(toManualRanges(stored))

	if override, err := h.Store.GetOverride(ctx, childID); err == nil {
		restoreOverride(m, override, h.Now())
	} else if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.managers[childID]; ok {
		return existing, nil
	}
	h.managers[childID] = m
	return m, nil
}

func (h *Handler) dropManager(childID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.managers, childID)
}

// ChildIDs returns the ids of all children currently in the store.
func (h *Handler) ChildIDs(r *http.Request) ([]string, error) {
	children, err := h.Store.ListChildren(r.Context())
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.ID
	}
	return ids, nil
}

// =============================================================================
// CHILD HANDLERS
// =============================================================================

// ListChildren returns all children.
// GET /api/children
func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.Store.ListChildren(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list children", err)
		return
	}

	dtos := make([]ChildDTO, 0, len(children))
	for _, child := range children {
		var config factory.ConfigJSON
		json.Unmarshal(child.Config, &config)
		dtos = append(dtos, toChildDTO(child, config))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateChild creates a child with a validated configuration.
// POST /api/children
func (h *Handler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if _, err := factory.BuildConfig(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
		return
	}

	configJSON, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode configuration", err)
		return
	}

	child, err := h.Store.CreateChild(r.Context(), req.Name, configJSON)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create child", err)
		return
	}
	writeJSON(w, http.StatusCreated, toChildDTO(child, req.Config))
}

// GetChild returns one child.
// GET /api/children/{id}
func (h *Handler) GetChild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	child, err := h.Store.GetChild(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load child", err)
		return
	}

	var config factory.ConfigJSON
	json.Unmarshal(child.Config, &config)
	writeJSON(w, http.StatusOK, toChildDTO(child, config))
}

// UpdateChild replaces a child's name and configuration.
// PUT /api/children/{id}
func (h *Handler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	cfg, err := factory.BuildConfig(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
		return
	}

	configJSON, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode configuration", err)
		return
	}

	child, err := h.Store.UpdateChild(r.Context(), id, req.Name, configJSON)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update child", err)
		return
	}

	// Push the new configuration to a live manager, if any.
	h.mu.Lock()
	if m, ok := h.managers[id]; ok {
		m.UpdateConfig(cfg)
	}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, toChildDTO(child, req.Config))
}

// DeleteChild removes a child and its manual state.
// DELETE /api/children/{id}
func (h *Handler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteChild(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete child", err)
		return
	}
	h.dropManager(id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE
// =============================================================================

// GetSchedule computes and returns the full schedule for a child.
// GET /api/children/{id}/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.manager(r, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load child", err)
		return
	}

	now := h.Now()
	computation, err := m.Compute(r.Context(), now)
	if errors.Is(err, engine.ErrComputationFailed) {
		writeError(w, http.StatusBadGateway, "Schedule computation failed", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Schedule computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(id, now, computation))
}

// =============================================================================
// MANUAL WINDOWS
// =============================================================================

// ListManualWindows returns a child's manual windows.
// GET /api/children/{id}/manual-windows
func (h *Handler) ListManualWindows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetChild(r.Context(), id); errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}

	windows, err := h.Store.ListManualWindows(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list manual windows", err)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

// SetManualWindows replaces a child's manual windows.
// PUT /api/children/{id}/manual-windows
func (h *Handler) SetManualWindows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetManualWindowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	windows := make([]sqlite.ManualWindow, 0, len(req.Windows))
	for i, w2 := range req.Windows {
		start, err := time.Parse(time.RFC3339, w2.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid window start", err)
			return
		}
		end, err := time.Parse(time.RFC3339, w2.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid window end", err)
			return
		}
		if !end.After(start) {
			writeError(w, http.StatusBadRequest, "Window end must be after start", errIndex(i))
			return
		}
		windows = append(windows, sqlite.ManualWindow{Start: start, End: end, Label: w2.Label})
	}

	m, err := h.manager(r, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load child", err)
		return
	}

	stored, err := h.Store.ReplaceManualWindows(r.Context(), id, windows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store manual windows", err)
		return
	}
	m.SetManualWindows(toManualRanges(stored))

	writeJSON(w, http.StatusOK, stored)
}

// =============================================================================
// OVERRIDE
// =============================================================================

// SetOverride forces the presence state for a child.
// POST /api/children/{id}/override
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var state engine.PresenceState
	switch req.State {
	case string(engine.StatePresent):
		state = engine.StatePresent
	case string(engine.StateAbsent):
		state = engine.StateAbsent
	default:
		writeError(w, http.StatusBadRequest, "State must be \"present\" or \"absent\"", nil)
		return
	}

	var duration *time.Duration
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			writeError(w, http.StatusBadRequest, "Duration must be positive", nil)
			return
		}
		d := time.Duration(*req.DurationMinutes * float64(time.Minute))
		duration = &d
	}

	m, err := h.manager(r, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load child", err)
		return
	}

	now := h.Now()
	m.Override(now, state, duration)

	stored := sqlite.Override{ChildID: id, State: string(state)}
	if duration != nil {
		until := now.Add(*duration)
		stored.Until = &until
	}
	if err := h.Store.SetOverride(r.Context(), stored); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store override", err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// ClearOverride removes the forced presence state.
// DELETE /api/children/{id}/override
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.manager(r, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Child not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load child", err)
		return
	}

	m.ClearOverride()
	if err := h.Store.ClearOverride(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear override", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR
// =============================================================================

// ListHolidays returns the raw school calendar for a zone and year.
// GET /api/holidays?zone=C&year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	zone := r.URL.Query().Get("zone")
	if zone == "" {
		writeError(w, http.StatusBadRequest, "Query parameter zone is required", nil)
		return
	}
	year := h.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	holidays, err := h.Holidays.ListHolidays(r.Context(), zone, year)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch school holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = HolidayDTO{
			Name:  holiday.Name,
			Zone:  holiday.Zone,
			Start: holiday.Start.Format(time.RFC3339),
			End:   holiday.End.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Refresh drops the holiday cache so the next computation refetches.
// POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if clearer, ok := h.Holidays.(interface{ Clear() }); ok {
		clearer.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toManualRanges(windows []sqlite.ManualWindow) []engine.ManualRange {
	ranges := make([]engine.ManualRange, len(windows))
	for i, w := range windows {
		ranges[i] = engine.ManualRange{Start: w.Start, End: w.End, Label: w.Label}
	}
	return ranges
}

// restoreOverride pushes a persisted override into a freshly built manager,
// preserving its original expiry. Expired overrides are not restored.
func restoreOverride(m *engine.Manager, o sqlite.Override, now time.Time) {
	state := engine.PresenceState(o.State)
	if state != engine.StatePresent && state != engine.StateAbsent {
		return
	}
	if o.Until == nil {
		m.Override(now, state, nil)
		return
	}
	remaining := o.Until.Sub(now)
	if remaining <= 0 {
		return
	}
	m.Override(now, state, &remaining)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

type errIndex int

func (e errIndex) Error() string {
	return "window " + strconv.Itoa(int(e))
}
