/*
handlers.go - HTTP API handlers for the shift engine

PURPOSE:
  Exposes policy management, assignment history, schedule resolution,
  clock records and overtime via REST. Handles HTTP request/response and
  JSON serialization, and delegates to the shift engine.

ENDPOINTS:
  Policies:
    GET    /api/policies                          List policies
    POST   /api/policies                          Create or replace a policy
    POST   /api/policies/validate                 Dry-run validation
    GET    /api/policies/{id}                     Get one policy
    GET    /api/policies/{id}/holiday-shares      Holiday pay per work step

  Employees:
    GET    /api/employees                         Employees with assignments
    GET    /api/employees/{id}/assignments        Assignment history
    POST   /api/employees/{id}/assignments        Assign a policy
    GET    /api/employees/{id}/schedule           Resolved days (?from&to)
    GET    /api/employees/{id}/schedule/{date}    One resolved day
    GET    /api/employees/{id}/clock              Clock records (?from&to)
    POST   /api/employees/{id}/clock              Record a clock pair
    GET    /api/employees/{id}/attendance         Present days (?from&to)
    GET    /api/employees/{id}/overtime           Overtime from records (?date)
    POST   /api/employees/{id}/overtime           Overtime for ad-hoc times

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input, invalid period or clock range
  - 404: Unknown policy, or no schedule on the date
  - 409: Assignment overlaps an existing period
  - 422: Policy violations (every violation is listed)
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
)

// DefaultMaxRangeDays caps schedule and clock range queries.
const DefaultMaxRangeDays = 366

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.Store
	Engine  *shift.Engine
	Factory *factory.PolicyFactory
	Logger  zerolog.Logger

	MaxRangeDays int

	// Now anchors demo scenarios.
	Now func() time.Time

	validate *validator.Validate

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler serving st through engine.
func NewHandler(st store.Store, engine *shift.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:        st,
		Engine:       engine,
		Factory:      factory.NewPolicyFactory(),
		Logger:       logger,
		MaxRangeDays: DefaultMaxRangeDays,
		Now:          time.Now,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewEngine wires an engine to st. Paid-holiday attendance counts only
// scheduled working days the employee clocked in on.
func NewEngine(st store.Store, loc *time.Location, workers, memoLimit int, logger zerolog.Logger) *shift.Engine {
	engine := shift.NewEngine(st, st)
	if loc != nil {
		engine.Location = loc
	}
	if workers > 0 {
		engine.Workers = workers
	}
	if memoLimit > 0 {
		engine.Memo = shift.NewMemo(memoLimit)
	}
	engine.Logger = logger
	engine.Attendance = shift.ScheduledAttendance{Schedules: engine, Presence: st}
	return engine
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns all policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list policies", err)
		return
	}

	dtos := make([]factory.PolicyJSON, 0, len(policies))
	for _, p := range policies {
		dtos = append(dtos, h.Factory.ToJSON(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy validates and stores a policy. A policy with an existing id
// replaces it; cached projections of that policy are dropped.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, violations := h.Factory.FromJSON(req)
	if len(violations) > 0 {
		writeViolations(w, violations)
		return
	}

	if err := h.Store.SavePolicy(r.Context(), policy); err != nil {
		h.writeDomainError(w, r, "Failed to save policy", err)
		return
	}
	if h.Engine.Memo != nil {
		h.Engine.Memo.Invalidate(policy.ID)
	}

	h.Logger.Info().Str("policy_id", string(policy.ID)).Str("shift_type", string(policy.Type)).Msg("policy saved")
	writeJSON(w, http.StatusCreated, h.Factory.ToJSON(policy))
}

// ValidatePolicy reports every violation without storing anything.
func (h *Handler) ValidatePolicy(w http.ResponseWriter, r *http.Request) {
	var req factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	_, violations := h.Factory.FromJSON(req)
	if violations == nil {
		violations = []shift.Violation{}
	}
	writeJSON(w, http.StatusOK, ValidationResultDTO{Valid: len(violations) == 0, Violations: violations})
}

// GetPolicy returns a single policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := shift.PolicyID(chi.URLParam(r, "id"))

	policy, err := h.Store.Policy(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(policy))
}

// GetHolidayShares returns how one holiday-pay unit is spread over the
// rotation's work steps. Empty when distribution is disabled.
func (h *Handler) GetHolidayShares(w http.ResponseWriter, r *http.Request) {
	id := shift.PolicyID(chi.URLParam(r, "id"))

	policy, err := h.Store.Policy(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get policy", err)
		return
	}

	shares := shift.HolidayPayShares(policy)
	dtos := make([]HolidayShareDTO, 0, len(shares))
	for _, s := range shares {
		dtos = append(dtos, HolidayShareDTO{
			StepIndex: s.StepIndex,
			Step:      policy.Rotation.Sequence[s.StepIndex].String(),
			Share:     s.Share,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// ListEmployees returns every employee with at least one assignment.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list employees", err)
		return
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, string(e))
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetAssignments returns an employee's assignment history, oldest first.
func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	assignments, err := h.Store.AssignmentsFor(r.Context(), employee)
	if err != nil {
		h.internalError(w, r, "Failed to get assignments", err)
		return
	}

	timeline := shift.NewTimeline(employee, assignments)
	dtos := make([]factory.AssignmentJSON, 0, len(assignments))
	for _, a := range timeline.Assignments() {
		dtos = append(dtos, h.Factory.AssignmentToJSON(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment assigns a policy from start_date. An open assignment
// starting earlier is closed the day before; anything else that overlaps
// is rejected.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	employee := chi.URLParam(r, "id")

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment", err)
		return
	}

	a, err := h.Factory.AssignmentFromJSON(factory.AssignmentJSON{
		ID:         req.ID,
		EmployeeID: employee,
		PolicyID:   req.PolicyID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment", err)
		return
	}

	change, err := h.Store.Assign(r.Context(), a)
	if err != nil {
		h.writeDomainError(w, r, "Failed to assign policy", err)
		return
	}

	resp := AssignmentChangeDTO{Opened: h.Factory.AssignmentToJSON(change.Opened)}
	if change.Closed != nil {
		closed := h.Factory.AssignmentToJSON(*change.Closed)
		resp.Closed = &closed
	}

	h.Logger.Info().
		Str("employee_id", employee).
		Str("policy_id", req.PolicyID).
		Str("start_date", req.StartDate).
		Bool("closed_previous", change.Closed != nil).
		Msg("policy assigned")
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule resolves every scheduled day in [from, to]. Days without a
// schedule are omitted.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	from, to, err := h.parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	days, err := h.Engine.ResolveRange(r.Context(), employee, from, to)
	if err != nil {
		h.writeDomainError(w, r, "Failed to resolve schedule", err)
		return
	}

	resp := ScheduleResponse{
		EmployeeID: string(employee),
		From:       from.String(),
		To:         to.String(),
		Days:       make([]ResolvedDayDTO, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, toResolvedDayDTO(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetScheduleDay resolves one date.
func (h *Handler) GetScheduleDay(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	d, err := shift.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	day, err := h.Engine.Resolve(r.Context(), employee, d)
	if err != nil {
		h.writeDomainError(w, r, "Failed to resolve schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toResolvedDayDTO(day))
}

// =============================================================================
// CLOCK & OVERTIME HANDLERS
// =============================================================================

// RecordClock stores one clock-in/clock-out pair.
func (h *Handler) RecordClock(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock record", err)
		return
	}

	rec := store.ClockRecord{EmployeeID: employee, In: req.In, Out: req.Out}
	if req.Date != "" {
		d, err := shift.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		rec.Date = d
	} else {
		rec.Date = shift.DateOf(req.In.In(h.Engine.Location))
	}

	saved, err := h.Store.RecordClock(r.Context(), rec)
	if err != nil {
		h.writeDomainError(w, r, "Failed to record clock", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClockRecordDTO(saved))
}

// GetClockRecords lists clock records in [from, to] by schedule date.
func (h *Handler) GetClockRecords(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	from, to, err := h.parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	records, err := h.Store.ClockRecords(r.Context(), employee, from, to)
	if err != nil {
		h.internalError(w, r, "Failed to list clock records", err)
		return
	}

	dtos := make([]ClockRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toClockRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAttendance counts scheduled working days attended in [from, to].
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	from, to, err := h.parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	n, err := h.Engine.Attendance.CountPresentDays(r.Context(), employee, from, to)
	if err != nil {
		h.writeDomainError(w, r, "Failed to count attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, AttendanceDTO{
		EmployeeID:  string(employee),
		From:        from.String(),
		To:          to.String(),
		PresentDays: n,
	})
}

// GetOvertime computes overtime for ?date from the stored clock records of
// that schedule date: earliest clock-in to latest clock-out.
func (h *Handler) GetOvertime(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	d, err := shift.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	records, err := h.Store.ClockRecords(r.Context(), employee, d, d)
	if err != nil {
		h.internalError(w, r, "Failed to list clock records", err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "No clock records on date", nil)
		return
	}

	in, out := records[0].In, records[0].Out
	for _, rec := range records[1:] {
		if rec.In.Before(in) {
			in = rec.In
		}
		if rec.Out.After(out) {
			out = rec.Out
		}
	}
	h.writeOvertime(w, r, employee, d, in, out)
}

// ComputeOvertime computes overtime for clock instants supplied in the body.
func (h *Handler) ComputeOvertime(w http.ResponseWriter, r *http.Request) {
	employee := shift.EmployeeID(chi.URLParam(r, "id"))

	var req OvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid overtime request", err)
		return
	}

	d, err := shift.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	h.writeOvertime(w, r, employee, d, req.In, req.Out)
}

func (h *Handler) writeOvertime(w http.ResponseWriter, r *http.Request, employee shift.EmployeeID, d shift.Date, in, out time.Time) {
	day, err := h.Engine.Resolve(r.Context(), employee, d)
	if err != nil {
		h.writeDomainError(w, r, "Failed to resolve schedule", err)
		return
	}

	res, err := h.Engine.Overtime(day, in, out)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute overtime", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeDTO(day, res))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r); err != nil {
		h.internalError(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(r *http.Request) error {
	if err := h.Store.Reset(r.Context()); err != nil {
		return err
	}
	if h.Engine.Memo != nil {
		h.Engine.Memo.Clear()
	}
	h.setScenario("")
	return nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseRange reads ?from and ?to. to defaults to from; the span is capped
// at MaxRangeDays.
func (h *Handler) parseRange(r *http.Request) (shift.Date, shift.Date, error) {
	q := r.URL.Query()
	from, err := shift.ParseDate(q.Get("from"))
	if err != nil {
		return shift.Date{}, shift.Date{}, fmt.Errorf("from: %w", err)
	}
	to := from
	if raw := q.Get("to"); raw != "" {
		if to, err = shift.ParseDate(raw); err != nil {
			return shift.Date{}, shift.Date{}, fmt.Errorf("to: %w", err)
		}
	}
	if to.Before(from) {
		return shift.Date{}, shift.Date{}, shift.ErrInvalidPeriod
	}
	if limit := h.MaxRangeDays; limit > 0 && from.DaysUntil(to) >= limit {
		return shift.Date{}, shift.Date{}, fmt.Errorf("range exceeds %d days", limit)
	}
	return from, to, nil
}

// writeDomainError maps engine and store errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *shift.ValidationError
	switch {
	case errors.As(err, &verr):
		writeViolations(w, verr.Violations)
	case errors.Is(err, shift.ErrOverlap):
		writeError(w, http.StatusConflict, "Assignment overlaps an existing period", err)
	case shift.IsNoSchedule(err):
		writeError(w, http.StatusNotFound, "No schedule on date", err)
	case errors.Is(err, shift.ErrPolicyNotFound):
		writeError(w, http.StatusNotFound, "Policy not found", err)
	case errors.Is(err, shift.ErrInvalidPeriod), errors.Is(err, shift.ErrInvalidClockRange):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.internalError(w, r, message, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg(message)
	writeError(w, http.StatusInternalServerError, message, err)
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
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

func writeViolations(w http.ResponseWriter, violations []shift.Violation) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:      "Invalid policy configuration",
		Violations: violations,
	})
}
