/*
engine.go - Resolve / Validate / Overtime facade

PURPOSE:
  Wires the pieces into the three calls collaborators use:

    engine.Resolve(ctx, employee, date)  -> ResolvedDay | error
    shift.Validate(policy)               -> []Violation
    shift.Overtime(day, in, out)         -> OvertimeResult

RESOLVE FLOW:
  1. AssignmentSource  -> Timeline.AssignmentFor(date)   (UnassignedError)
  2. PolicySource      -> policy snapshot               (ErrPolicyNotFound)
  3. Project(policy, anchor, date)                      (PreAssignmentError, StepDriftError)
  4. HolidayEvaluator (only on weekly holidays)          (attendance lookup)

  The engine holds no mutable state besides the optional Memo; all
  collaborators are read-only from its point of view.

EXAMPLE:
  engine := shift.NewEngine(store, store)
  engine.Attendance = store
  day, err := engine.Resolve(ctx, "emp-1", shift.MustParseDate("2024-01-02"))
*/
package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PolicySource supplies validated policy snapshots.
type PolicySource interface {
	// Policy returns ErrPolicyNotFound (possibly wrapped) for unknown ids.
	Policy(ctx context.Context, id PolicyID) (ShiftPolicy, error)
}

// AssignmentSource supplies an employee's assignment history.
type AssignmentSource interface {
	AssignmentsFor(ctx context.Context, employee EmployeeID) ([]ShiftAssignment, error)
}

// Engine resolves schedules for employees.
type Engine struct {
	Policies    PolicySource
	Assignments AssignmentSource

	// Attendance backs paid-holiday eligibility. Optional when no policy
	// requires a minimum attendance.
	Attendance AttendanceCounter

	// Location places wall-clock schedule times on the timeline.
	Location *time.Location

	// Memo, when set, shares projections across employees on the same
	// policy and phase.
	Memo *Memo

	// Workers bounds fan-out in ResolveBatch / ResolveRange.
	Workers int

	Logger zerolog.Logger
}

// NewEngine creates an engine with UTC schedules, no memo and a silent logger.
func NewEngine(policies PolicySource, assignments AssignmentSource) *Engine {
	return &Engine{
		Policies:    policies,
		Assignments: assignments,
		Location:    time.UTC,
		Workers:     4,
		Logger:      zerolog.Nop(),
	}
}

// Validate is the policy gate; see Validate.
func (e *Engine) Validate(p ShiftPolicy) []Violation {
	return Validate(p)
}

// Overtime is the pay calculator; see Overtime.
func (e *Engine) Overtime(day ResolvedDay, in, out time.Time) (OvertimeResult, error) {
	return Overtime(day, in, out)
}

// Resolve returns the expected schedule and pay treatment of employee on d.
func (e *Engine) Resolve(ctx context.Context, employee EmployeeID, d Date) (ResolvedDay, error) {
	day, policy, err := e.schedule(ctx, employee, d)
	if err != nil {
		return ResolvedDay{}, err
	}
	if !day.IsHoliday {
		return day, nil
	}
	paid, err := HolidayEvaluator{Attendance: e.Attendance}.Evaluate(ctx, policy, employee, d)
	if err != nil {
		return ResolvedDay{}, err
	}
	day.IsPaidHoliday = paid
	return day, nil
}

// Schedule resolves the expected schedule without evaluating holiday pay.
// ScheduledAttendance uses it to avoid recursing into eligibility.
func (e *Engine) Schedule(ctx context.Context, employee EmployeeID, d Date) (ResolvedDay, error) {
	day, _, err := e.schedule(ctx, employee, d)
	return day, err
}

// PolicyFor returns the policy in force for employee on d.
func (e *Engine) PolicyFor(ctx context.Context, employee EmployeeID, d Date) (ShiftPolicy, ShiftAssignment, error) {
	assignments, err := e.Assignments.AssignmentsFor(ctx, employee)
	if err != nil {
		return ShiftPolicy{}, ShiftAssignment{}, fmt.Errorf("load assignments for %s: %w", employee, err)
	}
	a, err := NewTimeline(employee, assignments).AssignmentFor(d)
	if err != nil {
		return ShiftPolicy{}, ShiftAssignment{}, err
	}
	p, err := e.Policies.Policy(ctx, a.PolicyID)
	if err != nil {
		return ShiftPolicy{}, ShiftAssignment{}, fmt.Errorf("load policy %q: %w", a.PolicyID, err)
	}
	return p, a, nil
}

func (e *Engine) schedule(ctx context.Context, employee EmployeeID, d Date) (ResolvedDay, ShiftPolicy, error) {
	p, a, err := e.PolicyFor(ctx, employee, d)
	if err != nil {
		return ResolvedDay{}, ShiftPolicy{}, err
	}
	day, err := e.Memo.project(p, a.StartDate, d, e.project)
	if err != nil {
		var drift *StepDriftError
		if errors.As(err, &drift) {
			e.Logger.Warn().
				Str("policy_id", string(drift.PolicyID)).
				Int("step", drift.StepIndex).
				Int("stored_offset", drift.Stored).
				Int("derived_offset", drift.Derived).
				Msg("stored day offset disagrees with slot layout")
		}
		return ResolvedDay{}, ShiftPolicy{}, err
	}
	day.EmployeeID = employee
	return day, p, nil
}

func (e *Engine) project(p ShiftPolicy, anchor, d Date) (ResolvedDay, error) {
	return Project(p, anchor, d, e.Location)
}
