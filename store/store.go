/*
Package store defines persistence for policies, assignments and clock
records, with an in-memory implementation for tests and development.
store/sqlite provides the durable one.

INTERFACES:
  Store embeds the engine's read-side collaborators (shift.PolicySource,
  shift.AssignmentSource, shift.PresenceLog) plus the write operations the
  API needs. Both implementations also satisfy shift.AttendanceCounter by
  counting distinct clock-in dates.

ASSIGNMENTS:
  Assign is the only way to change an employee's timeline. It plans the
  change with shift.Timeline and applies the close-then-open pair
  atomically: either both rows change or neither does.

POLICIES:
  SavePolicy rejects invalid policies (shift.MustBeValid) and stores a
  clone, so callers cannot mutate a stored rotation through a shared map.
*/
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/shift-engine/shift"
)

// Store is the full persistence surface used by the API.
type Store interface {
	shift.PolicySource
	shift.AssignmentSource
	shift.PresenceLog
	shift.AttendanceCounter

	SavePolicy(ctx context.Context, p shift.ShiftPolicy) error
	ListPolicies(ctx context.Context) ([]shift.ShiftPolicy, error)

	Assign(ctx context.Context, a shift.ShiftAssignment) (shift.AssignmentChange, error)
	// Employees lists every employee with at least one assignment.
	Employees(ctx context.Context) ([]shift.EmployeeID, error)

	RecordClock(ctx context.Context, r ClockRecord) (ClockRecord, error)
	ClockRecords(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) ([]ClockRecord, error)

	// Reset clears all data (for testing/demo).
	Reset(ctx context.Context) error
}

// ClockRecord is one clock-in/clock-out pair. Date is the schedule date
// the pair belongs to, which for night work is the day the shift started.
type ClockRecord struct {
	ID         string
	EmployeeID shift.EmployeeID
	Date       shift.Date
	In         time.Time
	Out        time.Time
}

// PrepareClock checks a record and fills in its ID.
func PrepareClock(r ClockRecord) (ClockRecord, error) {
	if r.EmployeeID == "" {
		return ClockRecord{}, fmt.Errorf("%w: employee_id is required", shift.ErrInvalidClockRange)
	}
	if r.Out.Before(r.In) {
		return ClockRecord{}, shift.ErrInvalidClockRange
	}
	if r.Date.IsZero() {
		r.Date = shift.DateOf(r.In)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}

// PrepareAssignment fills in a missing assignment ID.
func PrepareAssignment(a shift.ShiftAssignment) shift.ShiftAssignment {
	if a.ID == "" {
		a.ID = shift.AssignmentID(uuid.NewString())
	}
	return a
}
