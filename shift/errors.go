/*
errors.go - Error taxonomy for the shift engine

CATEGORIES:
  ValidationError     policy structurally invalid, rejected before use
  OverlapError        assignment conflicts with an existing period
  PreAssignmentError  date precedes the assignment anchor (no schedule)
  UnassignedError     no policy covers the date (no expectation that day)

  The last two are not faults: callers treat them as "nothing expected".
  Use IsNoSchedule to branch on them.

USAGE:
  day, err := engine.Resolve(ctx, "emp-1", date)
  switch {
  case shift.IsNoSchedule(err):
      // nothing expected
  case err != nil:
      return err
  }
*/
package shift

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation = errors.New("policy validation failed")

	ErrOverlap = errors.New("assignment overlaps an existing period")

	ErrPreAssignment = errors.New("date precedes assignment start")

	ErrUnassigned = errors.New("no policy assigned on date")

	// ErrInvalidPeriod is returned when an assignment ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInconsistentPolicy is returned when stored derived values (step hours
	// or day offset) no longer match the slots they were derived from.
	ErrInconsistentPolicy = errors.New("policy derived values out of date")

	ErrInvalidClockRange = errors.New("clock-out before clock-in")

	ErrPolicyNotFound = errors.New("policy not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// Violation is one problem found in a policy. Field uses the JSON field path
// so a form can highlight it, e.g. "rotation.sequence[2].labels".
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError carries every violation found, never just the first.
type ValidationError struct {
	PolicyID   PolicyID
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("policy %q invalid: %s", e.PolicyID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OverlapError names the existing assignment a new one collides with.
type OverlapError struct {
	EmployeeID EmployeeID
	Existing   ShiftAssignment
	Requested  ShiftAssignment
}

func (e *OverlapError) Error() string {
	end := "open"
	if e.Existing.EndDate != nil {
		end = e.Existing.EndDate.String()
	}
	return fmt.Sprintf("assignment starting %s for %s overlaps existing period [%s, %s]",
		e.Requested.StartDate, e.EmployeeID, e.Existing.StartDate, end)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// PreAssignmentError is returned when resolving before the anchor date.
type PreAssignmentError struct {
	Anchor Date
	Date   Date
}

func (e *PreAssignmentError) Error() string {
	return fmt.Sprintf("date %s precedes assignment anchor %s", e.Date, e.Anchor)
}

func (e *PreAssignmentError) Unwrap() error { return ErrPreAssignment }

// UnassignedError is returned when no assignment covers the date.
type UnassignedError struct {
	EmployeeID EmployeeID
	Date       Date
}

func (e *UnassignedError) Error() string {
	return fmt.Sprintf("no shift policy assigned to %s on %s", e.EmployeeID, e.Date)
}

func (e *UnassignedError) Unwrap() error { return ErrUnassigned }

// StepDriftError reports a stored day offset that disagrees with slot math.
type StepDriftError struct {
	PolicyID  PolicyID
	StepIndex int
	Stored    int
	Derived   int
}

func (e *StepDriftError) Error() string {
	return fmt.Sprintf("policy %q step %d: stored day_offset %d, slots give %d",
		e.PolicyID, e.StepIndex, e.Stored, e.Derived)
}

func (e *StepDriftError) Unwrap() error { return ErrInconsistentPolicy }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNoSchedule reports whether err means "nothing is expected that day".
func IsNoSchedule(err error) bool {
	return errors.Is(err, ErrUnassigned) || errors.Is(err, ErrPreAssignment)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidClockRange)
}
