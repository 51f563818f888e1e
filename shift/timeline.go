/*
timeline.go - Per-employee assignment history

PURPOSE:
  Answers "which policy applies to this employee on date D" and computes
  the effect of attaching a new policy. Periods for one employee never
  overlap; they may touch or leave gaps.

NEW ASSIGNMENTS:
  Attaching a policy from S while an open assignment exists closes the open
  one on S - 1 day. Plan computes that (close, open) pair; the store applies
  both or neither. Starting inside an already-closed period is rejected
  with OverlapError; history is never truncated implicitly.

  existing:  [Jan 1 ........ open)
  new:                 [Mar 1 ... open)
  result:    [Jan 1 .. Feb 28] [Mar 1 ... open)
*/
package shift

import (
	"sort"
)

// AssignmentChange is the atomic unit a store must apply.
type AssignmentChange struct {
	// Closed is the previously open assignment with its new EndDate, if any.
	Closed *ShiftAssignment
	Opened ShiftAssignment
}

// Timeline is one employee's assignments ordered by StartDate.
// It is a value; Apply returns a new Timeline.
type Timeline struct {
	employee    EmployeeID
	assignments []ShiftAssignment
}

// NewTimeline sorts assignments by start date. Assignments for other
// employees are ignored.
func NewTimeline(employee EmployeeID, assignments []ShiftAssignment) Timeline {
	own := make([]ShiftAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.EmployeeID == employee {
			own = append(own, a)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].StartDate.Before(own[j].StartDate)
	})
	return Timeline{employee: employee, assignments: own}
}

// Assignments returns a copy of the ordered periods.
func (t Timeline) Assignments() []ShiftAssignment {
	return append([]ShiftAssignment(nil), t.assignments...)
}

// AssignmentFor returns the assignment covering d.
func (t Timeline) AssignmentFor(d Date) (ShiftAssignment, error) {
	// greatest StartDate <= d
	i := sort.Search(len(t.assignments), func(i int) bool {
		return t.assignments[i].StartDate.After(d)
	}) - 1
	if i < 0 || !t.assignments[i].Covers(d) {
		return ShiftAssignment{}, &UnassignedError{EmployeeID: t.employee, Date: d}
	}
	return t.assignments[i], nil
}

// PolicyFor returns the policy id in force on d.
func (t Timeline) PolicyFor(d Date) (PolicyID, error) {
	a, err := t.AssignmentFor(d)
	if err != nil {
		return "", err
	}
	return a.PolicyID, nil
}

// Open returns the open assignment, if any.
func (t Timeline) Open() (ShiftAssignment, bool) {
	for i := len(t.assignments) - 1; i >= 0; i-- {
		if t.assignments[i].IsOpen() {
			return t.assignments[i], true
		}
	}
	return ShiftAssignment{}, false
}

// Plan computes the change needed to add next. It never mutates t.
func (t Timeline) Plan(next ShiftAssignment) (AssignmentChange, error) {
	next.EmployeeID = t.employee
	if next.EndDate != nil && next.EndDate.Before(next.StartDate) {
		return AssignmentChange{}, ErrInvalidPeriod
	}

	for _, existing := range t.assignments {
		if !existing.IsOpen() && existing.Covers(next.StartDate) {
			return AssignmentChange{}, t.overlap(existing, next)
		}
	}

	change := AssignmentChange{Opened: next}
	for _, existing := range t.assignments {
		if existing.IsOpen() && existing.StartDate.Before(next.StartDate) {
			closed := existing
			end := next.StartDate.AddDays(-1)
			closed.EndDate = &end
			change.Closed = &closed
			existing = closed
		}
		if intersects(existing, next) {
			return AssignmentChange{}, t.overlap(existing, next)
		}
	}
	return change, nil
}

// Apply returns a timeline with change applied.
func (t Timeline) Apply(change AssignmentChange) Timeline {
	out := make([]ShiftAssignment, 0, len(t.assignments)+1)
	for _, a := range t.assignments {
		if change.Closed != nil && a.IsOpen() && a.StartDate.Equal(change.Closed.StartDate) {
			a = *change.Closed
		}
		out = append(out, a)
	}
	out = append(out, change.Opened)
	return NewTimeline(t.employee, out)
}

func (t Timeline) overlap(existing, next ShiftAssignment) error {
	return &OverlapError{EmployeeID: t.employee, Existing: existing, Requested: next}
}

// intersects reports whether two inclusive periods share a day.
func intersects(a, b ShiftAssignment) bool {
	if a.EndDate != nil && a.EndDate.Before(b.StartDate) {
		return false
	}
	if b.EndDate != nil && b.EndDate.Before(a.StartDate) {
		return false
	}
	return true
}
