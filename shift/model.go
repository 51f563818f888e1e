/*
Package shift resolves shift policies into expected schedules and pay treatment.

PURPOSE:
  A ShiftPolicy describes how one group of employees works: a fixed daily
  window, or a rotation through a repeating cycle of work combinations and
  days off. A ShiftAssignment attaches a policy to an employee from an
  anchor date. Given both and a calendar date, the engine answers "what was
  this person expected to work that day, and how is it paid?"

KEY CONCEPTS IN THIS FILE (model.go):
  - Slot: named time-of-day interval, may cross midnight
  - SequenceStep: one day of a cycle, OFF or a combination of slots
  - RotationPattern: slots + the ordered cycle of steps
  - ShiftPolicy: tagged by Type (fixed | rotational)
  - ShiftAssignment: employee -> policy from StartDate, open while EndDate is nil
  - ResolvedDay: derived, never persisted by this package

DATA FLOW:
  Timeline (which policy?) -> ResolveStep (which cycle position?)
    -> Project (which window?) -> HolidayEvaluator (paid holiday?)
    -> Overtime (late/early/overtime against clock events)

  Validate gates every policy before it reaches a Timeline.

IMMUTABILITY:
  Policies are read-only snapshots. Nothing in this package mutates a
  policy or its RotationPattern; stores Clone on the way in and out so a
  caller editing its copy can never be observed mid-edit.

SEE ALSO:
  - validate.go: Policy validation (every violation, not the first)
  - engine.go: Resolve / Validate / Overtime facade
  - factory/: JSON representation
*/
package shift

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PolicyID string
type AssignmentID string

// =============================================================================
// SLOT
// =============================================================================

// Slot is a named wall-clock interval. End <= Start means the slot runs past
// midnight into the next day.
type Slot struct {
	Label string
	Start ClockTime
	End   ClockTime
}

// Wraps reports whether the slot crosses midnight.
func (s Slot) Wraps() bool { return s.End <= s.Start }

// Minutes is the wrap-adjusted length of the slot.
func (s Slot) Minutes() int { return spanMinutes(s.Start, s.End) }

// =============================================================================
// SEQUENCE STEP
// =============================================================================

// SequenceStep is one position of a rotation cycle.
//
// Hours and DayOffset are derived from the referenced slots (see DeriveStep).
// Values read back from storage are re-checked by Validate and by the
// projector; they are never trusted on their own.
type SequenceStep struct {
	Off       bool
	Labels    []string
	Hours     decimal.Decimal
	DayOffset int
}

// OffStep is the day-off position.
func OffStep() SequenceStep { return SequenceStep{Off: true} }

// IsWork reports whether the step schedules any work.
func (s SequenceStep) IsWork() bool { return !s.Off }

// String renders the step as "OFF" or "B+C".
func (s SequenceStep) String() string {
	if s.Off {
		return "OFF"
	}
	out := ""
	for i, l := range s.Labels {
		if i > 0 {
			out += "+"
		}
		out += l
	}
	return out
}

// =============================================================================
// ROTATION PATTERN
// =============================================================================

// RotationPattern is the slot catalogue and the repeating cycle.
type RotationPattern struct {
	Slots    map[string]Slot
	Sequence []SequenceStep
}

// CycleLength is the number of days before the pattern repeats.
func (r RotationPattern) CycleLength() int { return len(r.Sequence) }

// Clone returns a deep copy; edits to the copy never reach r.
func (r RotationPattern) Clone() RotationPattern {
	out := RotationPattern{
		Slots:    make(map[string]Slot, len(r.Slots)),
		Sequence: make([]SequenceStep, len(r.Sequence)),
	}
	for k, v := range r.Slots {
		out.Slots[k] = v
	}
	for i, step := range r.Sequence {
		step.Labels = append([]string(nil), step.Labels...)
		out.Sequence[i] = step
	}
	return out
}

// WithStep returns a copy of r with position i replaced.
func (r RotationPattern) WithStep(i int, step SequenceStep) RotationPattern {
	out := r.Clone()
	step.Labels = append([]string(nil), step.Labels...)
	out.Sequence[i] = step
	return out
}

// SlotLabels returns the catalogue labels in sorted order.
func (r RotationPattern) SlotLabels() []string {
	labels := make([]string, 0, len(r.Slots))
	for l := range r.Slots {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// =============================================================================
// SHIFT POLICY
// =============================================================================

// ShiftType tags the policy variant.
type ShiftType string

const (
	ShiftFixed      ShiftType = "fixed"
	ShiftRotational ShiftType = "rotational"
)

// ShiftPolicy is the full rule set for one way of scheduling work.
//
// Fixed policies use StartTime/EndTime/EndDayOffset every working day.
// Rotational policies ignore those and follow Rotation, which must be
// present iff Type == ShiftRotational.
type ShiftPolicy struct {
	ID   PolicyID
	Name string
	Type ShiftType

	// Fixed window
	StartTime    ClockTime
	EndTime      ClockTime
	EndDayOffset int

	// Contractual hours per working day. For fixed policies the window may
	// be longer (unpaid break); it may never be shorter.
	ExpectedHours decimal.Decimal

	// Attendance tolerances
	GracePeriodInMinutes  int
	GracePeriodOutMinutes int
	OTThresholdMinutes    int

	// Pay multipliers, >= 1
	MultiplierNormal  decimal.Decimal
	MultiplierHoliday decimal.Decimal

	// Weekly holidays and their pay eligibility
	HolidayWeekdays                 []time.Weekday
	IsHolidayPaid                   bool
	MinAttendanceDaysForPaidHoliday int

	// Spread one holiday-pay unit across the cycle's work steps instead of
	// paying a fixed weekday. Mutually exclusive with HolidayWeekdays.
	DistributeHolidayBonus bool

	Rotation *RotationPattern
}

// IsRotational reports whether the policy follows a rotation cycle.
func (p ShiftPolicy) IsRotational() bool { return p.Type == ShiftRotational }

// Clone returns a deep copy of the policy.
func (p ShiftPolicy) Clone() ShiftPolicy {
	out := p
	out.HolidayWeekdays = append([]time.Weekday(nil), p.HolidayWeekdays...)
	if p.Rotation != nil {
		r := p.Rotation.Clone()
		out.Rotation = &r
	}
	return out
}

// PayRules extracts the attendance/pay tolerances carried on every resolved day.
func (p ShiftPolicy) PayRules() PayRules {
	return PayRules{
		GracePeriodInMinutes:  p.GracePeriodInMinutes,
		GracePeriodOutMinutes: p.GracePeriodOutMinutes,
		OTThresholdMinutes:    p.OTThresholdMinutes,
		MultiplierNormal:      p.MultiplierNormal,
		MultiplierHoliday:     p.MultiplierHoliday,
	}
}

// =============================================================================
// SHIFT ASSIGNMENT
// =============================================================================

// ShiftAssignment attaches a policy to an employee from StartDate (the
// rotation anchor) through EndDate, inclusive. EndDate nil = still open.
type ShiftAssignment struct {
	ID         AssignmentID
	EmployeeID EmployeeID
	PolicyID   PolicyID
	StartDate  Date
	EndDate    *Date
}

// IsOpen reports whether the assignment has no end date.
func (a ShiftAssignment) IsOpen() bool { return a.EndDate == nil }

// Covers reports whether d falls within [StartDate, EndDate].
func (a ShiftAssignment) Covers(d Date) bool {
	if d.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || d.BeforeOrEqual(*a.EndDate)
}

// =============================================================================
// RESOLVED DAY - Output only
// =============================================================================

// Window is a contiguous work interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration is End - Start.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Minutes is the window length in whole minutes.
func (w Window) Minutes() int { return int(w.Duration() / time.Minute) }

// PayRules is the slice of a policy the overtime calculator needs.
type PayRules struct {
	GracePeriodInMinutes  int
	GracePeriodOutMinutes int
	OTThresholdMinutes    int
	MultiplierNormal      decimal.Decimal
	MultiplierHoliday     decimal.Decimal
}

// ResolvedDay is the expected schedule and pay treatment for one employee
// on one date.
type ResolvedDay struct {
	EmployeeID EmployeeID
	PolicyID   PolicyID
	Date       Date

	IsWorking bool
	Window    *Window

	// ExpectedHours is the window span; ContractHours is what the policy pays
	// for (step hours, or the fixed policy's ExpectedHours).
	ExpectedHours decimal.Decimal
	ContractHours decimal.Decimal

	IsHoliday       bool
	IsPaidHoliday   bool
	HolidayPayShare decimal.Decimal

	// StepIndex is -1 for fixed policies.
	StepIndex int
	Step      *SequenceStep

	Pay PayRules
}

// ExpectedMinutes is the window length, 0 when not working.
func (d ResolvedDay) ExpectedMinutes() int {
	if d.Window == nil {
		return 0
	}
	return d.Window.Minutes()
}
