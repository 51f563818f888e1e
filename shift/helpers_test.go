package shift_test

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/shift"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) shift.Date { return shift.MustParseDate(s) }

func clock(s string) shift.ClockTime { return shift.MustParseClockTime(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func slot(label, start, end string) shift.Slot {
	return shift.Slot{Label: label, Start: clock(start), End: clock(end)}
}

func mustStep(slots map[string]shift.Slot, labels ...string) shift.SequenceStep {
	step, err := shift.DeriveStep(slots, labels...)
	if err != nil {
		panic(err)
	}
	return step
}

// officePolicy: 08:00-17:00, 8 paid hours, Fridays off.
func officePolicy() shift.ShiftPolicy {
	return shift.ShiftPolicy{
		ID:                              "office",
		Name:                            "Office hours",
		Type:                            shift.ShiftFixed,
		StartTime:                       clock("08:00"),
		EndTime:                         clock("17:00"),
		ExpectedHours:                   dec("8"),
		GracePeriodInMinutes:            15,
		GracePeriodOutMinutes:           15,
		OTThresholdMinutes:              30,
		MultiplierNormal:                dec("1.5"),
		MultiplierHoliday:               dec("2"),
		HolidayWeekdays:                 []time.Weekday{time.Friday},
		IsHolidayPaid:                   true,
		MinAttendanceDaysForPaidHoliday: 4,
	}
}

// threeCrewSlots: A=[08,16], B=[16,00], C=[00,08].
func threeCrewSlots() map[string]shift.Slot {
	return map[string]shift.Slot{
		"A": slot("A", "08:00", "16:00"),
		"B": slot("B", "16:00", "00:00"),
		"C": slot("C", "00:00", "08:00"),
	}
}

// threeCrewPolicy: sequence [A, B+C, OFF].
func threeCrewPolicy() shift.ShiftPolicy {
	slots := threeCrewSlots()
	return shift.ShiftPolicy{
		ID:                    "three-crew",
		Name:                  "Three crew rotation",
		Type:                  shift.ShiftRotational,
		ExpectedHours:         dec("8"),
		GracePeriodInMinutes:  10,
		GracePeriodOutMinutes: 10,
		MultiplierNormal:      dec("1.25"),
		MultiplierHoliday:     dec("2"),
		Rotation: &shift.RotationPattern{
			Slots: slots,
			Sequence: []shift.SequenceStep{
				mustStep(slots, "A"),
				mustStep(slots, "B", "C"),
				shift.OffStep(),
			},
		},
	}
}

// =============================================================================
// FAKE COLLABORATORS
// =============================================================================

type policyMap map[shift.PolicyID]shift.ShiftPolicy

func (m policyMap) Policy(_ context.Context, id shift.PolicyID) (shift.ShiftPolicy, error) {
	p, ok := m[id]
	if !ok {
		return shift.ShiftPolicy{}, fmt.Errorf("%w: %s", shift.ErrPolicyNotFound, id)
	}
	return p, nil
}

type assignmentList []shift.ShiftAssignment

func (l assignmentList) AssignmentsFor(_ context.Context, employee shift.EmployeeID) ([]shift.ShiftAssignment, error) {
	var out []shift.ShiftAssignment
	for _, a := range l {
		if a.EmployeeID == employee {
			out = append(out, a)
		}
	}
	return out, nil
}

type presenceList []shift.Date

func (p presenceList) PresentDates(_ context.Context, _ shift.EmployeeID, from, to shift.Date) ([]shift.Date, error) {
	var out []shift.Date
	for _, d := range p {
		if d.AfterOrEqual(from) && d.BeforeOrEqual(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func assignment(id, employee, policy, start string, end ...string) shift.ShiftAssignment {
	a := shift.ShiftAssignment{
		ID:         shift.AssignmentID(id),
		EmployeeID: shift.EmployeeID(employee),
		PolicyID:   shift.PolicyID(policy),
		StartDate:  date(start),
	}
	if len(end) > 0 {
		e := date(end[0])
		a.EndDate = &e
	}
	return a
}

func fields(vs []shift.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Field
	}
	return out
}
