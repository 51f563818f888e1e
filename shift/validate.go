package shift

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY VALIDATOR
// =============================================================================
//
// Validate runs every check and returns all violations together so a form
// can highlight every bad field at once. It is pure: no I/O, no mutation.
// A policy must validate before it is stored or attached to an assignment;
// after that the engine treats its fields as trusted, except the derived
// step values, which the projector re-checks.

// Violation codes.
const (
	CodeRequired    = "required"
	CodeInvalid     = "invalid"
	CodeOutOfRange  = "out_of_range"
	CodeTimeOrder   = "time_order"
	CodeUnknownSlot = "unknown_slot"
	CodeMismatch    = "derived_mismatch"
	CodeConflict    = "conflict"
	CodeDuplicate   = "duplicate"
	CodeEmptyCycle  = "empty_sequence"
)

var one = decimal.NewFromInt(1)

// Validate checks a candidate policy. An empty result means the policy is valid.
func Validate(p ShiftPolicy) []Violation {
	v := &violations{}

	if p.ID == "" {
		v.add("id", CodeRequired, "id is required")
	}
	if p.Name == "" {
		v.add("name", CodeRequired, "name is required")
	}
	if !p.ExpectedHours.IsPositive() {
		v.add("expected_hours", CodeOutOfRange, "expected_hours must be greater than 0")
	}

	switch p.Type {
	case ShiftFixed:
		validateFixed(p, v)
	case ShiftRotational:
		validateRotational(p, v)
	case "":
		v.add("shift_type", CodeRequired, "shift_type is required")
	default:
		v.add("shift_type", CodeInvalid, fmt.Sprintf("unknown shift_type %q", p.Type))
	}

	validatePay(p, v)
	validateHolidays(p, v)
	return v.list
}

// MustBeValid returns a *ValidationError when p has any violation.
func MustBeValid(p ShiftPolicy) error {
	if list := Validate(p); len(list) > 0 {
		return &ValidationError{PolicyID: p.ID, Violations: list}
	}
	return nil
}

func validateFixed(p ShiftPolicy, v *violations) {
	if !p.StartTime.Valid() {
		v.add("start_time", CodeInvalid, "start_time must be within 00:00-23:59")
	}
	if !p.EndTime.Valid() {
		v.add("end_time", CodeInvalid, "end_time must be within 00:00-23:59")
	}
	if p.EndDayOffset < 0 {
		v.add("end_day_offset", CodeOutOfRange, "end_day_offset cannot be negative")
	}
	if p.EndDayOffset == 0 && p.EndTime <= p.StartTime {
		v.add("end_time", CodeTimeOrder, "end_time must be after start_time unless end_day_offset > 0")
	}
	if p.Rotation != nil {
		v.add("rotation", CodeConflict, "fixed policies cannot carry a rotation")
	}

	span := p.EndDayOffset*MinutesPerDay + int(p.EndTime) - int(p.StartTime)
	if span > 0 && p.ExpectedHours.GreaterThan(minutesToHours(span)) {
		v.add("expected_hours", CodeOutOfRange,
			fmt.Sprintf("expected_hours %s exceeds the %s hour window", p.ExpectedHours, minutesToHours(span).StringFixed(2)))
	}
}

func validateRotational(p ShiftPolicy, v *violations) {
	if p.Rotation == nil {
		v.add("rotation", CodeRequired, "rotational policies need a rotation pattern")
		return
	}
	r := p.Rotation

	for _, key := range r.SlotLabels() {
		slot := r.Slots[key]
		field := fmt.Sprintf("rotation.slots[%s]", key)
		if slot.Label != key {
			v.add(field+".label", CodeMismatch, fmt.Sprintf("slot keyed %q is labelled %q", key, slot.Label))
		}
		if !slot.Start.Valid() || !slot.End.Valid() {
			v.add(field, CodeInvalid, "slot times must be within 00:00-23:59")
		}
	}

	if len(r.Sequence) == 0 {
		v.add("rotation.sequence", CodeEmptyCycle, "sequence must contain at least one step")
		return
	}

	cycle := len(r.Sequence)
	for i, step := range r.Sequence {
		field := fmt.Sprintf("rotation.sequence[%d]", i)
		if step.Off {
			if len(step.Labels) > 0 {
				v.add(field+".labels", CodeConflict, "OFF step cannot reference slots")
			}
			continue
		}
		if len(step.Labels) == 0 {
			v.add(field+".labels", CodeRequired, "work step needs at least one slot label")
			continue
		}
		slots, missing := lookupSlots(r.Slots, step.Labels)
		for _, l := range missing {
			v.add(field+".labels", CodeUnknownSlot, fmt.Sprintf("slot %q is not defined", l))
		}
		if len(missing) > 0 {
			continue
		}

		walk := walkSlots(slots)
		derived := minutesToHours(walk.minutes)
		if !hoursEqual(step.Hours, derived) {
			v.add(field+".hours", CodeMismatch,
				fmt.Sprintf("hours %s do not match slot total %s", step.Hours, derived.StringFixed(2)))
		}
		if step.DayOffset != walk.dayOffset {
			v.add(field+".day_offset", CodeMismatch,
				fmt.Sprintf("day_offset %d does not match slot layout %d", step.DayOffset, walk.dayOffset))
		}
		if walk.dayOffset >= cycle {
			v.add(field+".day_offset", CodeOutOfRange,
				fmt.Sprintf("step spans %d extra days but the cycle is %d days long", walk.dayOffset, cycle))
		}
	}
}

func validatePay(p ShiftPolicy, v *violations) {
	if p.MultiplierNormal.LessThan(one) {
		v.add("multiplier_normal", CodeOutOfRange, "multiplier_normal must be at least 1.0")
	}
	if p.MultiplierHoliday.LessThan(one) {
		v.add("multiplier_holiday", CodeOutOfRange, "multiplier_holiday must be at least 1.0")
	}
	if p.GracePeriodInMinutes < 0 {
		v.add("grace_period_in_minutes", CodeOutOfRange, "grace_period_in_minutes cannot be negative")
	}
	if p.GracePeriodOutMinutes < 0 {
		v.add("grace_period_out_minutes", CodeOutOfRange, "grace_period_out_minutes cannot be negative")
	}
	if p.OTThresholdMinutes < 0 {
		v.add("ot_threshold_minutes", CodeOutOfRange, "ot_threshold_minutes cannot be negative")
	}
}

func validateHolidays(p ShiftPolicy, v *violations) {
	seen := make(map[time.Weekday]bool)
	for i, wd := range p.HolidayWeekdays {
		field := fmt.Sprintf("holiday_weekdays[%d]", i)
		if wd < time.Sunday || wd > time.Saturday {
			v.add(field, CodeInvalid, fmt.Sprintf("%d is not a weekday", wd))
			continue
		}
		if seen[wd] {
			v.add(field, CodeDuplicate, fmt.Sprintf("%s listed twice", wd))
		}
		seen[wd] = true
	}

	if p.MinAttendanceDaysForPaidHoliday < 0 || p.MinAttendanceDaysForPaidHoliday > EligibilityWindowDays {
		v.add("min_attendance_days_for_paid_holiday", CodeOutOfRange,
			fmt.Sprintf("must be between 0 and %d", EligibilityWindowDays))
	}

	if !p.DistributeHolidayBonus {
		return
	}
	if p.Type != ShiftRotational {
		v.add("distribute_holiday_bonus", CodeConflict, "holiday distribution requires a rotational policy")
	}
	if len(p.HolidayWeekdays) > 0 {
		v.add("distribute_holiday_bonus", CodeConflict, "holiday distribution and weekly holidays are mutually exclusive")
	}
	if p.Rotation != nil && len(p.Rotation.Sequence) > 0 && !hasWorkStep(p.Rotation.Sequence) {
		v.add("distribute_holiday_bonus", CodeConflict, "holiday distribution needs at least one work step")
	}
}

func hasWorkStep(seq []SequenceStep) bool {
	for _, s := range seq {
		if !s.Off {
			return true
		}
	}
	return false
}

type violations struct {
	list []Violation
}

func (v *violations) add(field, code, msg string) {
	v.list = append(v.list, Violation{Field: field, Code: code, Message: msg})
}
