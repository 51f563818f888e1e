/*
Package factory provides JSON to Go shift policy conversion.

PURPOSE:
  Converts JSON policy definitions into shift.ShiftPolicy values and back.
  Scheduling teams edit policies as JSON (admin UI, files in version
  control, rows in the policies table); the factory turns them into the
  structs the engine resolves against.

JSON SCHEMA (fixed):
  {
    "id": "office",
    "name": "Office hours",
    "shift_type": "fixed",
    "start_time": "08:00",
    "end_time": "17:00",
    "expected_hours": 8,
    "grace_period_in_minutes": 15,
    "grace_period_out_minutes": 15,
    "ot_threshold_minutes": 30,
    "multiplier_normal": 1.5,
    "multiplier_holiday": 2,
    "holiday_weekdays": ["friday"],
    "is_holiday_paid": true,
    "min_attendance_days_for_paid_holiday": 4
  }

JSON SCHEMA (rotational):
  {
    "id": "three-crew",
    "shift_type": "rotational",
    ...
    "rotation": {
      "slots": [
        {"label": "A", "start": "08:00", "end": "16:00"},
        {"label": "B", "start": "16:00", "end": "00:00"},
        {"label": "C", "start": "00:00", "end": "08:00"}
      ],
      "sequence": [
        {"labels": ["A"]},
        {"labels": ["B", "C"]},
        {"off": true}
      ]
    }
  }

KEY FEATURES:
  - Step hours and day_offset are derived from the slots when omitted.
    When present they are kept as written and checked by shift.Validate.
  - Weekday names are case-insensitive, full ("friday") or short ("fri").
  - Multipliers default to 1 when omitted.
  - Parse problems are reported as violations in the same list as
    validation problems, so a caller sees every bad field at once.

USAGE:
  factory := NewPolicyFactory()
  policy, err := factory.ParsePolicy(jsonString)
  if errors.Is(err, shift.ErrValidation) { ... }

SEE ALSO:
  - shift/model.go: ShiftPolicy definition
  - shift/validate.go: validation rules
  - factory/presets.go: ready-made policies
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/shift"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a shift policy.
type PolicyJSON struct {
	ID                              string           `json:"id"`
	Name                            string           `json:"name"`
	ShiftType                       string           `json:"shift_type"`
	StartTime                       string           `json:"start_time,omitempty"`
	EndTime                         string           `json:"end_time,omitempty"`
	EndDayOffset                    int              `json:"end_day_offset,omitempty"`
	ExpectedHours                   decimal.Decimal  `json:"expected_hours"`
	GracePeriodInMinutes            int              `json:"grace_period_in_minutes"`
	GracePeriodOutMinutes           int              `json:"grace_period_out_minutes"`
	OTThresholdMinutes              int              `json:"ot_threshold_minutes"`
	MultiplierNormal                *decimal.Decimal `json:"multiplier_normal,omitempty"`
	MultiplierHoliday               *decimal.Decimal `json:"multiplier_holiday,omitempty"`
	HolidayWeekdays                 []string         `json:"holiday_weekdays,omitempty"`
	IsHolidayPaid                   bool             `json:"is_holiday_paid"`
	MinAttendanceDaysForPaidHoliday int              `json:"min_attendance_days_for_paid_holiday"`
	DistributeHolidayBonus          bool             `json:"distribute_holiday_bonus,omitempty"`
	Rotation                        *RotationJSON    `json:"rotation,omitempty"`
}

// RotationJSON is the slot catalogue plus the cycle.
type RotationJSON struct {
	Slots    []SlotJSON `json:"slots"`
	Sequence []StepJSON `json:"sequence"`
}

// SlotJSON is one labelled time range ("HH:MM" or "HH:MM:SS").
type SlotJSON struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// StepJSON is one day of the cycle. Hours and DayOffset are optional.
type StepJSON struct {
	Off       bool             `json:"off,omitempty"`
	Labels    []string         `json:"labels,omitempty"`
	Hours     *decimal.Decimal `json:"hours,omitempty"`
	DayOffset *int             `json:"day_offset,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses and validates a JSON policy. Structural problems come
// back as a *shift.ValidationError carrying every violation.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (shift.ShiftPolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return shift.ShiftPolicy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}

	policy, violations := f.FromJSON(pj)
	if len(violations) > 0 {
		return shift.ShiftPolicy{}, &shift.ValidationError{PolicyID: policy.ID, Violations: violations}
	}
	return policy, nil
}

// FromJSON converts PolicyJSON to a ShiftPolicy and reports parse and
// validation violations together. The policy is returned even when
// violations exist so callers can echo it back.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (shift.ShiftPolicy, []shift.Violation) {
	var parse []shift.Violation

	policy := shift.ShiftPolicy{
		ID:                              shift.PolicyID(pj.ID),
		Name:                            pj.Name,
		Type:                            shift.ShiftType(strings.ToLower(pj.ShiftType)),
		EndDayOffset:                    pj.EndDayOffset,
		ExpectedHours:                   pj.ExpectedHours,
		GracePeriodInMinutes:            pj.GracePeriodInMinutes,
		GracePeriodOutMinutes:           pj.GracePeriodOutMinutes,
		OTThresholdMinutes:              pj.OTThresholdMinutes,
		MultiplierNormal:                decimalOr(pj.MultiplierNormal, decimal.NewFromInt(1)),
		MultiplierHoliday:               decimalOr(pj.MultiplierHoliday, decimal.NewFromInt(1)),
		IsHolidayPaid:                   pj.IsHolidayPaid,
		MinAttendanceDaysForPaidHoliday: pj.MinAttendanceDaysForPaidHoliday,
		DistributeHolidayBonus:          pj.DistributeHolidayBonus,
	}

	// Fixed window
	if policy.Type == shift.ShiftFixed {
		policy.StartTime = parseClock(pj.StartTime, "start_time", &parse)
		policy.EndTime = parseClock(pj.EndTime, "end_time", &parse)
	}

	for i, name := range pj.HolidayWeekdays {
		wd, ok := parseWeekday(name)
		if !ok {
			parse = append(parse, shift.Violation{
				Field:   fmt.Sprintf("holiday_weekdays[%d]", i),
				Code:    shift.CodeInvalid,
				Message: fmt.Sprintf("%q is not a weekday", name),
			})
		}
		policy.HolidayWeekdays = append(policy.HolidayWeekdays, wd)
	}

	if pj.Rotation != nil {
		policy.Rotation = parseRotation(*pj.Rotation, &parse)
	}

	return policy, mergeViolations(parse, shift.Validate(policy))
}

// ToJSON converts a ShiftPolicy to PolicyJSON. Step hours and offsets are
// always written out.
func (f *PolicyFactory) ToJSON(policy shift.ShiftPolicy) PolicyJSON {
	normal := policy.MultiplierNormal
	holiday := policy.MultiplierHoliday
	pj := PolicyJSON{
		ID:                              string(policy.ID),
		Name:                            policy.Name,
		ShiftType:                       string(policy.Type),
		EndDayOffset:                    policy.EndDayOffset,
		ExpectedHours:                   policy.ExpectedHours,
		GracePeriodInMinutes:            policy.GracePeriodInMinutes,
		GracePeriodOutMinutes:           policy.GracePeriodOutMinutes,
		OTThresholdMinutes:              policy.OTThresholdMinutes,
		MultiplierNormal:                &normal,
		MultiplierHoliday:               &holiday,
		IsHolidayPaid:                   policy.IsHolidayPaid,
		MinAttendanceDaysForPaidHoliday: policy.MinAttendanceDaysForPaidHoliday,
		DistributeHolidayBonus:          policy.DistributeHolidayBonus,
	}

	if !policy.IsRotational() {
		pj.StartTime = policy.StartTime.String()
		pj.EndTime = policy.EndTime.String()
	}

	for _, wd := range policy.HolidayWeekdays {
		pj.HolidayWeekdays = append(pj.HolidayWeekdays, strings.ToLower(wd.String()))
	}

	if r := policy.Rotation; r != nil {
		rj := &RotationJSON{}
		for _, label := range r.SlotLabels() {
			s := r.Slots[label]
			rj.Slots = append(rj.Slots, SlotJSON{Label: s.Label, Start: s.Start.String(), End: s.End.String()})
		}
		for _, step := range r.Sequence {
			if step.Off {
				rj.Sequence = append(rj.Sequence, StepJSON{Off: true})
				continue
			}
			hours := step.Hours
			offset := step.DayOffset
			rj.Sequence = append(rj.Sequence, StepJSON{
				Labels:    append([]string(nil), step.Labels...),
				Hours:     &hours,
				DayOffset: &offset,
			})
		}
		pj.Rotation = rj
	}

	return pj
}

// MarshalPolicy renders a policy as indented JSON.
func (f *PolicyFactory) MarshalPolicy(policy shift.ShiftPolicy) ([]byte, error) {
	return json.MarshalIndent(f.ToJSON(policy), "", "  ")
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRotation(rj RotationJSON, parse *[]shift.Violation) *shift.RotationPattern {
	r := &shift.RotationPattern{Slots: make(map[string]shift.Slot, len(rj.Slots))}

	for i, sj := range rj.Slots {
		if sj.Label == "" {
			*parse = append(*parse, shift.Violation{
				Field:   fmt.Sprintf("rotation.slots[%d].label", i),
				Code:    shift.CodeRequired,
				Message: "slot label is required",
			})
			continue
		}
		field := fmt.Sprintf("rotation.slots[%s]", sj.Label)
		if _, dup := r.Slots[sj.Label]; dup {
			*parse = append(*parse, shift.Violation{
				Field:   field + ".label",
				Code:    shift.CodeDuplicate,
				Message: fmt.Sprintf("slot %q defined twice", sj.Label),
			})
			continue
		}
		r.Slots[sj.Label] = shift.Slot{
			Label: sj.Label,
			Start: parseClock(sj.Start, field, parse),
			End:   parseClock(sj.End, field, parse),
		}
	}

	for _, stj := range rj.Sequence {
		if stj.Off {
			step := shift.OffStep()
			step.Labels = append([]string(nil), stj.Labels...)
			r.Sequence = append(r.Sequence, step)
			continue
		}
		r.Sequence = append(r.Sequence, parseStep(r.Slots, stj))
	}
	return r
}

// parseStep keeps explicit hours and offsets and derives the missing ones.
// A step that cannot be derived (unknown label) is left for Validate to
// report.
func parseStep(slots map[string]shift.Slot, stj StepJSON) shift.SequenceStep {
	step := shift.SequenceStep{Labels: append([]string(nil), stj.Labels...), Hours: decimal.Zero}
	if derived, err := shift.DeriveStep(slots, stj.Labels...); err == nil {
		step = derived
	}
	if stj.Hours != nil {
		step.Hours = *stj.Hours
	}
	if stj.DayOffset != nil {
		step.DayOffset = *stj.DayOffset
	}
	return step
}

// parseClock returns an out-of-range ClockTime on failure so Validate also
// rejects the field.
func parseClock(s, field string, parse *[]shift.Violation) shift.ClockTime {
	if s == "" {
		*parse = append(*parse, shift.Violation{Field: field, Code: shift.CodeRequired, Message: field + " is required"})
		return -1
	}
	c, err := shift.ParseClockTime(s)
	if err != nil {
		*parse = append(*parse, shift.Violation{Field: field, Code: shift.CodeInvalid, Message: err.Error()})
		return -1
	}
	return c
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return -1, false
	}
	return wd, true
}

func decimalOr(d *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if d == nil {
		return def
	}
	return *d
}

// mergeViolations appends validation results for fields the parser did
// not already reject.
func mergeViolations(parse, validation []shift.Violation) []shift.Violation {
	seen := make(map[string]bool, len(parse))
	out := append([]shift.Violation(nil), parse...)
	for _, v := range parse {
		seen[v.Field] = true
	}
	for _, v := range validation {
		if seen[v.Field] {
			continue
		}
		out = append(out, v)
	}
	return out
}
