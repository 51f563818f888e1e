package shift_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/shift"
)

func TestValidate_ValidPolicies(t *testing.T) {
	assert.Empty(t, shift.Validate(officePolicy()))
	assert.Empty(t, shift.Validate(threeCrewPolicy()))
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	// GIVEN: A policy broken in many independent ways
	// WHEN: Validating
	// THEN: Every problem is reported, not just the first

	p := officePolicy()
	p.ID = ""
	p.Name = ""
	p.ExpectedHours = dec("0")
	p.MultiplierNormal = dec("0.5")
	p.GracePeriodInMinutes = -1
	p.OTThresholdMinutes = -5
	p.MinAttendanceDaysForPaidHoliday = 9

	got := fields(shift.Validate(p))

	assert.ElementsMatch(t, []string{
		"id",
		"name",
		"expected_hours",
		"multiplier_normal",
		"grace_period_in_minutes",
		"ot_threshold_minutes",
		"min_attendance_days_for_paid_holiday",
	}, got)
}

func TestValidate_FixedTimeOrder(t *testing.T) {
	p := officePolicy()
	p.StartTime = clock("22:00")
	p.EndTime = clock("06:00")

	vs := shift.Validate(p)
	require.Len(t, vs, 1)
	assert.Equal(t, "end_time", vs[0].Field)
	assert.Equal(t, shift.CodeTimeOrder, vs[0].Code)

	// Overnight is fine once the end lands on the next day.
	p.EndDayOffset = 1
	assert.Empty(t, shift.Validate(p))
}

func TestValidate_FixedExpectedHoursExceedWindow(t *testing.T) {
	p := officePolicy()
	p.ExpectedHours = dec("9.5")

	vs := shift.Validate(p)
	require.Len(t, vs, 1)
	assert.Equal(t, "expected_hours", vs[0].Field)
}

func TestValidate_FixedWithRotationRejected(t *testing.T) {
	p := officePolicy()
	p.Rotation = threeCrewPolicy().Rotation

	assert.Contains(t, fields(shift.Validate(p)), "rotation")
}

func TestValidate_UnknownSlotLabel(t *testing.T) {
	p := threeCrewPolicy()
	p.Rotation.Sequence[0] = shift.SequenceStep{Labels: []string{"A", "Z"}, Hours: dec("8")}

	vs := shift.Validate(p)
	require.Len(t, vs, 1)
	assert.Equal(t, "rotation.sequence[0].labels", vs[0].Field)
	assert.Equal(t, shift.CodeUnknownSlot, vs[0].Code)
}

func TestValidate_StaleDerivedValues(t *testing.T) {
	// GIVEN: B+C stored with hours and offset from before C was added
	// THEN: Both derived fields are flagged

	p := threeCrewPolicy()
	p.Rotation.Sequence[1] = shift.SequenceStep{Labels: []string{"B", "C"}, Hours: dec("8"), DayOffset: 0}

	vs := shift.Validate(p)
	assert.ElementsMatch(t, []string{
		"rotation.sequence[1].hours",
		"rotation.sequence[1].day_offset",
	}, fields(vs))
	for _, v := range vs {
		assert.Equal(t, shift.CodeMismatch, v.Code)
	}
}

func TestValidate_RoundedHoursAccepted(t *testing.T) {
	slots := map[string]shift.Slot{"X": slot("X", "08:00", "15:40")}
	p := threeCrewPolicy()
	p.Rotation = &shift.RotationPattern{
		Slots:    slots,
		Sequence: []shift.SequenceStep{{Labels: []string{"X"}, Hours: dec("7.67")}, shift.OffStep()},
	}

	assert.Empty(t, shift.Validate(p))
}

func TestValidate_EmptySequence(t *testing.T) {
	p := threeCrewPolicy()
	p.Rotation.Sequence = nil

	vs := shift.Validate(p)
	require.Len(t, vs, 1)
	assert.Equal(t, shift.CodeEmptyCycle, vs[0].Code)
}

func TestValidate_MissingRotation(t *testing.T) {
	p := threeCrewPolicy()
	p.Rotation = nil

	assert.Equal(t, []string{"rotation"}, fields(shift.Validate(p)))
}

func TestValidate_StepLongerThanCycle(t *testing.T) {
	// GIVEN: A one-day cycle whose only step runs into the next day
	// THEN: The step would overlap its own next occurrence

	slots := threeCrewSlots()
	p := threeCrewPolicy()
	p.Rotation = &shift.RotationPattern{
		Slots:    slots,
		Sequence: []shift.SequenceStep{mustStep(slots, "B", "C")},
	}

	vs := shift.Validate(p)
	require.Len(t, vs, 1)
	assert.Equal(t, "rotation.sequence[0].day_offset", vs[0].Field)
	assert.Equal(t, shift.CodeOutOfRange, vs[0].Code)
}

func TestValidate_SlotKeyMismatch(t *testing.T) {
	p := threeCrewPolicy()
	p.Rotation.Slots["A"] = slot("Alpha", "08:00", "16:00")

	assert.Contains(t, fields(shift.Validate(p)), "rotation.slots[A].label")
}

func TestValidate_HolidayWeekdays(t *testing.T) {
	p := officePolicy()
	p.HolidayWeekdays = []time.Weekday{time.Friday, time.Weekday(9), time.Friday}

	vs := shift.Validate(p)
	require.Len(t, vs, 2)
	assert.Equal(t, shift.CodeInvalid, vs[0].Code)
	assert.Equal(t, "holiday_weekdays[1]", vs[0].Field)
	assert.Equal(t, shift.CodeDuplicate, vs[1].Code)
	assert.Equal(t, "holiday_weekdays[2]", vs[1].Field)
}

func TestValidate_HolidayDistributionExclusive(t *testing.T) {
	// GIVEN: Distribution enabled on a fixed policy that also has weekly holidays
	// THEN: Both conflicts are reported

	p := officePolicy()
	p.DistributeHolidayBonus = true

	vs := shift.Validate(p)
	require.Len(t, vs, 2)
	for _, v := range vs {
		assert.Equal(t, "distribute_holiday_bonus", v.Field)
		assert.Equal(t, shift.CodeConflict, v.Code)
	}

	r := threeCrewPolicy()
	r.DistributeHolidayBonus = true
	assert.Empty(t, shift.Validate(r))
}

func TestValidate_UnknownShiftType(t *testing.T) {
	p := officePolicy()
	p.Type = "split"

	assert.Equal(t, []string{"shift_type"}, fields(shift.Validate(p)))
}

func TestMustBeValid(t *testing.T) {
	require.NoError(t, shift.MustBeValid(officePolicy()))

	p := officePolicy()
	p.Name = ""
	p.ExpectedHours = dec("0")
	err := shift.MustBeValid(p)

	require.Error(t, err)
	assert.ErrorIs(t, err, shift.ErrValidation)
	var vErr *shift.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 2)
	assert.True(t, shift.IsClientError(err))
}
