package factory_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
)

func fields(vs []shift.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Field
	}
	return out
}

func TestParsePolicy_StandardDayShift(t *testing.T) {
	f := factory.NewPolicyFactory()

	p, err := f.ParsePolicy(factory.StandardDayShiftJSON("office", "Office hours", "08:00", "17:00", 8, "Friday"))

	require.NoError(t, err)
	assert.Equal(t, shift.PolicyID("office"), p.ID)
	assert.Equal(t, shift.ShiftFixed, p.Type)
	assert.Equal(t, "08:00", p.StartTime.String())
	assert.Equal(t, "17:00", p.EndTime.String())
	assert.True(t, p.ExpectedHours.Equal(decimalOf(t, "8")))
	assert.Equal(t, []time.Weekday{time.Friday}, p.HolidayWeekdays)
	assert.True(t, p.IsHolidayPaid)
	assert.Equal(t, 4, p.MinAttendanceDaysForPaidHoliday)
}

func TestParsePolicy_ThreeCrewDerivesSteps(t *testing.T) {
	// GIVEN: A rotation whose steps only list slot labels
	// THEN: Hours and day offsets are derived from the slots

	p, err := factory.NewPolicyFactory().ParsePolicy(factory.ThreeCrewRotationJSON("three-crew", "Three crews"))

	require.NoError(t, err)
	require.NotNil(t, p.Rotation)
	require.Equal(t, 3, p.Rotation.CycleLength())

	night := p.Rotation.Sequence[1]
	assert.Equal(t, []string{"B", "C"}, night.Labels)
	assert.True(t, night.Hours.Equal(decimalOf(t, "16")))
	assert.Equal(t, 1, night.DayOffset)
	assert.True(t, p.Rotation.Sequence[2].Off)
	assert.True(t, p.DistributeHolidayBonus)
}

func TestParsePolicy_OtherPresetsValid(t *testing.T) {
	f := factory.NewPolicyFactory()

	for _, js := range []string{
		factory.NightShiftJSON("nights", "Nights", "22:00", "06:00", 8),
		factory.FourOnFourOffJSON("4on4off", "Four on four off"),
		factory.StandardDayShiftJSON("no-holidays", "Mon-Sun", "09:00", "17:00", 7.5),
	} {
		_, err := f.ParsePolicy(js)
		assert.NoError(t, err)
	}
}

func TestParsePolicy_StaleStoredHours(t *testing.T) {
	// GIVEN: A step persisted with hours from an older slot layout
	// THEN: The stored value is kept and rejected, not silently re-derived

	js := `{
		"id": "stale", "name": "Stale", "shift_type": "rotational", "expected_hours": 8,
		"rotation": {
			"slots": [{"label": "B", "start": "16:00", "end": "00:00"}, {"label": "C", "start": "00:00", "end": "08:00"}],
			"sequence": [{"labels": ["B", "C"], "hours": 8, "day_offset": 0}, {"off": true}]
		}
	}`

	_, err := factory.NewPolicyFactory().ParsePolicy(js)

	var vErr *shift.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		"rotation.sequence[0].hours",
		"rotation.sequence[0].day_offset",
	}, fields(vErr.Violations))
}

func TestParsePolicy_ParseAndValidationViolationsTogether(t *testing.T) {
	js := `{
		"id": "broken", "name": "", "shift_type": "fixed",
		"start_time": "8am", "end_time": "17:00", "expected_hours": 8,
		"holiday_weekdays": ["fri", "someday"]
	}`

	_, err := factory.NewPolicyFactory().ParsePolicy(js)

	var vErr *shift.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"start_time", "holiday_weekdays[1]", "name"}, fields(vErr.Violations))
	assert.Equal(t, shift.CodeInvalid, vErr.Violations[0].Code)
}

func TestParsePolicy_DuplicateSlot(t *testing.T) {
	js := `{
		"id": "dup", "name": "Dup", "shift_type": "rotational", "expected_hours": 8,
		"rotation": {
			"slots": [{"label": "A", "start": "08:00", "end": "16:00"}, {"label": "A", "start": "09:00", "end": "17:00"}],
			"sequence": [{"labels": ["A"]}, {"off": true}]
		}
	}`

	_, err := factory.NewPolicyFactory().ParsePolicy(js)

	var vErr *shift.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, shift.CodeDuplicate, vErr.Violations[0].Code)
}

func TestParsePolicy_MalformedJSON(t *testing.T) {
	_, err := factory.NewPolicyFactory().ParsePolicy(`{"id": `)

	require.Error(t, err)
	assert.NotErrorIs(t, err, shift.ErrValidation)
}

func TestPolicyJSON_RoundTrip(t *testing.T) {
	f := factory.NewPolicyFactory()
	p, err := f.ParsePolicy(factory.ThreeCrewRotationJSON("three-crew", "Three crews"))
	require.NoError(t, err)

	b, err := f.MarshalPolicy(p)
	require.NoError(t, err)
	again, err := f.ParsePolicy(string(b))
	require.NoError(t, err)

	assert.Equal(t, p.Rotation.SlotLabels(), again.Rotation.SlotLabels())
	for i := range p.Rotation.Sequence {
		assert.Equal(t, p.Rotation.Sequence[i].String(), again.Rotation.Sequence[i].String())
		assert.True(t, p.Rotation.Sequence[i].Hours.Equal(again.Rotation.Sequence[i].Hours))
	}
	assert.True(t, p.MultiplierNormal.Equal(again.MultiplierNormal))
}

func TestToJSON_FixedWeekdayNames(t *testing.T) {
	f := factory.NewPolicyFactory()
	p, err := f.ParsePolicy(factory.StandardDayShiftJSON("office", "Office", "08:00", "17:00", 8, "FRI", "sat"))
	require.NoError(t, err)

	pj := f.ToJSON(p)

	assert.Equal(t, []string{"friday", "saturday"}, pj.HolidayWeekdays)
	assert.Equal(t, "08:00", pj.StartTime)
	assert.Nil(t, pj.Rotation)

	b, err := json.Marshal(pj)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"shift_type":"fixed"`)
}
