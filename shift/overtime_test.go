package shift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/shift"
)

// officeTuesday is a regular 08:00-17:00 day (540 expected minutes).
func officeTuesday(t *testing.T) shift.ResolvedDay {
	t.Helper()
	day, err := shift.Project(officePolicy(), date("2024-01-01"), date("2024-01-02"), nil)
	require.NoError(t, err)
	return day
}

func TestOvertime_Lateness(t *testing.T) {
	day := officeTuesday(t)

	tests := []struct {
		name    string
		in, out string
		late    int
		early   int
	}{
		{"on time", "2024-01-02 08:00", "2024-01-02 17:00", 0, 0},
		{"inside grace in", "2024-01-02 08:10", "2024-01-02 17:00", 0, 0},
		{"past grace in", "2024-01-02 08:20", "2024-01-02 17:00", 5, 0},
		{"inside grace out", "2024-01-02 08:00", "2024-01-02 16:50", 0, 0},
		{"before grace out", "2024-01-02 08:00", "2024-01-02 16:40", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := shift.Overtime(day, at(tt.in), at(tt.out))
			require.NoError(t, err)
			assert.Equal(t, tt.late, res.LateMinutes)
			assert.Equal(t, tt.early, res.EarlyMinutes)
		})
	}
}

func TestOvertime_BillableBeyondThreshold(t *testing.T) {
	// GIVEN: 540 expected minutes, 30 minute threshold, x1.5
	// WHEN: Working 08:00-18:00 (600 minutes)
	// THEN: 60 excess, 30 billable, 45 weighted

	res, err := shift.Overtime(officeTuesday(t), at("2024-01-02 08:00"), at("2024-01-02 18:00"))

	require.NoError(t, err)
	assert.Equal(t, 600, res.WorkedMinutes)
	assert.Equal(t, 540, res.ExpectedMinutes)
	assert.Equal(t, 30, res.OvertimeMinutes)
	assert.Zero(t, res.ShortfallMinutes)
	assert.True(t, res.MultiplierApplied.Equal(dec("1.5")))
	assert.True(t, res.WeightedOvertime.Equal(dec("45")), "weighted = %s", res.WeightedOvertime)
}

func TestOvertime_WithinThreshold(t *testing.T) {
	res, err := shift.Overtime(officeTuesday(t), at("2024-01-02 08:00"), at("2024-01-02 17:20"))

	require.NoError(t, err)
	assert.Zero(t, res.OvertimeMinutes)
	assert.True(t, res.WeightedOvertime.IsZero())
}

func TestOvertime_Shortfall(t *testing.T) {
	res, err := shift.Overtime(officeTuesday(t), at("2024-01-02 08:00"), at("2024-01-02 16:00"))

	require.NoError(t, err)
	assert.Equal(t, 60, res.ShortfallMinutes)
	assert.Equal(t, 45, res.EarlyMinutes)
	assert.Zero(t, res.OvertimeMinutes)
}

func TestOvertime_HolidayWork(t *testing.T) {
	// GIVEN: Friday is a weekly holiday (no window, x2)
	// WHEN: Working 4 hours anyway
	// THEN: Everything past the threshold is holiday overtime

	day, err := shift.Project(officePolicy(), date("2024-01-01"), date("2024-01-05"), nil)
	require.NoError(t, err)

	res, err := shift.Overtime(day, at("2024-01-05 09:00"), at("2024-01-05 13:00"))

	require.NoError(t, err)
	assert.Zero(t, res.ExpectedMinutes)
	assert.Zero(t, res.LateMinutes)
	assert.Equal(t, 210, res.OvertimeMinutes)
	assert.True(t, res.MultiplierApplied.Equal(dec("2")))
	assert.True(t, res.WeightedOvertime.Equal(dec("420")))
}

func TestOvertime_OvernightStep(t *testing.T) {
	// GIVEN: B+C runs 16:00 on the 2nd to 08:00 on the 3rd, grace 10, no threshold
	// WHEN: In at 16:05, out at 09:00 next day
	// THEN: Not late; 55 minutes overtime at x1.25

	day, err := shift.Project(threeCrewPolicy(), date("2024-01-01"), date("2024-01-02"), nil)
	require.NoError(t, err)

	res, err := shift.Overtime(day, at("2024-01-02 16:05"), at("2024-01-03 09:00"))

	require.NoError(t, err)
	assert.Zero(t, res.LateMinutes)
	assert.Equal(t, 960, res.ExpectedMinutes)
	assert.Equal(t, 1015, res.WorkedMinutes)
	assert.Equal(t, 55, res.OvertimeMinutes)
	assert.True(t, res.WeightedOvertime.Equal(dec("68.75")))
}

func TestOvertime_ClockOutBeforeIn(t *testing.T) {
	_, err := shift.Overtime(officeTuesday(t), at("2024-01-02 17:00"), at("2024-01-02 08:00"))

	assert.ErrorIs(t, err, shift.ErrInvalidClockRange)
	assert.True(t, shift.IsClientError(err))
}
