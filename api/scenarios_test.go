package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/shift"
)

func TestScenarioAnchor(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC), "2024-01-01"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01-01"},
		{time.Date(2024, 1, 21, 23, 0, 0, 0, time.UTC), "2024-01-01"},
		{time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), "2024-02-19"},
	}

	for _, tt := range tests {
		got := scenarioAnchor(tt.now)
		assert.Equal(t, tt.want, got.String(), tt.now.String())
		assert.Equal(t, time.Monday, got.Weekday())
	}
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	h, router := setupTestHandler(t)

	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			loadScenario(t, router, s.ID)

			rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, s.ID, decode[ScenarioDTO](t, rec).ID)

			// Every assigned employee resolves over the whole demo month.
			employees, err := h.Store.Employees(context.Background())
			require.NoError(t, err)
			require.NotEmpty(t, employees)
			for _, emp := range employees {
				_, err := h.Engine.ResolveRange(context.Background(), emp, shift.MustParseDate("2024-01-01"), shift.MustParseDate("2024-01-28"))
				assert.NoError(t, err, emp)
			}
		})
	}
}

func TestScenario_UnknownAndReset(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, router, "office-week")
	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestScenario_OfficeWeek(t *testing.T) {
	// GIVEN: Alice attended Monday-Thursday, Bob Monday-Wednesday
	// THEN: Alice's Friday holiday is paid, Bob's is not

	h, router := setupTestHandler(t)
	loadScenario(t, router, "office-week")
	ctx := context.Background()
	friday := shift.MustParseDate("2024-01-05")

	alice, err := h.Engine.Resolve(ctx, "alice", friday)
	require.NoError(t, err)
	assert.True(t, alice.IsPaidHoliday)

	bob, err := h.Engine.Resolve(ctx, "bob", friday)
	require.NoError(t, err)
	assert.False(t, bob.IsPaidHoliday)

	// Tuesday: clocked in at 08:25, ten minutes past grace.
	rec := do(t, router, http.MethodGet, "/api/employees/alice/overtime?date=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, decode[OvertimeDTO](t, rec).LateMinutes)

	// Wednesday: 08:00-18:00.
	rec = do(t, router, http.MethodGet, "/api/employees/alice/overtime?date=2024-01-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, decode[OvertimeDTO](t, rec).OvertimeMinutes)
}

func TestScenario_ThreeCrewCoverage(t *testing.T) {
	// GIVEN: Three crews anchored one day apart
	// THEN: From the third day on, one crew is on A, one on B+C, one is off

	h, router := setupTestHandler(t)
	loadScenario(t, router, "three-crew")
	ctx := context.Background()

	for _, d := range shift.DatesBetween(shift.MustParseDate("2024-01-03"), shift.MustParseDate("2024-01-20")) {
		seen := map[string]int{}
		for _, crew := range []shift.EmployeeID{"crew-a", "crew-b", "crew-c"} {
			day, err := h.Engine.Resolve(ctx, crew, d)
			require.NoError(t, err)
			seen[day.Step.String()]++
		}
		assert.Equal(t, map[string]int{"A": 1, "B+C": 1, "OFF": 1}, seen, d.String())
	}

	// crew-a worked B+C on the 2nd until 08:30 on the 3rd.
	rec := do(t, router, http.MethodGet, "/api/employees/crew-a/overtime?date=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ot := decode[OvertimeDTO](t, rec)
	assert.Equal(t, 990, ot.WorkedMinutes)
	assert.Equal(t, 960, ot.ExpectedMinutes)
	assert.Equal(t, 30, ot.OvertimeMinutes)
}

func TestScenario_PolicyChange(t *testing.T) {
	h, router := setupTestHandler(t)
	loadScenario(t, router, "policy-change")
	ctx := context.Background()

	assignments, err := h.Store.AssignmentsFor(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	timeline := shift.NewTimeline("carol", assignments)

	before, err := timeline.PolicyFor(shift.MustParseDate("2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, shift.PolicyID("office"), before)

	after, err := timeline.PolicyFor(shift.MustParseDate("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, shift.PolicyID("twelve-hour"), after)

	day, err := h.Engine.Resolve(ctx, "carol", shift.MustParseDate("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 0, day.StepIndex)
	assert.True(t, day.ContractHours.Equal(day.ExpectedHours))
}

func TestScenario_NightShift(t *testing.T) {
	// 21:55 to 06:40 against 22:00-06:00: 45 excess, 15 threshold, x1.5
	_, router := setupTestHandler(t)
	loadScenario(t, router, "night-shift")

	rec := do(t, router, http.MethodGet, "/api/employees/dave/overtime?date=2024-01-01", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ot := decode[OvertimeDTO](t, rec)
	assert.Equal(t, 525, ot.WorkedMinutes)
	assert.Equal(t, 480, ot.ExpectedMinutes)
	assert.Equal(t, 30, ot.OvertimeMinutes)
	assert.Equal(t, "45", ot.WeightedOvertime.String())
}
