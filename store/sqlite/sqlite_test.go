package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
	"github.com/warp/shift-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func date(s string) shift.Date { return shift.MustParseDate(s) }

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedPolicies(t *testing.T, st *sqlite.Store) {
	t.Helper()
	f := factory.NewPolicyFactory()
	for _, js := range []string{
		factory.StandardDayShiftJSON("office", "Office", "08:00", "17:00", 8, "friday"),
		factory.ThreeCrewRotationJSON("three-crew", "Three crews"),
	} {
		p, err := f.ParsePolicy(js)
		require.NoError(t, err)
		require.NoError(t, st.SavePolicy(context.Background(), p))
	}
}

func TestSQLite_PolicyRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedPolicies(t, st)

	p, err := st.Policy(ctx, "three-crew")

	require.NoError(t, err)
	assert.Equal(t, shift.ShiftRotational, p.Type)
	require.Equal(t, 3, p.Rotation.CycleLength())
	assert.Equal(t, 1, p.Rotation.Sequence[1].DayOffset)
	assert.True(t, p.Rotation.Sequence[1].Hours.Equal(decimal.NewFromInt(16)))
	assert.True(t, p.MultiplierNormal.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, p.DistributeHolidayBonus)

	list, err := st.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSQLite_SavePolicyBumpsVersion(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedPolicies(t, st)

	p, err := st.Policy(ctx, "office")
	require.NoError(t, err)
	p.Name = "Office (summer)"
	require.NoError(t, st.SavePolicy(ctx, p))

	v, err := st.PolicyVersion(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	again, err := st.Policy(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, "Office (summer)", again.Name)
}

func TestSQLite_SavePolicyRejectsInvalid(t *testing.T) {
	st := newStore(t)
	p := shift.ShiftPolicy{ID: "bad", Type: shift.ShiftFixed}

	err := st.SavePolicy(context.Background(), p)

	assert.ErrorIs(t, err, shift.ErrValidation)
}

func TestSQLite_PolicyNotFound(t *testing.T) {
	_, err := newStore(t).Policy(context.Background(), "missing")

	assert.ErrorIs(t, err, shift.ErrPolicyNotFound)
}

func TestSQLite_AssignIsAtomic(t *testing.T) {
	// GIVEN: An open office assignment from 2024-01-01
	// WHEN: Moving the employee to three-crew from 2024-03-01
	// THEN: Both the close and the open are committed together

	ctx := context.Background()
	st := newStore(t)
	seedPolicies(t, st)

	_, err := st.Assign(ctx, shift.ShiftAssignment{ID: "a1", EmployeeID: "emp-1", PolicyID: "office", StartDate: date("2024-01-01")})
	require.NoError(t, err)
	change, err := st.Assign(ctx, shift.ShiftAssignment{ID: "a2", EmployeeID: "emp-1", PolicyID: "three-crew", StartDate: date("2024-03-01")})
	require.NoError(t, err)
	require.NotNil(t, change.Closed)

	list, err := st.AssignmentsFor(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, shift.AssignmentID("a1"), list[0].ID)
	require.NotNil(t, list[0].EndDate)
	assert.Equal(t, date("2024-02-29"), *list[0].EndDate)
	assert.True(t, list[1].IsOpen())
}

func TestSQLite_AssignFailureLeavesRowsUntouched(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedPolicies(t, st)

	_, err := st.Assign(ctx, shift.ShiftAssignment{ID: "a1", EmployeeID: "emp-1", PolicyID: "office", StartDate: date("2024-01-01")})
	require.NoError(t, err)

	_, err = st.Assign(ctx, shift.ShiftAssignment{ID: "a2", EmployeeID: "emp-1", PolicyID: "missing", StartDate: date("2024-03-01")})
	assert.ErrorIs(t, err, shift.ErrPolicyNotFound)

	_, err = st.Assign(ctx, shift.ShiftAssignment{ID: "a1", EmployeeID: "emp-1", PolicyID: "three-crew", StartDate: date("2024-03-01")})
	assert.Error(t, err, "duplicate id rolls back the close")

	list, err := st.AssignmentsFor(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsOpen())
}

func TestSQLite_ClockRecordsAndAttendance(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	for _, r := range []store.ClockRecord{
		{EmployeeID: "emp-1", In: at("2024-01-01 08:00"), Out: at("2024-01-01 12:00")},
		{EmployeeID: "emp-1", In: at("2024-01-01 13:00"), Out: at("2024-01-01 17:00")},
		{EmployeeID: "emp-1", In: at("2024-01-02 16:00"), Out: at("2024-01-03 08:00")},
		{EmployeeID: "emp-2", In: at("2024-01-02 08:00"), Out: at("2024-01-02 16:00")},
	} {
		_, err := st.RecordClock(ctx, r)
		require.NoError(t, err)
	}

	recs, err := st.ClockRecords(ctx, "emp-1", date("2024-01-01"), date("2024-01-02"))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, at("2024-01-03 08:00"), recs[2].Out)
	assert.Equal(t, date("2024-01-02"), recs[2].Date)

	dates, err := st.PresentDates(ctx, "emp-1", date("2023-12-29"), date("2024-01-04"))
	require.NoError(t, err)
	assert.Equal(t, []shift.Date{date("2024-01-01"), date("2024-01-02")}, dates)

	n, err := st.CountPresentDays(ctx, "emp-1", date("2023-12-29"), date("2024-01-04"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = st.RecordClock(ctx, store.ClockRecord{EmployeeID: "emp-1", In: at("2024-01-05 10:00"), Out: at("2024-01-05 09:00")})
	assert.ErrorIs(t, err, shift.ErrInvalidClockRange)
}

func TestSQLite_EngineWithScheduledAttendance(t *testing.T) {
	// GIVEN: Office policy (Fridays off, paid after 4 attended days)
	// WHEN: The employee clocked in Monday to Thursday
	// THEN: Friday 2024-01-05 is a paid holiday

	ctx := context.Background()
	st := newStore(t)
	seedPolicies(t, st)
	_, err := st.Assign(ctx, shift.ShiftAssignment{EmployeeID: "emp-1", PolicyID: "office", StartDate: date("2024-01-01")})
	require.NoError(t, err)
	for _, d := range shift.DatesBetween(date("2024-01-01"), date("2024-01-04")) {
		_, err := st.RecordClock(ctx, store.ClockRecord{
			EmployeeID: "emp-1",
			In:         d.At(shift.MustParseClockTime("08:00"), time.UTC),
			Out:        d.At(shift.MustParseClockTime("17:00"), time.UTC),
		})
		require.NoError(t, err)
	}

	engine := shift.NewEngine(st, st)
	engine.Attendance = shift.ScheduledAttendance{Schedules: engine, Presence: st}

	day, err := engine.Resolve(ctx, "emp-1", date("2024-01-05"))

	require.NoError(t, err)
	assert.True(t, day.IsHoliday)
	assert.True(t, day.IsPaidHoliday)
}
