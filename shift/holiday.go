package shift

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ATTENDANCE COLLABORATOR
// =============================================================================

// AttendanceCounter reports how many days an employee was present in
// [from, to], both inclusive. It is the one piece of data the engine does
// not own; implementations may hit a database or a remote service.
type AttendanceCounter interface {
	CountPresentDays(ctx context.Context, employee EmployeeID, from, to Date) (int, error)
}

// AttendanceCounterFunc adapts a function to AttendanceCounter.
type AttendanceCounterFunc func(ctx context.Context, employee EmployeeID, from, to Date) (int, error)

func (f AttendanceCounterFunc) CountPresentDays(ctx context.Context, employee EmployeeID, from, to Date) (int, error) {
	return f(ctx, employee, from, to)
}

// EligibilityWindowDays is the trailing lookback used for holiday pay.
const EligibilityWindowDays = 7

// =============================================================================
// HOLIDAY ELIGIBILITY
// =============================================================================

// IsHoliday reports whether d falls on one of the policy's weekly holidays.
func IsHoliday(p ShiftPolicy, d Date) bool {
	return slices.Contains(p.HolidayWeekdays, d.Weekday())
}

// HolidayEvaluator decides whether a holiday is paid.
type HolidayEvaluator struct {
	Attendance AttendanceCounter
}

// Evaluate reports whether date d is a paid holiday for employee under p.
//
// Eligibility is earned over the trailing 7 calendar days [d-7, d-1], not a
// fixed Mon-Sun week, so holidays that land mid-cycle for rotational staff
// are judged on the same footing as everyone else.
func (h HolidayEvaluator) Evaluate(ctx context.Context, p ShiftPolicy, employee EmployeeID, d Date) (bool, error) {
	if !IsHoliday(p, d) || !p.IsHolidayPaid {
		return false, nil
	}
	if p.MinAttendanceDaysForPaidHoliday <= 0 {
		return true, nil
	}
	if h.Attendance == nil {
		return false, fmt.Errorf("holiday eligibility for %s on %s: no attendance source", employee, d)
	}
	present, err := h.Attendance.CountPresentDays(ctx, employee, d.AddDays(-EligibilityWindowDays), d.AddDays(-1))
	if err != nil {
		return false, fmt.Errorf("count present days for %s: %w", employee, err)
	}
	return present >= p.MinAttendanceDaysForPaidHoliday, nil
}

// =============================================================================
// HOLIDAY PAY DISTRIBUTION
// =============================================================================

// StepShare is the fraction of one holiday-pay unit attached to a work step.
type StepShare struct {
	StepIndex int
	Share     decimal.Decimal
}

// HolidayPayShares spreads one holiday-pay unit across the work steps of a
// cycle, proportional to each step's hours. The last work step takes the
// rounding remainder so the shares always sum to exactly 1.
//
// Returns nil when distribution is disabled or the cycle has no work hours.
func HolidayPayShares(p ShiftPolicy) []StepShare {
	if !p.DistributeHolidayBonus || p.Rotation == nil {
		return nil
	}
	total := decimal.Zero
	var work []int
	for i, step := range p.Rotation.Sequence {
		if step.Off || !step.Hours.IsPositive() {
			continue
		}
		total = total.Add(step.Hours)
		work = append(work, i)
	}
	if len(work) == 0 {
		return nil
	}

	shares := make([]StepShare, len(work))
	allocated := decimal.Zero
	for n, i := range work {
		var share decimal.Decimal
		if n == len(work)-1 {
			share = decimal.NewFromInt(1).Sub(allocated)
		} else {
			share = p.Rotation.Sequence[i].Hours.Div(total)
			allocated = allocated.Add(share)
		}
		shares[n] = StepShare{StepIndex: i, Share: share}
	}
	return shares
}

func holidayShareFor(p ShiftPolicy, idx int) decimal.Decimal {
	for _, s := range HolidayPayShares(p) {
		if s.StepIndex == idx {
			return s.Share
		}
	}
	return decimal.Zero
}

// =============================================================================
// SCHEDULED ATTENDANCE - "present" means attended on a scheduled work day
// =============================================================================

// PresenceLog lists the dates an employee clocked in within [from, to].
type PresenceLog interface {
	PresentDates(ctx context.Context, employee EmployeeID, from, to Date) ([]Date, error)
}

// ScheduleLookup resolves the expected schedule without holiday evaluation.
type ScheduleLookup interface {
	Schedule(ctx context.Context, employee EmployeeID, d Date) (ResolvedDay, error)
}

// ScheduledAttendance counts only days that were scheduled working and on
// which the employee clocked in. Days without a schedule (OFF, unassigned,
// before the anchor) never count, even if a clock-in exists.
type ScheduledAttendance struct {
	Schedules ScheduleLookup
	Presence  PresenceLog
}

func (s ScheduledAttendance) CountPresentDays(ctx context.Context, employee EmployeeID, from, to Date) (int, error) {
	dates, err := s.Presence.PresentDates(ctx, employee, from, to)
	if err != nil {
		return 0, err
	}
	count := 0
	seen := make(map[Date]bool, len(dates))
	for _, d := range dates {
		if seen[d] || d.Before(from) || d.After(to) {
			continue
		}
		seen[d] = true
		day, err := s.Schedules.Schedule(ctx, employee, d)
		if IsNoSchedule(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if day.IsWorking {
			count++
		}
	}
	return count, nil
}
