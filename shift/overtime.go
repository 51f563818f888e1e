package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OVERTIME & PAY
// =============================================================================

// OvertimeResult compares clock events against a resolved day.
//
// OvertimeMinutes is the billable part only (excess beyond the threshold).
// ShortfallMinutes is reported instead of flooring under-work to zero; what
// to deduct is the caller's decision.
type OvertimeResult struct {
	WorkedMinutes    int
	ExpectedMinutes  int
	LateMinutes      int
	EarlyMinutes     int
	OvertimeMinutes  int
	ShortfallMinutes int

	MultiplierApplied decimal.Decimal
	// WeightedOvertime is OvertimeMinutes * MultiplierApplied.
	WeightedOvertime decimal.Decimal
}

// Overtime computes lateness, early leave and overtime for one day.
//
// Late:  clock-in after window.start + grace_in, by the difference.
// Early: clock-out before window.end - grace_out, by the difference.
// Days without a window (OFF, weekly holiday) expect zero minutes, so all
// worked time is excess.
func Overtime(day ResolvedDay, in, out time.Time) (OvertimeResult, error) {
	if out.Before(in) {
		return OvertimeResult{}, ErrInvalidClockRange
	}

	res := OvertimeResult{
		WorkedMinutes:   wholeMinutes(out.Sub(in)),
		ExpectedMinutes: day.ExpectedMinutes(),
	}

	if day.Window != nil {
		lateAfter := day.Window.Start.Add(time.Duration(day.Pay.GracePeriodInMinutes) * time.Minute)
		if in.After(lateAfter) {
			res.LateMinutes = wholeMinutes(in.Sub(lateAfter))
		}
		earlyBefore := day.Window.End.Add(-time.Duration(day.Pay.GracePeriodOutMinutes) * time.Minute)
		if out.Before(earlyBefore) {
			res.EarlyMinutes = wholeMinutes(earlyBefore.Sub(out))
		}
	}

	res.MultiplierApplied = day.Pay.MultiplierNormal
	if day.IsHoliday {
		res.MultiplierApplied = day.Pay.MultiplierHoliday
	}

	excess := res.WorkedMinutes - res.ExpectedMinutes
	switch {
	case excess < 0:
		res.ShortfallMinutes = -excess
	case excess > day.Pay.OTThresholdMinutes:
		res.OvertimeMinutes = excess - day.Pay.OTThresholdMinutes
	}
	res.WeightedOvertime = decimal.NewFromInt(int64(res.OvertimeMinutes)).Mul(res.MultiplierApplied)
	return res, nil
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
