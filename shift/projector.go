package shift

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEDULE PROJECTOR
// =============================================================================
//
// The projector turns a policy (and, for rotations, a cycle step) into a
// concrete window on a date. Window boundaries and the hours figure are
// derived from the same slot boundaries, so they cannot drift apart.
//
// Holiday pay eligibility is not decided here; see HolidayEvaluator.

// Project resolves the expected schedule for date d of an assignment anchored
// on anchor. loc places wall-clock times on the timeline (nil = UTC).
func Project(p ShiftPolicy, anchor, d Date, loc *time.Location) (ResolvedDay, error) {
	if d.Before(anchor) {
		return ResolvedDay{}, &PreAssignmentError{Anchor: anchor, Date: d}
	}
	if !p.IsRotational() {
		return ProjectFixed(p, d, loc), nil
	}
	idx, step, err := ResolveStep(p, anchor, d)
	if err != nil {
		return ResolvedDay{}, err
	}
	return ProjectStep(p, idx, step, d, loc)
}

// ProjectFixed projects a fixed policy: [d@start, (d+end_day_offset)@end).
// A weekly holiday is a day off for fixed policies.
func ProjectFixed(p ShiftPolicy, d Date, loc *time.Location) ResolvedDay {
	day := baseDay(p, d)
	day.StepIndex = -1
	if day.IsHoliday {
		return day
	}
	w := Window{
		Start: d.At(p.StartTime, loc),
		End:   d.AddDays(p.EndDayOffset).At(p.EndTime, loc),
	}
	day.IsWorking = true
	day.Window = &w
	day.ExpectedHours = minutesToHours(w.Minutes())
	day.ContractHours = p.ExpectedHours
	return day
}

// ProjectStep projects cycle position idx of a rotational policy onto d.
//
// The slots are laid out in order starting at d@first.Start; the final end
// lands on d + offset. The offset is recomputed here and checked against
// the stored step.DayOffset; a mismatch is a StepDriftError.
func ProjectStep(p ShiftPolicy, idx int, step SequenceStep, d Date, loc *time.Location) (ResolvedDay, error) {
	day := baseDay(p, d)
	day.StepIndex = idx
	stepCopy := step
	stepCopy.Labels = slices.Clone(step.Labels)
	day.Step = &stepCopy
	day.HolidayPayShare = holidayShareFor(p, idx)

	if step.Off {
		return day, nil
	}
	if p.Rotation == nil {
		return ResolvedDay{}, &StepDriftError{PolicyID: p.ID, StepIndex: idx, Stored: step.DayOffset, Derived: -1}
	}

	slots, missing := lookupSlots(p.Rotation.Slots, step.Labels)
	if len(missing) > 0 || len(slots) == 0 {
		return ResolvedDay{}, &StepDriftError{PolicyID: p.ID, StepIndex: idx, Stored: step.DayOffset, Derived: -1}
	}
	walk := walkSlots(slots)
	if walk.dayOffset != step.DayOffset {
		return ResolvedDay{}, &StepDriftError{PolicyID: p.ID, StepIndex: idx, Stored: step.DayOffset, Derived: walk.dayOffset}
	}

	w := Window{
		Start: d.At(walk.first.Start, loc),
		End:   d.AddDays(walk.dayOffset).At(walk.last.End, loc),
	}
	day.IsWorking = true
	day.Window = &w
	day.ExpectedHours = minutesToHours(w.Minutes())
	day.ContractHours = step.Hours
	return day, nil
}

func baseDay(p ShiftPolicy, d Date) ResolvedDay {
	return ResolvedDay{
		PolicyID:        p.ID,
		Date:            d,
		ExpectedHours:   decimal.Zero,
		ContractHours:   decimal.Zero,
		IsHoliday:       IsHoliday(p, d),
		HolidayPayShare: decimal.Zero,
		Pay:             p.PayRules(),
	}
}
