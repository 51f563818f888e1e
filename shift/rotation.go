package shift

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROTATION RESOLVER
// =============================================================================

// ResolveStep returns the cycle position that applies on date d for an
// assignment anchored on anchor:
//
//	index = days(d - anchor) mod len(sequence)
//
// Two employees on the same policy with different anchors are out of phase;
// staggering anchors 0/1/2 days on one sequence gives round-the-clock crews.
func ResolveStep(p ShiftPolicy, anchor, d Date) (int, SequenceStep, error) {
	if d.Before(anchor) {
		return 0, SequenceStep{}, &PreAssignmentError{Anchor: anchor, Date: d}
	}
	if !p.IsRotational() || p.Rotation == nil || p.Rotation.CycleLength() == 0 {
		return 0, SequenceStep{}, fmt.Errorf("%w: policy %q has no rotation cycle", ErrInconsistentPolicy, p.ID)
	}
	idx := anchor.DaysUntil(d) % p.Rotation.CycleLength()
	return idx, p.Rotation.Sequence[idx], nil
}

// =============================================================================
// STEP DERIVATION - Hours and day offset from slot boundaries
// =============================================================================

// slotWalk is the result of laying slots end to end from day 0.
type slotWalk struct {
	minutes   int
	dayOffset int
	first     Slot
	last      Slot
}

// walkSlots lays slots out in order. The running day offset advances when a
// slot crosses midnight, or when a slot starts earlier on the clock than the
// previous one ended (the next slot is taken to begin on the following day).
// Gaps between slots are not detected.
func walkSlots(slots []Slot) slotWalk {
	var w slotWalk
	for i, s := range slots {
		if i == 0 {
			w.first = s
		} else if s.Start < w.last.End {
			w.dayOffset++
		}
		if s.Wraps() {
			w.dayOffset++
		}
		w.minutes += s.Minutes()
		w.last = s
	}
	return w
}

// lookupSlots maps labels to slots, returning the labels that are missing.
func lookupSlots(catalogue map[string]Slot, labels []string) ([]Slot, []string) {
	slots := make([]Slot, 0, len(labels))
	var missing []string
	for _, l := range labels {
		s, ok := catalogue[l]
		if !ok {
			missing = append(missing, l)
			continue
		}
		slots = append(slots, s)
	}
	return slots, missing
}

// DeriveStep builds a work step from slot labels, computing Hours and
// DayOffset. This is the only way the engine produces those two values.
func DeriveStep(catalogue map[string]Slot, labels ...string) (SequenceStep, error) {
	if len(labels) == 0 {
		return SequenceStep{}, fmt.Errorf("work step needs at least one slot")
	}
	slots, missing := lookupSlots(catalogue, labels)
	if len(missing) > 0 {
		return SequenceStep{}, fmt.Errorf("unknown slot labels %v", missing)
	}
	w := walkSlots(slots)
	return SequenceStep{
		Labels:    append([]string(nil), labels...),
		Hours:     minutesToHours(w.minutes),
		DayOffset: w.dayOffset,
	}, nil
}

var sixty = decimal.NewFromInt(60)

func minutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty)
}

// hoursEqual compares hour figures at minute-level precision. Stored values
// come from JSON and may carry a rounded fraction (e.g. 7.67 for 7h40m).
func hoursEqual(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}
