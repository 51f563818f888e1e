package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/shift-engine/shift"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	policies    map[shift.PolicyID]shift.ShiftPolicy
	assignments map[shift.EmployeeID][]shift.ShiftAssignment
	clock       map[shift.EmployeeID][]ClockRecord
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		policies:    make(map[shift.PolicyID]shift.ShiftPolicy),
		assignments: make(map[shift.EmployeeID][]shift.ShiftAssignment),
		clock:       make(map[shift.EmployeeID][]ClockRecord),
	}
}

// SavePolicy validates and stores a copy of p, replacing any previous version.
func (m *Memory) SavePolicy(_ context.Context, p shift.ShiftPolicy) error {
	if err := shift.MustBeValid(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.ID] = p.Clone()
	return nil
}

func (m *Memory) Policy(_ context.Context, id shift.PolicyID) (shift.ShiftPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.policies[id]
	if !ok {
		return shift.ShiftPolicy{}, fmt.Errorf("%w: %s", shift.ErrPolicyNotFound, id)
	}
	return p.Clone(), nil
}

// ListPolicies returns every policy ordered by ID.
func (m *Memory) ListPolicies(_ context.Context) ([]shift.ShiftPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]shift.ShiftPolicy, 0, len(m.policies))
	for _, p := range m.policies {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AssignmentsFor(_ context.Context, employee shift.EmployeeID) ([]shift.ShiftAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]shift.ShiftAssignment(nil), m.assignments[employee]...), nil
}

// Assign attaches a policy to an employee, closing the open assignment if
// the new one starts after it. The whole change happens under one lock.
func (m *Memory) Assign(_ context.Context, a shift.ShiftAssignment) (shift.AssignmentChange, error) {
	a = PrepareAssignment(a)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.policies[a.PolicyID]; !ok {
		return shift.AssignmentChange{}, fmt.Errorf("%w: %s", shift.ErrPolicyNotFound, a.PolicyID)
	}

	tl := shift.NewTimeline(a.EmployeeID, m.assignments[a.EmployeeID])
	change, err := tl.Plan(a)
	if err != nil {
		return shift.AssignmentChange{}, err
	}
	m.assignments[a.EmployeeID] = tl.Apply(change).Assignments()
	return change, nil
}

// Employees lists employees with assignments, ordered by ID.
func (m *Memory) Employees(_ context.Context) ([]shift.EmployeeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]shift.EmployeeID, 0, len(m.assignments))
	for emp, list := range m.assignments {
		if len(list) > 0 {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// RecordClock stores a clock pair, kept sorted by clock-in.
func (m *Memory) RecordClock(_ context.Context, r ClockRecord) (ClockRecord, error) {
	r, err := PrepareClock(r)
	if err != nil {
		return ClockRecord{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.clock[r.EmployeeID]
	i := sort.Search(len(recs), func(i int) bool {
		return recs[i].In.After(r.In)
	})
	recs = append(recs, ClockRecord{})
	copy(recs[i+1:], recs[i:])
	recs[i] = r
	m.clock[r.EmployeeID] = recs
	return r, nil
}

// ClockRecords returns the records whose schedule date is in [from, to].
func (m *Memory) ClockRecords(_ context.Context, employee shift.EmployeeID, from, to shift.Date) ([]ClockRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ClockRecord
	for _, r := range m.clock[employee] {
		if r.Date.AfterOrEqual(from) && r.Date.BeforeOrEqual(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// PresentDates returns the distinct schedule dates with a clock record, ascending.
func (m *Memory) PresentDates(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) ([]shift.Date, error) {
	recs, err := m.ClockRecords(ctx, employee, from, to)
	if err != nil {
		return nil, err
	}
	seen := make(map[shift.Date]bool, len(recs))
	var out []shift.Date
	for _, r := range recs {
		if !seen[r.Date] {
			seen[r.Date] = true
			out = append(out, r.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// CountPresentDays counts distinct dates with a clock record.
func (m *Memory) CountPresentDays(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) (int, error) {
	dates, err := m.PresentDates(ctx, employee, from, to)
	return len(dates), err
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = make(map[shift.PolicyID]shift.ShiftPolicy)
	m.assignments = make(map[shift.EmployeeID][]shift.ShiftAssignment)
	m.clock = make(map[shift.EmployeeID][]ClockRecord)
	return nil
}
