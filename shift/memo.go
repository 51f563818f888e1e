package shift

import (
	"sync"
	"time"
)

// Memo caches projected days per (policy, phase, date).
//
// Projection is pure, so employees sharing a policy and a rotation phase
// share the result. Fixed policies have a single phase. The cache holds
// policy snapshots as they were when projected: call Invalidate when a
// policy is replaced.
type Memo struct {
	mu    sync.RWMutex
	days  map[memoKey]ResolvedDay
	limit int
}

var unixEpoch = NewDate(1970, time.January, 1)

type memoKey struct {
	policy PolicyID
	phase  int
	date   Date
}

// NewMemo creates a cache holding at most limit days (0 = unbounded).
// When full, the cache is reset rather than evicting piecemeal.
func NewMemo(limit int) *Memo {
	return &Memo{days: make(map[memoKey]ResolvedDay), limit: limit}
}

func memoKeyFor(p ShiftPolicy, anchor, d Date) memoKey {
	k := memoKey{policy: p.ID, date: d}
	if p.IsRotational() && p.Rotation != nil && p.Rotation.CycleLength() > 0 {
		n := p.Rotation.CycleLength()
		k.phase = ((unixEpoch.DaysUntil(anchor) % n) + n) % n
	}
	return k
}

func (m *Memo) get(k memoKey) (ResolvedDay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.days[k]
	return d, ok
}

func (m *Memo) put(k memoKey, d ResolvedDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.days) >= m.limit {
		m.days = make(map[memoKey]ResolvedDay)
	}
	m.days[k] = d
}

// Invalidate drops every cached day of a policy.
func (m *Memo) Invalidate(id PolicyID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.days {
		if k.policy == id {
			delete(m.days, k)
		}
	}
}

// Clear drops every cached day.
func (m *Memo) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = make(map[memoKey]ResolvedDay)
}

// Len reports the number of cached days.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.days)
}

// project returns the cached projection or computes and stores it.
// Errors are not cached. Cached days share their Window and Step pointers;
// callers must treat them as read-only.
func (m *Memo) project(p ShiftPolicy, anchor, d Date, compute projectFunc) (ResolvedDay, error) {
	if m == nil {
		return compute(p, anchor, d)
	}
	if d.Before(anchor) {
		return ResolvedDay{}, &PreAssignmentError{Anchor: anchor, Date: d}
	}
	k := memoKeyFor(p, anchor, d)
	if day, ok := m.get(k); ok {
		return day, nil
	}
	day, err := compute(p, anchor, d)
	if err != nil {
		return ResolvedDay{}, err
	}
	m.put(k, day)
	return day, nil
}

type projectFunc func(p ShiftPolicy, anchor, d Date) (ResolvedDay, error)
