// Package tracker collects sampling-loop statistics.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks per-variable read outcomes and unit-heuristic activity.
type Tracker struct {
	mu         sync.RWMutex
	vars       map[string]*VarStats
	cycles     int64
	unitFixups int64
}

// VarStats holds read counters for a single variable.
// Fields are accessed atomically.
type VarStats struct {
	Reads    int64
	Failures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		vars: make(map[string]*VarStats),
	}
}

func (t *Tracker) getStats(name string) *VarStats {
	t.mu.RLock()
	s, ok := t.vars[name]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.vars[name]; ok {
		return s
	}
	s = &VarStats{}
	t.vars[name] = s
	return s
}

// Read records a successful variable read.
func (t *Tracker) Read(name string) {
	atomic.AddInt64(&t.getStats(name).Reads, 1)
}

// Failure records a failed variable read.
func (t *Tracker) Failure(name string) {
	atomic.AddInt64(&t.getStats(name).Failures, 1)
}

// Cycle records a completed sampling cycle.
func (t *Tracker) Cycle() {
	atomic.AddInt64(&t.cycles, 1)
}

// UnitFixup records a unit heuristic firing during normalization.
func (t *Tracker) UnitFixup() {
	atomic.AddInt64(&t.unitFixups, 1)
}

// Cycles returns the number of completed sampling cycles.
func (t *Tracker) Cycles() int64 {
	return atomic.LoadInt64(&t.cycles)
}

// UnitFixups returns the number of unit heuristics applied.
func (t *Tracker) UnitFixups() int64 {
	return atomic.LoadInt64(&t.unitFixups)
}

// Snapshot returns a copy of all per-variable counters.
func (t *Tracker) Snapshot() map[string]VarStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]VarStats, len(t.vars))
	for name, s := range t.vars {
		out[name] = VarStats{
			Reads:    atomic.LoadInt64(&s.Reads),
			Failures: atomic.LoadInt64(&s.Failures),
		}
	}
	return out
}
