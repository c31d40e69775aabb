// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/grievance-engine/grievance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	regions   map[grievance.RegionID]grievance.AdministrativeRegion
	levels    map[grievance.LevelID]grievance.HierarchyLevel
	cases     map[grievance.CaseID]grievance.Case
	sweepRuns []grievance.SweepRun
}

func NewMemory() *Memory {
	return &Memory{
		regions: make(map[grievance.RegionID]grievance.AdministrativeRegion),
		levels:  make(map[grievance.LevelID]grievance.HierarchyLevel),
		cases:   make(map[grievance.CaseID]grievance.Case),
	}
}

// --- RegionStore ---

func (m *Memory) GetRegion(_ context.Context, id grievance.RegionID) (grievance.AdministrativeRegion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[id]
	if !ok {
		return grievance.AdministrativeRegion{}, grievance.ErrUnknownRegion
	}
	return r, nil
}

func (m *Memory) SaveRegion(_ context.Context, region grievance.AdministrativeRegion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions[region.ID] = region
	return nil
}

func (m *Memory) ListRegions(_ context.Context, project grievance.ProjectID) ([]grievance.AdministrativeRegion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []grievance.AdministrativeRegion
	for _, r := range m.regions {
		if r.ProjectID == project {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetLevel(_ context.Context, id grievance.LevelID) (grievance.HierarchyLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.levels[id]
	if !ok {
		return grievance.HierarchyLevel{}, grievance.ErrUnknownLevel
	}
	return l, nil
}

func (m *Memory) SaveLevel(_ context.Context, level grievance.HierarchyLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[level.ID] = level
	return nil
}

func (m *Memory) ListLevels(_ context.Context, project grievance.ProjectID) ([]grievance.HierarchyLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []grievance.HierarchyLevel
	for _, l := range m.levels {
		if l.ProjectID == project {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rank < result[j].Rank })
	return result, nil
}

// --- CaseStore ---

func (m *Memory) GetCase(_ context.Context, id grievance.CaseID) (grievance.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return grievance.Case{}, grievance.ErrUnknownCase
	}
	return cloneCase(c), nil
}

func (m *Memory) SaveCase(_ context.Context, c grievance.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.ID] = cloneCase(c)
	return nil
}

func (m *Memory) ListOpenCases(_ context.Context) ([]grievance.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []grievance.Case
	for _, c := range m.cases {
		if !c.Status.IsTerminal() {
			result = append(result, cloneCase(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// cloneCase copies the history slice so callers never share backing
// arrays with the store.
func cloneCase(c grievance.Case) grievance.Case {
	c.History = append([]grievance.EscalationRecord(nil), c.History...)
	return c
}

// --- TxCaseStore ---

// WithTx executes fn against the store. For the memory store this is
// simulated with a case-table snapshot restored on error.
func (m *Memory) WithTx(ctx context.Context, fn func(grievance.CaseStore) error) error {
	m.mu.Lock()
	snapshot := make(map[grievance.CaseID]grievance.Case, len(m.cases))
	for id, c := range m.cases {
		snapshot[id] = cloneCase(c)
	}
	m.mu.Unlock()

	if err := fn(&txView{parent: m}); err != nil {
		m.mu.Lock()
		m.cases = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

type txView struct {
	parent *Memory
}

func (tv *txView) GetCase(ctx context.Context, id grievance.CaseID) (grievance.Case, error) {
	return tv.parent.GetCase(ctx, id)
}

func (tv *txView) SaveCase(ctx context.Context, c grievance.Case) error {
	return tv.parent.SaveCase(ctx, c)
}

func (tv *txView) ListOpenCases(ctx context.Context) ([]grievance.Case, error) {
	return tv.parent.ListOpenCases(ctx)
}

// --- SweepRunStore ---

func (m *Memory) SaveSweepRun(_ context.Context, run grievance.SweepRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.sweepRuns {
		if existing.ID == run.ID {
			m.sweepRuns[i] = run
			return nil
		}
	}
	m.sweepRuns = append(m.sweepRuns, run)
	return nil
}

func (m *Memory) ListSweepRuns(_ context.Context, limit int) ([]grievance.SweepRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := append([]grievance.SweepRun(nil), m.sweepRuns...)
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *Memory) LastCompletedSweep(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last time.Time
	for _, run := range m.sweepRuns {
		if run.Status == "completed" && run.StartedAt.After(last) {
			last = run.StartedAt
		}
	}
	return last, nil
}

var _ grievance.Store = (*Memory)(nil)
