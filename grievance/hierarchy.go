/*
hierarchy.go - Region Hierarchy Resolver

PURPOSE:
  Answers parent/level/ancestor-chain queries over the administrative
  tree and validates region writes so the tree can never contain a cycle.

WHY WRITE-TIME VALIDATION:
  Ancestor walks are unbounded loops over parent pointers. Rather than
  guarding every traversal, ValidateRegion rejects any write that would
  let a walk revisit a region (ErrCycleDetected) or exceed a sane depth.
  Every read path can then assume the invariant holds; maxDepth remains
  as a hard stop against data corrupted outside this code path.

CONTRACT:
  Level(regionID)          -> the region's hierarchy level
  Parent(regionID)         -> parent region, nil for the root
  AncestorChain(regionID)  -> root-to-self ordered list

SEE ALSO:
  - escalate.go: Uses Parent to walk a case up the tree
  - store.go: RegionStore the resolver reads from
*/
package grievance

import (
	"context"
	"fmt"
)

// maxDepth bounds ancestor walks. Real administrative hierarchies are a
// handful of tiers deep; anything past this is corruption.
const maxDepth = 32

// Resolver answers hierarchy queries over a RegionStore. It holds no
// state of its own: every query reads fresh records so administrative
// edits take effect immediately.
type Resolver struct {
	Regions RegionStore
}

func NewResolver(regions RegionStore) *Resolver {
	return &Resolver{Regions: regions}
}

// Level returns the hierarchy level of the given region.
func (r *Resolver) Level(ctx context.Context, id RegionID) (HierarchyLevel, error) {
	region, err := r.Regions.GetRegion(ctx, id)
	if err != nil {
		return HierarchyLevel{}, err
	}
	return r.Regions.GetLevel(ctx, region.LevelID)
}

// Parent returns the parent region, or nil when id is the root.
func (r *Resolver) Parent(ctx context.Context, id RegionID) (*AdministrativeRegion, error) {
	region, err := r.Regions.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	if region.ParentID == nil {
		return nil, nil
	}
	parent, err := r.Regions.GetRegion(ctx, *region.ParentID)
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// AncestorChain returns the regions from the root down to (and including)
// the given region. The walk terminates because cycles are rejected at
// write time; maxDepth is a hard stop against corrupted data.
func (r *Resolver) AncestorChain(ctx context.Context, id RegionID) ([]AdministrativeRegion, error) {
	var chain []AdministrativeRegion
	current := id
	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return nil, fmt.Errorf("ancestor chain for %q exceeds depth %d: %w", id, maxDepth, ErrCycleDetected)
		}
		region, err := r.Regions.GetRegion(ctx, current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, region)
		if region.ParentID == nil {
			break
		}
		current = *region.ParentID
	}
	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ValidateRegion checks that persisting the candidate keeps the hierarchy
// acyclic. Following parent pointers from the candidate must never
// revisit the candidate nor exceed maxDepth. The candidate's own record
// is taken from the argument, not the store, so updates are validated
// against their new parent.
func (r *Resolver) ValidateRegion(ctx context.Context, candidate AdministrativeRegion) error {
	if candidate.ParentID == nil {
		return nil
	}
	if *candidate.ParentID == candidate.ID {
		return &CycleError{RegionID: candidate.ID, Via: candidate.ID}
	}
	current := *candidate.ParentID
	for depth := 1; ; depth++ {
		if depth >= maxDepth {
			return fmt.Errorf("region %q: parent chain exceeds depth %d: %w", candidate.ID, maxDepth, ErrCycleDetected)
		}
		region, err := r.Regions.GetRegion(ctx, current)
		if err != nil {
			return err
		}
		if region.ID == candidate.ID {
			return &CycleError{RegionID: candidate.ID, Via: current}
		}
		if region.ParentID == nil {
			return nil
		}
		current = *region.ParentID
	}
}

// SaveRegion validates and persists a region in one step. This is the
// write path the API layer uses; ValidateRegion stays public for callers
// that batch writes.
func (r *Resolver) SaveRegion(ctx context.Context, region AdministrativeRegion) error {
	if _, err := r.Regions.GetLevel(ctx, region.LevelID); err != nil {
		return err
	}
	if err := r.ValidateRegion(ctx, region); err != nil {
		return err
	}
	return r.Regions.SaveRegion(ctx, region)
}
