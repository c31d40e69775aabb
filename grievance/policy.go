/*
policy.go - SLA Policy Registry

PURPOSE:
  Per (project, hierarchy level) SLA configuration: how many business
  days a region at that level has to acknowledge and to resolve a case,
  how far ahead of the resolution deadline to remind, and whether a
  breach escalates automatically.

INVARIANTS (enforced on write, never clamped):
  AckDays < ResolutionDays
  ReminderBeforeDays < ResolutionDays
  AckDays, ResolutionDays > 0; ReminderBeforeDays >= 0

NO CACHING:
  PolicyFor reads fresh from the store at every computation. An
  administrator shortening District's resolution window takes effect on
  the very next sweep with no invalidation machinery.

SEE ALSO:
  - statemachine.go: Consumes the resolved policy each sweep
  - factory/config.go: Parses level+policy definitions from JSON
*/
package grievance

import "context"

// =============================================================================
// SLA POLICY - Per-level configuration
// =============================================================================

// SLAPolicy is the service-level configuration carried by a hierarchy
// level. All day counts are business days.
type SLAPolicy struct {
	AckDays            int
	ResolutionDays     int
	ReminderBeforeDays int
	AutoEscalate       bool
}

// Validate enforces the policy invariants. Violations are rejected with
// ConfigInvalidError before persistence; values are never clamped.
func (p SLAPolicy) Validate(level LevelID) error {
	switch {
	case p.AckDays <= 0:
		return &ConfigInvalidError{LevelID: level, Field: "ackDays", Detail: "must be positive"}
	case p.ResolutionDays <= 0:
		return &ConfigInvalidError{LevelID: level, Field: "resolutionDays", Detail: "must be positive"}
	case p.ReminderBeforeDays < 0:
		return &ConfigInvalidError{LevelID: level, Field: "reminderBeforeDays", Detail: "must not be negative"}
	case p.AckDays >= p.ResolutionDays:
		return &ConfigInvalidError{LevelID: level, Field: "ackDays", Detail: "must be less than resolutionDays"}
	case p.ReminderBeforeDays >= p.ResolutionDays:
		return &ConfigInvalidError{LevelID: level, Field: "reminderBeforeDays", Detail: "must be less than resolutionDays"}
	}
	return nil
}

// =============================================================================
// REGISTRY - Fresh policy resolution
// =============================================================================

// Registry resolves the SLA policy in force for a case's current region.
type Registry struct {
	Regions RegionStore
}

func NewRegistry(regions RegionStore) *Registry {
	return &Registry{Regions: regions}
}

// PolicyFor returns the policy of the given level. Read fresh on every
// call; administrative edits take effect on the next computation.
func (r *Registry) PolicyFor(ctx context.Context, project ProjectID, level LevelID) (SLAPolicy, error) {
	lvl, err := r.Regions.GetLevel(ctx, level)
	if err != nil {
		return SLAPolicy{}, err
	}
	return lvl.Policy, nil
}

// PolicyForRegion resolves the policy through a region's level. This is
// the lookup the sweep uses: current region -> level -> policy.
func (r *Registry) PolicyForRegion(ctx context.Context, region RegionID) (SLAPolicy, error) {
	reg, err := r.Regions.GetRegion(ctx, region)
	if err != nil {
		return SLAPolicy{}, err
	}
	lvl, err := r.Regions.GetLevel(ctx, reg.LevelID)
	if err != nil {
		return SLAPolicy{}, err
	}
	return lvl.Policy, nil
}

// SaveLevel validates the level's policy and persists it.
func (r *Registry) SaveLevel(ctx context.Context, level HierarchyLevel) error {
	if err := level.Policy.Validate(level.ID); err != nil {
		return err
	}
	return r.Regions.SaveLevel(ctx, level)
}
