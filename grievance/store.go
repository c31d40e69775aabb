/*
store.go - Persistence collaborator interfaces

PURPOSE:
  Defines the contract between the engine and whatever stores its data.
  The engine never talks to a database directly; the sweep, resolver, and
  registry all work against these interfaces.

KEY INTERFACES:
  RegionStore:  Region and hierarchy-level records
  CaseStore:    Case reads/writes and the open-case listing
  TxCaseStore:  Per-case transactional read-evaluate-persist
  SweepRunStore: Audit records of sweep executions

TRANSACTIONAL CONTRACT:
  The sweep processes each case inside WithTx so that the state-machine
  transition plus optional escalation persist atomically. Last-write-wins
  at the case level is acceptable: the sweep's recomputation is
  deterministic given the then-current region.

WRITE-TIME VALIDATION:
  SaveRegion implementations MUST be fed through Resolver.ValidateRegion
  first (cycle check); SaveLevel through SLAPolicy.Validate. The stores
  themselves stay dumb.

IMPLEMENTATIONS:
  - grievance/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - hierarchy.go: Resolver over RegionStore
  - policy.go: Registry over RegionStore
  - sweep.go: Monitor over TxCaseStore
*/
package grievance

import (
	"context"
	"time"
)

// =============================================================================
// REGION STORE - Regions and hierarchy levels
// =============================================================================

// RegionStore persists the administrative hierarchy. Regions are flat,
// independently addressable records; the tree exists only through
// ParentID references.
type RegionStore interface {
	// GetRegion returns a region or ErrUnknownRegion.
	GetRegion(ctx context.Context, id RegionID) (AdministrativeRegion, error)

	// SaveRegion inserts or updates a region record.
	SaveRegion(ctx context.Context, region AdministrativeRegion) error

	// ListRegions returns all regions of a project.
	ListRegions(ctx context.Context, project ProjectID) ([]AdministrativeRegion, error)

	// GetLevel returns a hierarchy level or ErrUnknownLevel.
	GetLevel(ctx context.Context, id LevelID) (HierarchyLevel, error)

	// SaveLevel inserts or updates a hierarchy level with its SLA policy.
	SaveLevel(ctx context.Context, level HierarchyLevel) error

	// ListLevels returns all levels of a project ordered by rank.
	ListLevels(ctx context.Context, project ProjectID) ([]HierarchyLevel, error)
}

// =============================================================================
// CASE STORE - Grievance records
// =============================================================================

// CaseStore persists cases.
type CaseStore interface {
	// GetCase returns a case or ErrUnknownCase.
	GetCase(ctx context.Context, id CaseID) (Case, error)

	// SaveCase inserts or updates a case, including its lane states and
	// escalation history.
	SaveCase(ctx context.Context, c Case) error

	// ListOpenCases returns all cases whose lifecycle status is
	// non-terminal.
	ListOpenCases(ctx context.Context) ([]Case, error)
}

// TxCaseStore adds per-case transactional execution. fn runs against a
// store view whose writes commit together; any error rolls them back.
type TxCaseStore interface {
	CaseStore
	WithTx(ctx context.Context, fn func(CaseStore) error) error
}

// =============================================================================
// SWEEP RUN STORE - Audit of monitor executions
// =============================================================================

// SweepRun records one execution of the daily monitor job.
type SweepRun struct {
	ID          string
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string // "running", "completed", "failed"
	Summary     SweepSummary
	Error       string
}

// SweepRunStore persists sweep run records for audit and the admin UI.
type SweepRunStore interface {
	SaveSweepRun(ctx context.Context, run SweepRun) error
	ListSweepRuns(ctx context.Context, limit int) ([]SweepRun, error)

	// LastCompletedSweep returns the start time of the most recent
	// completed run, or the zero time when none exists.
	LastCompletedSweep(ctx context.Context) (time.Time, error)
}

// Store bundles everything the engine and its HTTP layer need.
type Store interface {
	RegionStore
	TxCaseStore
	SweepRunStore
}
