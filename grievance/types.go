/*
Package grievance provides the core SLA tracking and escalation engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking
  citizen grievances against service-level deadlines. A case is filed in
  an administrative region, the region's hierarchy level carries an SLA
  policy, and the engine computes due dates, tracks on-time/nearing-due/
  breached status per lane, and escalates breached cases up the region
  tree.

KEY CONCEPTS IN THIS FILE (types.go):
  - AdministrativeRegion: A node in the jurisdictional hierarchy tree
  - HierarchyLevel: A tier of the tree (village/district/province) with
    its own SLAPolicy
  - Case: A grievance record with per-lane SLA state and escalation audit
  - Lane: One of the two independently tracked SLA tracks
    (acknowledgment, resolution)

DESIGN PRINCIPLES:
  1. Flat records: Regions reference each other by identity, never by
     embedding. Ancestor walks are repeated index lookups; cycles are
     rejected at write time, not guarded at traversal time.
  2. Ownership: Lane states are owned by the state machine; escalation
     history is append-only and owned by the escalation engine.
  3. Edge-triggered transitions: Breach/reminder side effects fire on the
     first observation only, so sweep re-runs are idempotent.
  4. Type Safety: Strong typing for IDs prevents mixing region, level,
     case, and project identifiers.

USAGE:
  c := grievance.NewCase("case-1", "GRV-2025-0001", "proj-1", "region-v1", clockStart)
  grievance.InitializeDueDates(&c, policy)

SEE ALSO:
  - calendar.go: Business-day date arithmetic
  - statemachine.go: Per-lane transition rules
  - escalate.go: Breach-driven escalation up the hierarchy
  - sweep.go: The daily monitor job
*/
package grievance

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type RegionID string
type LevelID string
type CaseID string

// =============================================================================
// ADMINISTRATIVE REGION - Node in the jurisdiction tree
// =============================================================================

// AdministrativeRegion is a flat record in the jurisdiction tree.
// The tree is expressed through ParentID only; a nil ParentID marks the
// root. Each project has exactly one root and no cycles (validated at
// write time, see hierarchy.go).
type AdministrativeRegion struct {
	ID        RegionID
	Name      string
	ProjectID ProjectID
	LevelID   LevelID
	ParentID  *RegionID // nil = root region
}

// IsRoot reports whether this region has no parent.
func (r AdministrativeRegion) IsRoot() bool { return r.ParentID == nil }

// =============================================================================
// HIERARCHY LEVEL - Tier of the tree carrying the SLA policy
// =============================================================================

// HierarchyLevel is a tier of the region tree (e.g., village, district,
// province). Rank is unique per project; lower rank = closer to the leaf.
// The level owns the SLA policy applied to every case currently routed to
// one of its regions.
type HierarchyLevel struct {
	ID        LevelID
	Name      string
	ProjectID ProjectID
	Rank      int
	Policy    SLAPolicy
}

// =============================================================================
// CASE - Grievance record with SLA state
// =============================================================================

// CaseStatus is the lifecycle status of a grievance.
type CaseStatus string

const (
	StatusOpen         CaseStatus = "open"
	StatusInProgress   CaseStatus = "in_progress"
	StatusAcknowledged CaseStatus = "acknowledged"
	StatusResolved     CaseStatus = "resolved"
	StatusClosed       CaseStatus = "closed"
)

// IsTerminal reports whether SLA tracking has ended for this status.
func (s CaseStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// LaneState is the SLA status of a single lane.
type LaneState string

const (
	LaneOnTime     LaneState = "on_time"
	LaneNearingDue LaneState = "nearing_due"
	LaneBreached   LaneState = "breached"
	LaneCompleted  LaneState = "completed"
)

// Lane identifies one of the two SLA tracks.
type Lane string

const (
	LaneAck        Lane = "acknowledgment"
	LaneResolution Lane = "resolution"
)

// Case is a grievance tracked from intake to resolution.
//
// The SLA clock (ClockStart) is set at creation and reset at every
// escalation; escalation does not preserve elapsed time. Due dates are
// always derived from the policy of the *current* region's level.
type Case struct {
	ID           CaseID
	TrackingCode string
	ProjectID    ProjectID
	RegionID     RegionID
	Status       CaseStatus

	ClockStart    Date
	AckDue        Date
	ResolutionDue Date

	AckLane        LaneState
	ResolutionLane LaneState

	AckBreachedAt        *time.Time
	ResolutionBreachedAt *time.Time
	AcknowledgedAt       *time.Time
	ResolvedAt           *time.Time

	EscalationCount int
	LastEscalatedAt *time.Time
	History         []EscalationRecord
}

// NewCase creates an open case with both lanes on time. Due dates are not
// set; call InitializeDueDates with the region's level policy.
func NewCase(id CaseID, trackingCode string, project ProjectID, region RegionID, clockStart Date) Case {
	return Case{
		ID:             id,
		TrackingCode:   trackingCode,
		ProjectID:      project,
		RegionID:       region,
		Status:         StatusOpen,
		ClockStart:     clockStart,
		AckLane:        LaneOnTime,
		ResolutionLane: LaneOnTime,
	}
}

// LaneStateOf returns the current state of the given lane.
func (c *Case) LaneStateOf(lane Lane) LaneState {
	if lane == LaneAck {
		return c.AckLane
	}
	return c.ResolutionLane
}

// =============================================================================
// ESCALATION RECORD - Append-only audit of routing changes
// =============================================================================

// EscalationReason classifies why a case was escalated.
type EscalationReason string

const (
	ReasonResolutionBreach EscalationReason = "resolution_breach"
	ReasonManual           EscalationReason = "manual"
)

// EscalationRecord is one hop of a case up the region tree. Records are
// append-only; the escalation engine is the only writer.
type EscalationRecord struct {
	FromRegion RegionID
	ToRegion   RegionID
	At         time.Time
	Reason     EscalationReason
	Note       string
	Actor      string // empty for automatic escalations
}
