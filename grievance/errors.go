/*
errors.go - Centralized error types for the grievance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Configuration errors - Invalid policy or hierarchy writes, rejected
     synchronously before persistence
  2. Lookup errors - Unknown region/case/level identifiers
  3. Operational conditions - Escalation blocked at the root, notification
     delivery failures, per-case sweep failures

SWEEP ERRORS:
  A failure processing one case never aborts the sweep. Per-case errors
  are wrapped as SweepCaseError, counted, and surfaced in the run summary
  rather than propagated to any single caller.

SEE ALSO:
  - hierarchy.go: Returns ErrCycleDetected / ErrUnknownRegion
  - policy.go: Returns ConfigInvalidError
  - sweep.go: Aggregates SweepCaseError
*/
package grievance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfigInvalid is returned when an SLA policy violates its
	// invariants. The write is rejected, never silently clamped.
	ErrConfigInvalid = errors.New("invalid SLA configuration")

	// ErrCycleDetected is returned when a region write would introduce a
	// cycle in the parent-pointer graph.
	ErrCycleDetected = errors.New("region hierarchy cycle detected")

	// ErrUnknownRegion is returned when a region lookup fails.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrUnknownLevel is returned when a hierarchy level lookup fails.
	ErrUnknownLevel = errors.New("unknown hierarchy level")

	// ErrUnknownCase is returned when a case lookup fails.
	ErrUnknownCase = errors.New("unknown case")

	// ErrEscalationBlocked is returned when escalation is requested for a
	// case whose region has no parent. Non-fatal: the case stays breached
	// and requires manual follow-up.
	ErrEscalationBlocked = errors.New("escalation blocked: region has no parent")

	// ErrNotificationDelivery wraps dispatcher failures. Delivery failures
	// are logged and never roll back persisted SLA/escalation state.
	ErrNotificationDelivery = errors.New("notification delivery failed")

	// ErrCaseTerminal is returned when mutating a case whose lifecycle
	// status is terminal (resolved/closed).
	ErrCaseTerminal = errors.New("case is in a terminal status")

	// ErrReasonRequired is returned when a manual escalation is requested
	// without a reason.
	ErrReasonRequired = errors.New("escalation reason required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigInvalidError describes which policy field violated which invariant.
type ConfigInvalidError struct {
	LevelID LevelID
	Field   string
	Detail  string
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("invalid SLA configuration for level %q: %s (%s)", e.LevelID, e.Field, e.Detail)
}

func (e *ConfigInvalidError) Unwrap() error { return ErrConfigInvalid }

// CycleError reports the region whose write would corrupt the hierarchy.
type CycleError struct {
	RegionID RegionID
	Via      RegionID // ancestor at which the walk revisited the candidate
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("region %q: parent chain revisits it via %q", e.RegionID, e.Via)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// SweepCaseError wraps a single case's processing failure during a sweep.
type SweepCaseError struct {
	CaseID CaseID
	Err    error
}

func (e *SweepCaseError) Error() string {
	return fmt.Sprintf("sweep: case %q: %v", e.CaseID, e.Err)
}

func (e *SweepCaseError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownRegion) ||
		errors.Is(err, ErrUnknownLevel) ||
		errors.Is(err, ErrUnknownCase)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrCycleDetected) ||
		errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrCaseTerminal)
}
