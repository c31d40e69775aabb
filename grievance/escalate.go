/*
escalate.go - Escalation Engine

PURPOSE:
  Moves a breached case one step up the region tree: District handles
  what Village failed to resolve. Escalation resets the SLA clock (the
  receiving level gets its full policy window, not the remainder of the
  old one) and appends an audit record the engine alone may write.

AUTOMATIC PATH (sweep-driven):
  CheckAndEscalate: resolution lane Breached + current level's
  AutoEscalate + non-terminal status -> Escalate with the breach reason.

MANUAL PATH:
  EscalateCase: reuses Escalate, bypassing the breach/auto-escalate
  preconditions. Still requires a parent region and a non-empty reason.
  Authorization of the actor is the API collaborator's problem.

ROOT BEHAVIOR:
  A case already at the root cannot go anywhere. Escalate returns false
  without touching the case; the sweep surfaces it as EscalationBlocked
  for manual follow-up.

A case escalated into a level whose policy yields an already-passed due
date does NOT re-escalate in the same call; the next sweep picks it up.

SEE ALSO:
  - hierarchy.go: Parent lookup
  - statemachine.go: Lane reinitialization after the clock reset
  - sweep.go: Drives CheckAndEscalate
*/
package grievance

import (
	"context"
	"fmt"
	"time"
)

// Engine performs escalations. It needs the resolver for parent walks
// and the registry to fetch the receiving level's policy.
type Engine struct {
	Resolver *Resolver
	Registry *Registry
}

func NewEngine(resolver *Resolver, registry *Registry) *Engine {
	return &Engine{Resolver: resolver, Registry: registry}
}

// EscalationOutcome reports what CheckAndEscalate did.
type EscalationOutcome struct {
	Escalated bool
	// Blocked is set when every automatic precondition held but the
	// region has no parent. Non-fatal: the case stays Breached and needs
	// manual handling.
	Blocked bool
	Events  []Event
}

// CheckAndEscalate escalates when all automatic preconditions hold:
// resolution lane Breached, current level auto-escalates, and the case
// is non-terminal. Events are the notification requests for the caller
// to dispatch after persisting.
func (e *Engine) CheckAndEscalate(ctx context.Context, c *Case, now time.Time) (EscalationOutcome, error) {
	if c.Status.IsTerminal() || c.ResolutionLane != LaneBreached {
		return EscalationOutcome{}, nil
	}
	level, err := e.Resolver.Level(ctx, c.RegionID)
	if err != nil {
		return EscalationOutcome{}, err
	}
	if !level.Policy.AutoEscalate {
		return EscalationOutcome{}, nil
	}
	escalated, events, err := e.Escalate(ctx, c, ReasonResolutionBreach, "", "", now)
	if err != nil {
		return EscalationOutcome{}, err
	}
	return EscalationOutcome{Escalated: escalated, Blocked: !escalated, Events: events}, nil
}

// Escalate moves the case to its parent region and restarts the SLA
// clock there. Returns false (with no mutation) when the current region
// has no parent; that condition is non-fatal and is counted by the sweep
// as EscalationBlocked.
//
// On success the case's history gains a record, the clock restarts at
// now, due dates are recomputed from the receiving level's policy,
// non-completed lanes restart at OnTime with breach markers cleared
// (deadlines are now tracked against the new level), and an "escalated"
// notification is requested.
func (e *Engine) Escalate(ctx context.Context, c *Case, reason EscalationReason, note, actor string, now time.Time) (bool, []Event, error) {
	if c.Status.IsTerminal() {
		return false, nil, ErrCaseTerminal
	}

	parent, err := e.Resolver.Parent(ctx, c.RegionID)
	if err != nil {
		return false, nil, err
	}
	if parent == nil {
		return false, nil, nil
	}

	policy, err := e.Registry.PolicyForRegion(ctx, parent.ID)
	if err != nil {
		return false, nil, err
	}

	from := c.RegionID
	c.History = append(c.History, EscalationRecord{
		FromRegion: from,
		ToRegion:   parent.ID,
		At:         now,
		Reason:     reason,
		Note:       note,
		Actor:      actor,
	})
	c.RegionID = parent.ID
	c.ClockStart = DateOf(now)
	InitializeDueDates(c, policy)
	reinitializeLanes(c)
	c.EscalationCount++
	stamped := now
	c.LastEscalatedAt = &stamped

	events := []Event{{
		Type:   EventEscalated,
		CaseID: c.ID,
		Context: map[string]string{
			"from":   string(from),
			"to":     string(parent.ID),
			"reason": string(reason),
		},
	}}
	return true, events, nil
}

// reinitializeLanes restarts non-completed lanes after a clock reset.
// Breach markers are cleared and the lanes return to OnTime; if the new
// policy already puts a lane inside its reminder window or past due, the
// next sweep observes that crossing and fires its notification.
func reinitializeLanes(c *Case) {
	if c.AckLane != LaneCompleted {
		c.AckBreachedAt = nil
		c.AckLane = LaneOnTime
	}
	if c.ResolutionLane != LaneCompleted {
		c.ResolutionBreachedAt = nil
		c.ResolutionLane = LaneOnTime
	}
}

// =============================================================================
// MANUAL ESCALATION - Externally-authorized entry point
// =============================================================================

// EscalateCase is the manual action entry point exposed to the API
// layer. It requires a non-empty reason; actor authorization is entirely
// the caller's responsibility. Runs inside one store transaction so a
// concurrent sweep cannot interleave with the region change.
func (e *Engine) EscalateCase(ctx context.Context, store TxCaseStore, dispatcher Dispatcher, caseID CaseID, actorID, reason string, now time.Time) (bool, error) {
	if reason == "" {
		return false, ErrReasonRequired
	}

	var escalated bool
	var events []Event
	err := store.WithTx(ctx, func(s CaseStore) error {
		c, err := s.GetCase(ctx, caseID)
		if err != nil {
			return err
		}
		escalated, events, err = e.Escalate(ctx, &c, ReasonManual, reason, actorID, now)
		if err != nil {
			return err
		}
		if !escalated {
			return nil
		}
		return s.SaveCase(ctx, c)
	})
	if err != nil {
		return false, fmt.Errorf("manual escalation of %q: %w", caseID, err)
	}
	if escalated && dispatcher != nil {
		dispatchAll(ctx, dispatcher, events)
	}
	return escalated, nil
}
