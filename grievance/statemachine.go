/*
statemachine.go - Dual-lane SLA state machine

PURPOSE:
  Each open case carries two independent SLA lanes: acknowledgment and
  resolution. Every sweep re-derives each lane's status from its due date
  and the sweep date:

    OnTime -> NearingDue -> Breached
        \         \            (sticky)
         `---------`--> Completed (milestone recorded, any time)

TRANSITION RULES (per lane, non-terminal cases only):
  1. Breach timestamp already set      -> Breached (never reverts)
  2. due - today < 0                   -> Breached; stamp *BreachedAt once,
                                          request a breach notification on
                                          this edge only
  3. due - today <= reminderBeforeDays -> NearingDue; request a reminder
                                          only when the previous recorded
                                          state was OnTime
  4. otherwise                         -> OnTime

  Completed wins unconditionally: once the real-world milestone is
  recorded the lane is excluded from sweep updates.

EFFECT LIST:
  EvaluateLanes mutates the case and returns the side effects the caller
  must execute (notification requests, an escalation trigger). The
  original system did this with implicit on-save hooks; here persistence
  and dispatch are decoupled through the returned list.

SEE ALSO:
  - escalate.go: Consumes EffectEscalationTriggered
  - sweep.go: Drives evaluation for every open case
*/
package grievance

import "time"

// =============================================================================
// EFFECTS - Side-effect requests returned to the caller
// =============================================================================

// EffectKind tags a side effect produced by a state transition.
type EffectKind string

const (
	EffectNotificationRequested EffectKind = "notification_requested"
	EffectEscalationTriggered   EffectKind = "escalation_triggered"
)

// Effect is one side-effect request. Notification effects carry the
// event; the escalation effect tells the sweep to run CheckAndEscalate.
type Effect struct {
	Kind  EffectKind
	Event Event // set for EffectNotificationRequested
	Lane  Lane
}

// =============================================================================
// LANE EVALUATION
// =============================================================================

// EvaluateLanes runs the transition rules for both lanes of a
// non-terminal case. today is the sweep date, now the audit timestamp
// for breach markers. The case is mutated in place; returned effects are
// for the caller to execute after persisting.
func EvaluateLanes(c *Case, policy SLAPolicy, today Date, now time.Time) []Effect {
	if c.Status.IsTerminal() {
		return nil
	}

	var effects []Effect
	effects = append(effects, evaluateLane(c, LaneAck, policy, today, now)...)
	effects = append(effects, evaluateLane(c, LaneResolution, policy, today, now)...)
	return effects
}

func evaluateLane(c *Case, lane Lane, policy SLAPolicy, today Date, now time.Time) []Effect {
	state, due, breachedAt := laneFields(c, lane)
	if *state == LaneCompleted {
		return nil
	}

	// Sticky breach: once the marker is set the lane stays Breached until
	// completion or escalation reinitializes it.
	if *breachedAt != nil {
		*state = LaneBreached
		return nil
	}

	remaining := today.DaysUntil(*due)

	switch {
	case remaining < 0:
		*state = LaneBreached
		stamped := now
		*breachedAt = &stamped
		effects := []Effect{{
			Kind:  EffectNotificationRequested,
			Lane:  lane,
			Event: Event{Type: EventBreach, CaseID: c.ID, Context: laneContext(lane, *due)},
		}}
		if lane == LaneResolution {
			effects = append(effects, Effect{Kind: EffectEscalationTriggered, Lane: lane})
		}
		return effects

	case remaining <= policy.ReminderBeforeDays:
		previous := *state
		*state = LaneNearingDue
		// Reminder fires on the OnTime -> NearingDue edge only;
		// re-observing NearingDue on later sweeps is silent.
		if previous == LaneOnTime {
			return []Effect{{
				Kind:  EffectNotificationRequested,
				Lane:  lane,
				Event: Event{Type: EventReminder, CaseID: c.ID, Context: laneContext(lane, *due)},
			}}
		}
		return nil

	default:
		*state = LaneOnTime
		return nil
	}
}

// laneFields returns pointers into the case for the given lane.
func laneFields(c *Case, lane Lane) (state *LaneState, due *Date, breachedAt **time.Time) {
	if lane == LaneAck {
		return &c.AckLane, &c.AckDue, &c.AckBreachedAt
	}
	return &c.ResolutionLane, &c.ResolutionDue, &c.ResolutionBreachedAt
}

// =============================================================================
// MILESTONES - Case-mutation entry points
// =============================================================================

// RecordAcknowledgment marks the acknowledgment milestone. The ack lane
// completes immediately and permanently, regardless of what a sweep
// would otherwise compute.
func RecordAcknowledgment(c *Case, at time.Time) error {
	if c.Status.IsTerminal() {
		return ErrCaseTerminal
	}
	stamped := at
	c.AcknowledgedAt = &stamped
	c.AckLane = LaneCompleted
	if c.Status == StatusOpen {
		c.Status = StatusAcknowledged
	}
	return nil
}

// RecordResolution marks the resolution milestone and ends SLA tracking:
// the status becomes terminal and both lanes are forced to Completed
// unless already breached.
func RecordResolution(c *Case, at time.Time) error {
	if c.Status.IsTerminal() {
		return ErrCaseTerminal
	}
	stamped := at
	c.ResolvedAt = &stamped
	c.Status = StatusResolved
	// The resolved lane completes regardless of state; the other lane is
	// only forced to Completed when it has not breached.
	c.ResolutionLane = LaneCompleted
	if c.AckLane != LaneBreached {
		c.AckLane = LaneCompleted
	}
	return nil
}
