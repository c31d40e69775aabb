/*
sweep.go - Daily Monitor Job

PURPOSE:
  One scheduled pass over every open case: re-resolve the policy from the
  case's current region, run the lane state machine, escalate fresh
  resolution breaches where the level auto-escalates, persist, dispatch
  notifications.

CONTINUE-ON-ERROR:
  Each case is an independent unit of work. A failure is caught, logged,
  counted, and the sweep moves on. The aggregate summary, not any single
  caller, receives the errors.

ATOMICITY:
  The per-case read-evaluate-persist cycle (transition plus optional
  escalation) runs inside one store transaction, so a human edit racing
  the sweep cannot produce a lost update. Notification dispatch happens
  after commit and is fire-and-forget: a delivery failure never rolls
  back persisted state.

IDEMPOTENCE:
  All transitions are edge-triggered (first occurrence only), so an
  interrupted sweep can simply be re-run: already-persisted cases are
  recomputed to the same state with no duplicate notifications.

SEE ALSO:
  - api/scheduler.go: Invokes RunSweep on a fixed cadence
  - statemachine.go / escalate.go: The per-case work
*/
package grievance

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
)

// =============================================================================
// SWEEP SUMMARY - Aggregate counters for one run
// =============================================================================

// SweepSummary is the aggregate result of one monitor pass.
type SweepSummary struct {
	Processed         int
	RemindersSent     int
	Breached          int
	Escalated         int
	EscalationBlocked int
	Errors            int
}

// NeedsOperatorAttention reports whether the run should produce an
// operator summary notification.
func (s SweepSummary) NeedsOperatorAttention() bool {
	return s.Escalated > 0 || s.Errors > 0
}

func (s SweepSummary) context() map[string]string {
	return map[string]string{
		"processed":         strconv.Itoa(s.Processed),
		"remindersSent":     strconv.Itoa(s.RemindersSent),
		"breached":          strconv.Itoa(s.Breached),
		"escalated":         strconv.Itoa(s.Escalated),
		"escalationBlocked": strconv.Itoa(s.EscalationBlocked),
		"errors":            strconv.Itoa(s.Errors),
	}
}

// =============================================================================
// MONITOR - The sweep driver
// =============================================================================

// Monitor runs the daily sweep. Clock is injectable for tests; when nil,
// time.Now is used.
type Monitor struct {
	Store      Store
	Registry   *Registry
	Engine     *Engine
	Dispatcher Dispatcher
	Clock      func() time.Time
}

func NewMonitor(store Store, registry *Registry, engine *Engine, dispatcher Dispatcher) *Monitor {
	return &Monitor{
		Store:      store,
		Registry:   registry,
		Engine:     engine,
		Dispatcher: dispatcher,
	}
}

func (m *Monitor) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// RunSweep iterates all non-terminal cases and updates each one
// independently. The returned summary is always valid, even when some
// cases failed; the error is non-nil only when the sweep could not run
// at all (e.g., the open-case listing failed).
func (m *Monitor) RunSweep(ctx context.Context) (SweepSummary, error) {
	now := m.now()
	today := DateOf(now)
	var summary SweepSummary

	cases, err := m.Store.ListOpenCases(ctx)
	if err != nil {
		return summary, fmt.Errorf("sweep: listing open cases: %w", err)
	}

	for _, open := range cases {
		events, err := m.processCase(ctx, open.ID, today, now, &summary)
		if err != nil {
			summary.Errors++
			log.Printf("[Sweep] %v", &SweepCaseError{CaseID: open.ID, Err: err})
			continue
		}
		summary.Processed++

		// Dispatch after commit; failures are logged, never rolled back.
		for _, ev := range events {
			if sendErr := m.Dispatcher.Send(ctx, ev); sendErr != nil {
				log.Printf("[Sweep] %v: case=%s event=%s: %v", ErrNotificationDelivery, open.ID, ev.Type, sendErr)
				continue
			}
			if ev.Type == EventReminder {
				summary.RemindersSent++
			}
		}
	}

	if summary.NeedsOperatorAttention() {
		ev := Event{Type: EventSweepSummary, Context: summary.context()}
		if err := m.Dispatcher.Send(ctx, ev); err != nil {
			log.Printf("[Sweep] %v: operator summary: %v", ErrNotificationDelivery, err)
		}
	}

	log.Printf("[Sweep] Completed: %d processed, %d reminders, %d breached, %d escalated, %d blocked, %d errors",
		summary.Processed, summary.RemindersSent, summary.Breached, summary.Escalated,
		summary.EscalationBlocked, summary.Errors)
	return summary, nil
}

// processCase runs the read-evaluate-persist cycle for one case inside a
// store transaction and returns the notification events to dispatch.
func (m *Monitor) processCase(ctx context.Context, id CaseID, today Date, now time.Time, summary *SweepSummary) ([]Event, error) {
	var events []Event

	err := m.Store.WithTx(ctx, func(s CaseStore) error {
		// Re-read inside the transaction: a human may have moved the case
		// since the listing.
		c, err := s.GetCase(ctx, id)
		if err != nil {
			return err
		}
		if c.Status.IsTerminal() {
			return nil
		}

		policy, err := m.Registry.PolicyForRegion(ctx, c.RegionID)
		if err != nil {
			return err
		}

		effects := EvaluateLanes(&c, policy, today, now)
		escalationDue := false
		for _, eff := range effects {
			switch eff.Kind {
			case EffectNotificationRequested:
				events = append(events, eff.Event)
				if eff.Event.Type == EventBreach {
					summary.Breached++
				}
			case EffectEscalationTriggered:
				escalationDue = true
			}
		}

		if escalationDue {
			outcome, err := m.Engine.CheckAndEscalate(ctx, &c, now)
			if err != nil {
				return err
			}
			if outcome.Escalated {
				summary.Escalated++
				events = append(events, outcome.Events...)
			}
			if outcome.Blocked {
				summary.EscalationBlocked++
				log.Printf("[Sweep] %v: case=%s region=%s", ErrEscalationBlocked, c.ID, c.RegionID)
			}
		}

		return s.SaveCase(ctx, c)
	})
	if err != nil {
		// The transaction rolled back; drop its events.
		return nil, err
	}
	return events, nil
}
