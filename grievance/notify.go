/*
notify.go - Notification dispatcher collaborator interface

PURPOSE:
  The engine never sends email or SMS itself. It requests messages
  through the Dispatcher interface and an external messaging collaborator
  does the delivery (and owns retry/backoff).

FIRE-AND-FORGET:
  Dispatch happens after the case transaction commits. A delivery failure
  is logged and counted but never rolls back persisted SLA or escalation
  state.

EVENT TYPES:
  reminder      - lane entered NearingDue (fired once per crossing)
  breach        - lane entered Breached (fired once, edge-triggered)
  escalated     - case moved to its parent region
  sweepSummary  - operator digest after a sweep with escalations/errors
*/
package grievance

import (
	"context"
	"log"
)

// EventType classifies a notification request.
type EventType string

const (
	EventReminder     EventType = "reminder"
	EventBreach       EventType = "breach"
	EventEscalated    EventType = "escalated"
	EventSweepSummary EventType = "sweepSummary"
)

// Event is a notification request handed to the external messaging
// collaborator. Context carries event-specific details (lane, due date,
// regions, counters); templating is the collaborator's problem.
type Event struct {
	Type    EventType
	CaseID  CaseID
	Context map[string]string
}

// Dispatcher is implemented by the external messaging collaborator.
type Dispatcher interface {
	Send(ctx context.Context, event Event) error
}

// =============================================================================
// LOG DISPATCHER - Default stand-in implementation
// =============================================================================

// LogDispatcher writes every request to the process log. Used in dev and
// as the default when no messaging collaborator is wired.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, event Event) error {
	log.Printf("[Notify] %s case=%s ctx=%v", event.Type, event.CaseID, event.Context)
	return nil
}

// dispatchAll sends every effect's notification, logging failures.
// Returns the count actually handed off without error.
func dispatchAll(ctx context.Context, d Dispatcher, events []Event) int {
	sent := 0
	for _, ev := range events {
		if err := d.Send(ctx, ev); err != nil {
			log.Printf("[Notify] %v: %v", ErrNotificationDelivery, err)
			continue
		}
		sent++
	}
	return sent
}

// laneContext builds the common context fields for lane events.
func laneContext(lane Lane, due Date) map[string]string {
	return map[string]string{
		"lane": string(lane),
		"due":  due.String(),
	}
}
