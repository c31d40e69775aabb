package grievance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/grievance-engine/grievance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTrackedCase returns a case filed on Thursday under the village
// policy (ack 2bd / resolution 7bd / reminder 2d): ack due Mon Jun 9,
// resolution due Mon Jun 16.
func newTrackedCase() grievance.Case {
	c := grievance.NewCase("case-sm", "GRV-100", testProject, "reg-village", thursday())
	grievance.InitializeDueDates(&c, villagePolicy())
	return c
}

func notifications(effects []grievance.Effect) []grievance.Event {
	var evs []grievance.Event
	for _, eff := range effects {
		if eff.Kind == grievance.EffectNotificationRequested {
			evs = append(evs, eff.Event)
		}
	}
	return evs
}

func hasEscalationTrigger(effects []grievance.Effect) bool {
	for _, eff := range effects {
		if eff.Kind == grievance.EffectEscalationTriggered {
			return true
		}
	}
	return false
}

// =============================================================================
// LANE EVALUATION TESTS
// =============================================================================

func TestEvaluateLanes_FarFromDue_StaysOnTime(t *testing.T) {
	c := newTrackedCase()

	effects := grievance.EvaluateLanes(&c, villagePolicy(), thursday(), time.Now())

	assert.Empty(t, effects)
	assert.Equal(t, grievance.LaneOnTime, c.AckLane)
	assert.Equal(t, grievance.LaneOnTime, c.ResolutionLane)
}

func TestEvaluateLanes_ReminderFiresOnceOnCrossing(t *testing.T) {
	// GIVEN: A case whose ack due date (Jun 9) is 2 days away
	c := newTrackedCase()
	sweepDay := grievance.NewDate(2025, time.June, 7)

	// WHEN: The sweep observes the lane entering its reminder window
	effects := grievance.EvaluateLanes(&c, villagePolicy(), sweepDay, time.Now())

	// THEN: One ack-lane reminder, NearingDue recorded
	evs := notifications(effects)
	require.Len(t, evs, 1)
	assert.Equal(t, grievance.EventReminder, evs[0].Type)
	assert.Equal(t, string(grievance.LaneAck), evs[0].Context["lane"])
	assert.Equal(t, grievance.LaneNearingDue, c.AckLane)

	// AND WHEN: The next sweep observes the same window
	effects = grievance.EvaluateLanes(&c, villagePolicy(), sweepDay.AddDays(1), time.Now())

	// THEN: Still NearingDue, no duplicate reminder
	assert.Empty(t, notifications(effects))
	assert.Equal(t, grievance.LaneNearingDue, c.AckLane)
}

func TestEvaluateLanes_BreachIsEdgeTriggeredAndSticky(t *testing.T) {
	// GIVEN: A case one day past its ack due date
	c := newTrackedCase()
	dayAfterAckDue := grievance.NewDate(2025, time.June, 10)
	now := time.Date(2025, time.June, 10, 6, 0, 0, 0, time.UTC)

	// WHEN: The first sweep observes the breach
	effects := grievance.EvaluateLanes(&c, villagePolicy(), dayAfterAckDue, now)

	// THEN: Breached, timestamp stamped once, one breach notification
	evs := notifications(effects)
	require.Len(t, evs, 1)
	assert.Equal(t, grievance.EventBreach, evs[0].Type)
	assert.Equal(t, grievance.LaneBreached, c.AckLane)
	require.NotNil(t, c.AckBreachedAt)
	firstStamp := *c.AckBreachedAt

	// AND WHEN: A later sweep sees the same case
	later := now.Add(24 * time.Hour)
	effects = grievance.EvaluateLanes(&c, villagePolicy(), dayAfterAckDue.AddDays(1), later)

	// THEN: No second notification, timestamp unchanged
	assert.Empty(t, notifications(effects))
	assert.Equal(t, grievance.LaneBreached, c.AckLane)
	assert.Equal(t, firstStamp, *c.AckBreachedAt)
}

func TestEvaluateLanes_ResolutionBreachTriggersEscalation(t *testing.T) {
	c := newTrackedCase()
	pastResolutionDue := grievance.NewDate(2025, time.June, 17)

	effects := grievance.EvaluateLanes(&c, villagePolicy(), pastResolutionDue, time.Now())

	assert.True(t, hasEscalationTrigger(effects))
	assert.Equal(t, grievance.LaneBreached, c.ResolutionLane)
}

func TestEvaluateLanes_AckBreachDoesNotTriggerEscalation(t *testing.T) {
	c := newTrackedCase()
	// Past ack due (Jun 9), inside the resolution reminder window.
	sweepDay := grievance.NewDate(2025, time.June, 10)

	effects := grievance.EvaluateLanes(&c, villagePolicy(), sweepDay, time.Now())

	assert.False(t, hasEscalationTrigger(effects))
	assert.Equal(t, grievance.LaneBreached, c.AckLane)
}

func TestEvaluateLanes_CompletedLaneIsSkipped(t *testing.T) {
	// GIVEN: An acknowledged case far past its ack due date
	c := newTrackedCase()
	require.NoError(t, grievance.RecordAcknowledgment(&c, time.Now()))

	effects := grievance.EvaluateLanes(&c, villagePolicy(), grievance.NewDate(2025, time.June, 12), time.Now())

	// THEN: The completed ack lane never breaches; resolution keeps tracking
	assert.Empty(t, notifications(effects))
	assert.Equal(t, grievance.LaneCompleted, c.AckLane)
	assert.Nil(t, c.AckBreachedAt)
}

func TestEvaluateLanes_TerminalCaseUntouched(t *testing.T) {
	c := newTrackedCase()
	require.NoError(t, grievance.RecordResolution(&c, time.Now()))

	effects := grievance.EvaluateLanes(&c, villagePolicy(), grievance.NewDate(2025, time.July, 1), time.Now())

	assert.Empty(t, effects)
}

// =============================================================================
// MILESTONE TESTS
// =============================================================================

func TestRecordAcknowledgment(t *testing.T) {
	c := newTrackedCase()

	err := grievance.RecordAcknowledgment(&c, time.Now())

	require.NoError(t, err)
	assert.Equal(t, grievance.LaneCompleted, c.AckLane)
	assert.Equal(t, grievance.StatusAcknowledged, c.Status)
	assert.NotNil(t, c.AcknowledgedAt)
	// Resolution keeps tracking independently.
	assert.Equal(t, grievance.LaneOnTime, c.ResolutionLane)
}

func TestRecordAcknowledgment_AfterBreach_StillCompletes(t *testing.T) {
	// A late acknowledgment completes the lane even though it breached
	// first; the breach timestamp stays for reporting.
	c := newTrackedCase()
	grievance.EvaluateLanes(&c, villagePolicy(), grievance.NewDate(2025, time.June, 10), time.Now())
	require.Equal(t, grievance.LaneBreached, c.AckLane)

	require.NoError(t, grievance.RecordAcknowledgment(&c, time.Now()))

	assert.Equal(t, grievance.LaneCompleted, c.AckLane)
	assert.NotNil(t, c.AckBreachedAt)
}

func TestRecordResolution_CompletesBothLanes(t *testing.T) {
	c := newTrackedCase()

	require.NoError(t, grievance.RecordResolution(&c, time.Now()))

	assert.Equal(t, grievance.StatusResolved, c.Status)
	assert.Equal(t, grievance.LaneCompleted, c.ResolutionLane)
	assert.Equal(t, grievance.LaneCompleted, c.AckLane)
	assert.NotNil(t, c.ResolvedAt)
}

func TestRecordResolution_BreachedAckLaneStaysBreached(t *testing.T) {
	// GIVEN: The ack lane already breached
	c := newTrackedCase()
	grievance.EvaluateLanes(&c, villagePolicy(), grievance.NewDate(2025, time.June, 10), time.Now())
	require.Equal(t, grievance.LaneBreached, c.AckLane)

	// WHEN: The case is resolved
	require.NoError(t, grievance.RecordResolution(&c, time.Now()))

	// THEN: The breach record survives resolution
	assert.Equal(t, grievance.LaneBreached, c.AckLane)
	assert.Equal(t, grievance.LaneCompleted, c.ResolutionLane)
}

func TestMilestones_TerminalCaseRejected(t *testing.T) {
	c := newTrackedCase()
	require.NoError(t, grievance.RecordResolution(&c, time.Now()))

	assert.ErrorIs(t, grievance.RecordAcknowledgment(&c, time.Now()), grievance.ErrCaseTerminal)
	assert.ErrorIs(t, grievance.RecordResolution(&c, time.Now()), grievance.ErrCaseTerminal)
}
