/*
scheduler.go - Automated daily sweep scheduler

PURPOSE:
  Periodically runs the SLA monitor so that reminders, breach markers,
  and automatic escalations happen without an operator having to call
  the sweep endpoint.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Skips ticks when a sweep already completed for the current UTC day
  - Records sweep runs for audit and UI display
  - Sweep failures are logged, never fatal; the next tick retries

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSweepScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunSweep endpoint (manual trigger)
  - grievance/sweep.go: Monitor
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/grievance-engine/grievance"
)

// SweepScheduler runs the SLA monitor once per UTC day.
type SweepScheduler struct {
	Store         grievance.Store
	Monitor       *grievance.Monitor
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweepScheduler creates a new scheduler.
func NewSweepScheduler(store grievance.Store, handler *Handler) *SweepScheduler {
	return &SweepScheduler{
		Store:         store,
		Monitor:       handler.Monitor,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SweepScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *SweepScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *SweepScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.checkAndProcess()

	for {
		select {
		case <-ss.ticker.C:
			ss.checkAndProcess()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SweepScheduler) checkAndProcess() {
	ctx := context.Background()
	now := time.Now().UTC()

	last, err := ss.Store.LastCompletedSweep(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error checking last sweep: %v", err)
		return
	}
	if !last.IsZero() && sameUTCDay(last, now) {
		// Already swept today. Tracking is day-granular, so a second
		// run would be a no-op anyway.
		return
	}

	log.Printf("[Scheduler] Running SLA sweep at %v", now.Format(time.RFC3339))

	run := grievance.SweepRun{
		ID:        fmt.Sprintf("sweep-%d", now.UnixNano()),
		StartedAt: now,
		Status:    "running",
	}
	if err := ss.Store.SaveSweepRun(ctx, run); err != nil {
		log.Printf("[Scheduler] Error saving run record: %v", err)
		return
	}

	summary, err := ss.Monitor.RunSweep(ctx)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Summary = summary
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	} else {
		run.Status = "completed"
	}

	if err := ss.Store.SaveSweepRun(ctx, run); err != nil {
		log.Printf("[Scheduler] Error updating run record: %v", err)
	}
}

// RunNow triggers an immediate check (for testing/admin). The
// once-per-day skip still applies.
func (ss *SweepScheduler) RunNow() {
	ss.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ss *SweepScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ss.CheckInterval)
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
