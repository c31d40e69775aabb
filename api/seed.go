/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:

	Populates the store with a realistic three-level administrative
	hierarchy and a handful of cases in different SLA situations, so the
	dashboard and sweep have something to show immediately.

WHAT GETS CREATED:

	Levels:   district (rank 0), division (rank 1), state (rank 2)
	Regions:  Rampur District -> Northern Division -> Uttarakhand State
	Cases:    one fresh, one nearing its acknowledgment due date, one
	          past its resolution due date (escalates on the next sweep)

USAGE VIA API:

	POST /api/seed

NOTE:

	The loader overwrites records with the same IDs. Only use in
	development/demo environments.

SEE ALSO:
  - factory/config.go: Project setup JSON format
  - handlers.go: SetupProject (the production setup path)
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/warp/grievance-engine/grievance"
)

// SeedDemo loads the demo hierarchy and cases.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	if err := h.loadDemoData(r.Context()); err != nil {
		writeDomainError(w, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"status":     "seeded",
		"project_id": "demo-grievances",
	})
}

func (h *Handler) loadDemoData(ctx context.Context) error {
	project := grievance.ProjectID("demo-grievances")

	levels := []grievance.HierarchyLevel{
		{
			ID:        "lvl-district",
			Name:      "District",
			ProjectID: project,
			Rank:      0,
			Policy: grievance.SLAPolicy{
				AckDays:            2,
				ResolutionDays:     7,
				ReminderBeforeDays: 2,
				AutoEscalate:       true,
			},
		},
		{
			ID:        "lvl-division",
			Name:      "Division",
			ProjectID: project,
			Rank:      1,
			Policy: grievance.SLAPolicy{
				AckDays:            3,
				ResolutionDays:     10,
				ReminderBeforeDays: 3,
				AutoEscalate:       true,
			},
		},
		{
			ID:        "lvl-state",
			Name:      "State",
			ProjectID: project,
			Rank:      2,
			Policy: grievance.SLAPolicy{
				AckDays:            5,
				ResolutionDays:     15,
				ReminderBeforeDays: 3,
				AutoEscalate:       false,
			},
		},
	}
	for _, level := range levels {
		if err := h.Registry.SaveLevel(ctx, level); err != nil {
			return err
		}
	}

	stateID := grievance.RegionID("reg-uttarakhand")
	divisionID := grievance.RegionID("reg-northern")
	districtID := grievance.RegionID("reg-rampur")

	regions := []grievance.AdministrativeRegion{
		{ID: stateID, Name: "Uttarakhand State", ProjectID: project, LevelID: "lvl-state"},
		{ID: divisionID, Name: "Northern Division", ProjectID: project, LevelID: "lvl-division", ParentID: &stateID},
		{ID: districtID, Name: "Rampur District", ProjectID: project, LevelID: "lvl-district", ParentID: &divisionID},
	}
	for _, region := range regions {
		if err := h.Resolver.SaveRegion(ctx, region); err != nil {
			return err
		}
	}

	districtPolicy := levels[0].Policy
	today := grievance.Today()

	// A freshly filed case, both lanes on time.
	fresh := grievance.NewCase("case-demo-fresh", "GRV-2024-001", project, districtID, today)
	grievance.InitializeDueDates(&fresh, districtPolicy)

	// Filed a few days ago; the acknowledgment due date is close enough
	// that the next sweep sends a reminder.
	nearing := grievance.NewCase("case-demo-nearing", "GRV-2024-002", project, districtID,
		today.AddDays(-1))
	grievance.InitializeDueDates(&nearing, districtPolicy)

	// Filed long enough ago that both due dates have passed. The next
	// sweep marks it breached and escalates it to the division.
	overdue := grievance.NewCase("case-demo-overdue", "GRV-2024-003", project, districtID,
		today.AddDays(-20))
	grievance.InitializeDueDates(&overdue, districtPolicy)
	ack := time.Now().Add(-18 * 24 * time.Hour)
	overdue.AcknowledgedAt = &ack
	overdue.AckLane = grievance.LaneCompleted
	overdue.Status = grievance.StatusAcknowledged

	for _, c := range []grievance.Case{fresh, nearing, overdue} {
		if err := h.Store.SaveCase(ctx, c); err != nil {
			return err
		}
	}

	return nil
}
