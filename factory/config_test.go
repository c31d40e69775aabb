package factory_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/warp/grievance-engine/factory"
	"github.com/warp/grievance-engine/grievance"
)

const validSetup = `{
	"project_id": "proj-1",
	"levels": [
		{"id": "lvl-village", "name": "Village", "rank": 0,
		 "ack_days": 2, "resolution_days": 7, "reminder_before_days": 2, "auto_escalate": true},
		{"id": "lvl-district", "name": "District", "rank": 1,
		 "ack_days": 3, "resolution_days": 10, "reminder_before_days": 3, "auto_escalate": true}
	],
	"regions": [
		{"id": "reg-v1", "name": "Village One", "level_id": "lvl-village", "parent_id": "reg-d1"},
		{"id": "reg-d1", "name": "District One", "level_id": "lvl-district"},
		{"id": "reg-v2", "name": "Village Two", "level_id": "lvl-village", "parent_id": "reg-d1"}
	]
}`

func TestParseSetup_Valid(t *testing.T) {
	setup, err := factory.ParseSetup(validSetup)
	if err != nil {
		t.Fatalf("ParseSetup: %v", err)
	}

	if setup.ProjectID != "proj-1" {
		t.Errorf("ProjectID = %s, want proj-1", setup.ProjectID)
	}
	if len(setup.Levels) != 2 {
		t.Fatalf("len(Levels) = %d, want 2", len(setup.Levels))
	}
	if setup.Levels[0].Policy.ResolutionDays != 7 || !setup.Levels[0].Policy.AutoEscalate {
		t.Errorf("village policy = %+v", setup.Levels[0].Policy)
	}
	if len(setup.Regions) != 3 {
		t.Fatalf("len(Regions) = %d, want 3", len(setup.Regions))
	}
}

func TestParseSetup_RegionsOrderedParentFirst(t *testing.T) {
	// The district is listed after its child villages in the document;
	// the parsed order must still put it first so the validating write
	// path can persist regions one by one.
	setup, err := factory.ParseSetup(validSetup)
	if err != nil {
		t.Fatalf("ParseSetup: %v", err)
	}

	seen := make(map[grievance.RegionID]bool)
	for _, region := range setup.Regions {
		if region.ParentID != nil && !seen[*region.ParentID] {
			t.Errorf("region %s ordered before its parent %s", region.ID, *region.ParentID)
		}
		seen[region.ID] = true
	}
	if setup.Regions[0].ID != "reg-d1" {
		t.Errorf("Regions[0] = %s, want reg-d1", setup.Regions[0].ID)
	}
}

func TestParseSetup_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "malformed JSON",
			doc:     `{"project_id": `,
			wantMsg: "invalid setup JSON",
		},
		{
			name:    "missing project id",
			doc:     `{"levels": [{"id": "l", "name": "L", "ack_days": 1, "resolution_days": 2}]}`,
			wantMsg: "project_id is required",
		},
		{
			name:    "no levels",
			doc:     `{"project_id": "p", "levels": []}`,
			wantMsg: "at least one level",
		},
		{
			name: "duplicate level id",
			doc: `{"project_id": "p", "levels": [
				{"id": "l", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2},
				{"id": "l", "name": "B", "rank": 1, "ack_days": 1, "resolution_days": 2}]}`,
			wantMsg: "duplicate level id",
		},
		{
			name: "duplicate rank",
			doc: `{"project_id": "p", "levels": [
				{"id": "a", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2},
				{"id": "b", "name": "B", "rank": 0, "ack_days": 1, "resolution_days": 2}]}`,
			wantMsg: "share rank 0",
		},
		{
			name: "region references unknown level",
			doc: `{"project_id": "p",
				"levels": [{"id": "a", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2}],
				"regions": [{"id": "r", "name": "R", "level_id": "lvl-ghost"}]}`,
			wantMsg: "unknown level",
		},
		{
			name: "two roots",
			doc: `{"project_id": "p",
				"levels": [{"id": "a", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2}],
				"regions": [
					{"id": "r1", "name": "R1", "level_id": "a"},
					{"id": "r2", "name": "R2", "level_id": "a"}]}`,
			wantMsg: "exactly one root",
		},
		{
			name: "unknown parent",
			doc: `{"project_id": "p",
				"levels": [{"id": "a", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2}],
				"regions": [
					{"id": "r1", "name": "R1", "level_id": "a"},
					{"id": "r2", "name": "R2", "level_id": "a", "parent_id": "r-ghost"}]}`,
			wantMsg: "unknown parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseSetup(tt.doc)
			if err == nil {
				t.Fatal("ParseSetup() = nil error, want failure")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseSetup_InvalidPolicyRejected(t *testing.T) {
	doc := `{"project_id": "p", "levels": [
		{"id": "l", "name": "L", "rank": 0, "ack_days": 10, "resolution_days": 7}]}`

	_, err := factory.ParseSetup(doc)
	if !errors.Is(err, grievance.ErrConfigInvalid) {
		t.Errorf("ParseSetup(ack >= resolution) = %v, want ErrConfigInvalid", err)
	}
}

func TestParseSetup_CycleRejected(t *testing.T) {
	doc := `{"project_id": "p",
		"levels": [{"id": "a", "name": "A", "rank": 0, "ack_days": 1, "resolution_days": 2}],
		"regions": [
			{"id": "root", "name": "Root", "level_id": "a"},
			{"id": "r1", "name": "R1", "level_id": "a", "parent_id": "r2"},
			{"id": "r2", "name": "R2", "level_id": "a", "parent_id": "r1"}]}`

	_, err := factory.ParseSetup(doc)
	if !errors.Is(err, grievance.ErrCycleDetected) {
		t.Errorf("ParseSetup(cycle) = %v, want ErrCycleDetected", err)
	}
}
