package grievance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/grievance-engine/grievance"
	"github.com/warp/grievance-engine/grievance/store"
)

// =============================================================================
// TEST FIXTURE - Village -> District -> Province tree
// =============================================================================

const testProject = grievance.ProjectID("proj-test")

func villagePolicy() grievance.SLAPolicy {
	return grievance.SLAPolicy{AckDays: 2, ResolutionDays: 7, ReminderBeforeDays: 2, AutoEscalate: true}
}

func districtPolicy() grievance.SLAPolicy {
	return grievance.SLAPolicy{AckDays: 3, ResolutionDays: 10, ReminderBeforeDays: 3, AutoEscalate: true}
}

func provincePolicy() grievance.SLAPolicy {
	return grievance.SLAPolicy{AckDays: 5, ResolutionDays: 15, ReminderBeforeDays: 3, AutoEscalate: false}
}

// newTestTree seeds a three-level hierarchy:
//
//	reg-province (province, root)
//	  `- reg-district (district)
//	       `- reg-village (village)
func newTestTree(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	levels := []grievance.HierarchyLevel{
		{ID: "lvl-village", Name: "Village", ProjectID: testProject, Rank: 0, Policy: villagePolicy()},
		{ID: "lvl-district", Name: "District", ProjectID: testProject, Rank: 1, Policy: districtPolicy()},
		{ID: "lvl-province", Name: "Province", ProjectID: testProject, Rank: 2, Policy: provincePolicy()},
	}
	for _, lvl := range levels {
		if err := m.SaveLevel(ctx, lvl); err != nil {
			t.Fatalf("seeding level %s: %v", lvl.ID, err)
		}
	}

	provinceID := grievance.RegionID("reg-province")
	districtID := grievance.RegionID("reg-district")
	regions := []grievance.AdministrativeRegion{
		{ID: provinceID, Name: "Province", ProjectID: testProject, LevelID: "lvl-province"},
		{ID: districtID, Name: "District", ProjectID: testProject, LevelID: "lvl-district", ParentID: &provinceID},
		{ID: "reg-village", Name: "Village", ProjectID: testProject, LevelID: "lvl-village", ParentID: &districtID},
	}
	for _, reg := range regions {
		if err := m.SaveRegion(ctx, reg); err != nil {
			t.Fatalf("seeding region %s: %v", reg.ID, err)
		}
	}
	return m
}

// =============================================================================
// RESOLVER QUERY TESTS
// =============================================================================

func TestResolver_Level(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))
	ctx := context.Background()

	level, err := r.Level(ctx, "reg-village")
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if level.ID != "lvl-village" {
		t.Errorf("Level(reg-village).ID = %s, want lvl-village", level.ID)
	}
}

func TestResolver_Parent(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))
	ctx := context.Background()

	parent, err := r.Parent(ctx, "reg-village")
	if err != nil {
		t.Fatalf("Parent: %v", err)
	}
	if parent == nil || parent.ID != "reg-district" {
		t.Errorf("Parent(reg-village) = %v, want reg-district", parent)
	}
}

func TestResolver_Parent_RootIsNil(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))

	parent, err := r.Parent(context.Background(), "reg-province")
	if err != nil {
		t.Fatalf("Parent: %v", err)
	}
	if parent != nil {
		t.Errorf("Parent(root) = %v, want nil", parent)
	}
}

func TestResolver_Parent_UnknownRegion(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))

	_, err := r.Parent(context.Background(), "reg-nowhere")
	if !errors.Is(err, grievance.ErrUnknownRegion) {
		t.Errorf("Parent(unknown) error = %v, want ErrUnknownRegion", err)
	}
}

func TestResolver_AncestorChain_RootFirst(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))

	chain, err := r.AncestorChain(context.Background(), "reg-village")
	if err != nil {
		t.Fatalf("AncestorChain: %v", err)
	}
	want := []grievance.RegionID{"reg-province", "reg-district", "reg-village"}
	if len(chain) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(chain), len(want))
	}
	for i, id := range want {
		if chain[i].ID != id {
			t.Errorf("chain[%d] = %s, want %s", i, chain[i].ID, id)
		}
	}
}

// =============================================================================
// CYCLE REJECTION TESTS
// =============================================================================

func TestValidateRegion_SelfParent(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))

	self := grievance.RegionID("reg-loop")
	err := r.ValidateRegion(context.Background(), grievance.AdministrativeRegion{
		ID: self, ProjectID: testProject, LevelID: "lvl-village", ParentID: &self,
	})
	if !errors.Is(err, grievance.ErrCycleDetected) {
		t.Errorf("self-parent error = %v, want ErrCycleDetected", err)
	}
}

func TestValidateRegion_ReparentingRootUnderLeaf(t *testing.T) {
	// GIVEN: The seeded province -> district -> village chain
	// WHEN: Re-pointing the root under the leaf
	// THEN: The write is rejected; the walk would revisit the province
	r := grievance.NewResolver(newTestTree(t))

	village := grievance.RegionID("reg-village")
	err := r.ValidateRegion(context.Background(), grievance.AdministrativeRegion{
		ID: "reg-province", ProjectID: testProject, LevelID: "lvl-province", ParentID: &village,
	})
	if !errors.Is(err, grievance.ErrCycleDetected) {
		t.Errorf("reparent error = %v, want ErrCycleDetected", err)
	}

	var cycleErr *grievance.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("error %v is not a *CycleError", err)
	}
	if cycleErr.RegionID != "reg-province" {
		t.Errorf("CycleError.RegionID = %s, want reg-province", cycleErr.RegionID)
	}
}

func TestSaveRegion_UnknownLevelRejected(t *testing.T) {
	r := grievance.NewResolver(newTestTree(t))

	err := r.SaveRegion(context.Background(), grievance.AdministrativeRegion{
		ID: "reg-new", ProjectID: testProject, LevelID: "lvl-missing",
	})
	if !errors.Is(err, grievance.ErrUnknownLevel) {
		t.Errorf("SaveRegion(unknown level) error = %v, want ErrUnknownLevel", err)
	}
}

func TestSaveRegion_ValidWritePersists(t *testing.T) {
	m := newTestTree(t)
	r := grievance.NewResolver(m)
	ctx := context.Background()

	districtID := grievance.RegionID("reg-district")
	err := r.SaveRegion(ctx, grievance.AdministrativeRegion{
		ID: "reg-village-2", Name: "Second Village", ProjectID: testProject,
		LevelID: "lvl-village", ParentID: &districtID,
	})
	if err != nil {
		t.Fatalf("SaveRegion: %v", err)
	}

	got, err := m.GetRegion(ctx, "reg-village-2")
	if err != nil {
		t.Fatalf("GetRegion after save: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != districtID {
		t.Errorf("persisted parent = %v, want reg-district", got.ParentID)
	}
}
