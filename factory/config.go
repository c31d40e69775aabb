/*
Package factory provides JSON to Go hierarchy conversion.

PURPOSE:
  Converts JSON project-setup definitions into hierarchy levels and
  regions. This enables jurisdiction configuration without code changes -
  an administrator can define a province/district/village tree with its
  SLA policies in JSON, and the factory produces validated Go structs.

JSON SCHEMA:
  {
    "project_id": "proj-1",
    "levels": [
      {
        "id": "lvl-village",
        "name": "Village",
        "rank": 1,
        "ack_days": 7,
        "resolution_days": 30,
        "reminder_before_days": 3,
        "auto_escalate": true
      }
    ],
    "regions": [
      {"id": "reg-village-1", "name": "Village One", "level_id": "lvl-village", "parent_id": "reg-district-1"}
    ]
  }

VALIDATION:
  - Every policy invariant is checked (ConfigInvalid on violation)
  - Ranks must be unique within the project
  - Region level references must exist in the same document
  - Parent references must resolve and the tree must be single-rooted
    and acyclic; the hierarchy resolver performs the authoritative cycle
    check at persistence time

USAGE:
  setup, err := factory.ParseSetup(jsonString)
  // persist: levels first, then regions in parent-before-child order

SEE ALSO:
  - grievance/policy.go: SLAPolicy.Validate
  - grievance/hierarchy.go: Write-time cycle validation
  - api/handlers.go: POST /api/projects/setup
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/grievance-engine/grievance"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SetupJSON is the JSON representation of a project hierarchy.
type SetupJSON struct {
	ProjectID string       `json:"project_id"`
	Levels    []LevelJSON  `json:"levels"`
	Regions   []RegionJSON `json:"regions"`
}

// LevelJSON defines one hierarchy tier with its SLA policy fields.
type LevelJSON struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Rank               int    `json:"rank"`
	AckDays            int    `json:"ack_days"`
	ResolutionDays     int    `json:"resolution_days"`
	ReminderBeforeDays int    `json:"reminder_before_days"`
	AutoEscalate       bool   `json:"auto_escalate"`
}

// RegionJSON defines one region node. An empty parent_id marks the root.
type RegionJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LevelID  string `json:"level_id"`
	ParentID string `json:"parent_id,omitempty"`
}

// Setup is the parsed, validated result.
type Setup struct {
	ProjectID grievance.ProjectID
	Levels    []grievance.HierarchyLevel
	// Regions are ordered parent-before-child so they can be persisted
	// through the resolver's validating write path in order.
	Regions []grievance.AdministrativeRegion
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSetup parses and validates a project-setup document.
func ParseSetup(raw string) (*Setup, error) {
	var doc SetupJSON
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("invalid setup JSON: %w", err)
	}
	if doc.ProjectID == "" {
		return nil, fmt.Errorf("setup: project_id is required")
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("setup: at least one level is required")
	}

	setup := &Setup{ProjectID: grievance.ProjectID(doc.ProjectID)}

	levels, err := parseLevels(doc)
	if err != nil {
		return nil, err
	}
	setup.Levels = levels

	regions, err := parseRegions(doc, levels)
	if err != nil {
		return nil, err
	}
	setup.Regions = regions

	return setup, nil
}

func parseLevels(doc SetupJSON) ([]grievance.HierarchyLevel, error) {
	seenRanks := make(map[int]string)
	seenIDs := make(map[string]bool)
	var levels []grievance.HierarchyLevel

	for _, lj := range doc.Levels {
		if lj.ID == "" || lj.Name == "" {
			return nil, fmt.Errorf("setup: level id and name are required")
		}
		if seenIDs[lj.ID] {
			return nil, fmt.Errorf("setup: duplicate level id %q", lj.ID)
		}
		seenIDs[lj.ID] = true
		if other, dup := seenRanks[lj.Rank]; dup {
			return nil, fmt.Errorf("setup: levels %q and %q share rank %d", other, lj.ID, lj.Rank)
		}
		seenRanks[lj.Rank] = lj.ID

		level := grievance.HierarchyLevel{
			ID:        grievance.LevelID(lj.ID),
			Name:      lj.Name,
			ProjectID: grievance.ProjectID(doc.ProjectID),
			Rank:      lj.Rank,
			Policy: grievance.SLAPolicy{
				AckDays:            lj.AckDays,
				ResolutionDays:     lj.ResolutionDays,
				ReminderBeforeDays: lj.ReminderBeforeDays,
				AutoEscalate:       lj.AutoEscalate,
			},
		}
		if err := level.Policy.Validate(level.ID); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseRegions(doc SetupJSON, levels []grievance.HierarchyLevel) ([]grievance.AdministrativeRegion, error) {
	levelIDs := make(map[grievance.LevelID]bool, len(levels))
	for _, l := range levels {
		levelIDs[l.ID] = true
	}

	byID := make(map[string]RegionJSON, len(doc.Regions))
	roots := 0
	for _, rj := range doc.Regions {
		if rj.ID == "" || rj.Name == "" {
			return nil, fmt.Errorf("setup: region id and name are required")
		}
		if _, dup := byID[rj.ID]; dup {
			return nil, fmt.Errorf("setup: duplicate region id %q", rj.ID)
		}
		if !levelIDs[grievance.LevelID(rj.LevelID)] {
			return nil, fmt.Errorf("setup: region %q references unknown level %q", rj.ID, rj.LevelID)
		}
		if rj.ParentID == "" {
			roots++
		}
		byID[rj.ID] = rj
	}
	if len(doc.Regions) > 0 && roots != 1 {
		return nil, fmt.Errorf("setup: expected exactly one root region, found %d", roots)
	}

	// Order parent-before-child by walking depth from each node; a walk
	// that revisits a node or runs past the region count is a cycle.
	depths := make(map[string]int, len(byID))
	for id := range byID {
		d, err := regionDepth(id, byID, len(byID))
		if err != nil {
			return nil, err
		}
		depths[id] = d
	}

	ordered := make([]RegionJSON, 0, len(doc.Regions))
	ordered = append(ordered, doc.Regions...)
	sortRegionsByDepth(ordered, depths)

	var regions []grievance.AdministrativeRegion
	for _, rj := range ordered {
		region := grievance.AdministrativeRegion{
			ID:        grievance.RegionID(rj.ID),
			Name:      rj.Name,
			ProjectID: grievance.ProjectID(doc.ProjectID),
			LevelID:   grievance.LevelID(rj.LevelID),
		}
		if rj.ParentID != "" {
			if _, ok := byID[rj.ParentID]; !ok {
				return nil, fmt.Errorf("setup: region %q references unknown parent %q", rj.ID, rj.ParentID)
			}
			parent := grievance.RegionID(rj.ParentID)
			region.ParentID = &parent
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func regionDepth(id string, byID map[string]RegionJSON, limit int) (int, error) {
	depth := 0
	current := id
	for {
		rj := byID[current]
		if rj.ParentID == "" {
			return depth, nil
		}
		depth++
		if depth > limit {
			return 0, fmt.Errorf("setup: region %q: %w", id, grievance.ErrCycleDetected)
		}
		current = rj.ParentID
	}
}

func sortRegionsByDepth(regions []RegionJSON, depths map[string]int) {
	// Insertion sort keeps document order within a depth; region counts
	// here are tiny.
	for i := 1; i < len(regions); i++ {
		for j := i; j > 0 && depths[regions[j-1].ID] > depths[regions[j].ID]; j-- {
			regions[j-1], regions[j] = regions[j], regions[j-1]
		}
	}
}
