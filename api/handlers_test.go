/*
handlers_test.go - HTTP API tests over the in-memory store

Tests for:
- Project setup, case filing, milestones, manual escalation
- Error status mapping (400/404/409)
- Compliance report and health endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/warp/grievance-engine/grievance"
	"github.com/warp/grievance-engine/grievance/store"
)

const setupDoc = `{
	"project_id": "proj-api",
	"levels": [
		{"id": "lvl-village", "name": "Village", "rank": 0,
		 "ack_days": 2, "resolution_days": 7, "reminder_before_days": 2, "auto_escalate": true},
		{"id": "lvl-district", "name": "District", "rank": 1,
		 "ack_days": 3, "resolution_days": 10, "reminder_before_days": 3, "auto_escalate": true}
	],
	"regions": [
		{"id": "reg-d1", "name": "District One", "level_id": "lvl-district"},
		{"id": "reg-v1", "name": "Village One", "level_id": "lvl-village", "parent_id": "reg-d1"}
	]
}`

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	h := NewHandler(store.NewMemory(), grievance.LogDispatcher{})
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func setupProject(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/setup", setupDoc)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("setup status = %d, want 201", resp.StatusCode)
	}
}

func fileCase(t *testing.T, srv *httptest.Server, id string) CaseDTO {
	t.Helper()
	body, _ := json.Marshal(CreateCaseRequest{
		ID: id, TrackingCode: "GRV-" + id, ProjectID: "proj-api", RegionID: "reg-v1",
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases", string(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create case status = %d, want 201", resp.StatusCode)
	}
	return decode[CaseDTO](t, resp)
}

// =============================================================================
// SETUP AND CASE LIFECYCLE
// =============================================================================

func TestSetupProject_PersistsHierarchy(t *testing.T) {
	srv, h := newTestServer(t)
	setupProject(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/regions?project_id=proj-api", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list regions status = %d, want 200", resp.StatusCode)
	}
	regions := decode[[]RegionDTO](t, resp)
	if len(regions) != 2 {
		t.Fatalf("len(regions) = %d, want 2", len(regions))
	}

	// The validating write path rejected nothing, so both levels exist.
	levels, err := h.Store.ListLevels(context.Background(), "proj-api")
	if err != nil {
		t.Fatalf("ListLevels: %v", err)
	}
	if len(levels) != 2 {
		t.Errorf("len(levels) = %d, want 2", len(levels))
	}
}

func TestSetupProject_InvalidPolicyIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	bad := `{"project_id": "p", "levels": [
		{"id": "l", "name": "L", "rank": 0, "ack_days": 9, "resolution_days": 7}]}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/setup", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateCase_SetsDueDatesFromRegionPolicy(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)

	dto := fileCase(t, srv, "case-1")

	if dto.Status != string(grievance.StatusOpen) {
		t.Errorf("Status = %s, want open", dto.Status)
	}
	if dto.AckLane != string(grievance.LaneOnTime) || dto.ResolutionLane != string(grievance.LaneOnTime) {
		t.Errorf("lanes = %s/%s, want on_time/on_time", dto.AckLane, dto.ResolutionLane)
	}
	if dto.AckDue == "" || dto.ResolutionDue == "" {
		t.Errorf("due dates not set: %+v", dto)
	}
	if dto.AckDue >= dto.ResolutionDue {
		t.Errorf("AckDue %s not before ResolutionDue %s", dto.AckDue, dto.ResolutionDue)
	}
}

func TestCreateCase_UnknownRegionIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)

	body := `{"id": "case-x", "tracking_code": "GRV-X", "project_id": "proj-api", "region_id": "reg-ghost"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases", body)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAcknowledgeAndResolve(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)
	fileCase(t, srv, "case-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-1/acknowledge", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("acknowledge status = %d, want 200", resp.StatusCode)
	}
	dto := decode[CaseDTO](t, resp)
	if dto.AckLane != string(grievance.LaneCompleted) || dto.Status != string(grievance.StatusAcknowledged) {
		t.Errorf("after ack: lane=%s status=%s", dto.AckLane, dto.Status)
	}
	if dto.AcknowledgedAt == nil {
		t.Error("AcknowledgedAt not stamped")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-1/resolve", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d, want 200", resp.StatusCode)
	}
	dto = decode[CaseDTO](t, resp)
	if dto.Status != string(grievance.StatusResolved) || dto.ResolutionLane != string(grievance.LaneCompleted) {
		t.Errorf("after resolve: lane=%s status=%s", dto.ResolutionLane, dto.Status)
	}

	// A second resolve hits the terminal guard.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-1/resolve", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double resolve status = %d, want 409", resp.StatusCode)
	}
}

func TestGetCase_UnknownIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/cases/case-ghost", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

// =============================================================================
// ESCALATION
// =============================================================================

func TestEscalateCase_Manual(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)
	fileCase(t, srv, "case-1")

	body := `{"actor_id": "op-1", "reason": "citizen called twice"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-1/escalate", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("escalate status = %d, want 200", resp.StatusCode)
	}
	dto := decode[CaseDTO](t, resp)
	if dto.RegionID != "reg-d1" {
		t.Errorf("RegionID = %s, want reg-d1", dto.RegionID)
	}
	if dto.EscalationCount != 1 || len(dto.History) != 1 {
		t.Errorf("count=%d history=%d, want 1/1", dto.EscalationCount, len(dto.History))
	}
	if dto.History[0].Actor != "op-1" {
		t.Errorf("history actor = %s, want op-1", dto.History[0].Actor)
	}
}

func TestEscalateCase_MissingReasonIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)
	fileCase(t, srv, "case-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-1/escalate", `{"actor_id": "op-1"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEscalateCase_AtRootReportsBlocked(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)

	// File a case directly at the district root.
	body := `{"id": "case-root", "tracking_code": "GRV-R", "project_id": "proj-api", "region_id": "reg-d1"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/cases", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/cases/case-root/escalate",
		`{"actor_id": "op-1", "reason": "stuck"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("escalate status = %d, want 200", resp.StatusCode)
	}
	result := decode[map[string]any](t, resp)
	if escalated, _ := result["escalated"].(bool); escalated {
		t.Error("escalated = true at the root, want false")
	}
}

// =============================================================================
// HIERARCHY ENDPOINTS
// =============================================================================

func TestCreateRegion_CycleIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)

	// Re-point the root under its own child.
	body := `{"id": "reg-d1", "name": "District One", "project_id": "proj-api",
		"level_id": "lvl-district", "parent_id": "reg-v1"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/regions", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListRegions_RequiresProjectID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/regions", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// =============================================================================
// ADMIN AND REPORTING
// =============================================================================

func TestRunSweepAndCompliance(t *testing.T) {
	srv, _ := newTestServer(t)
	setupProject(t, srv)
	fileCase(t, srv, "case-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/sweep", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sweep status = %d, want 200", resp.StatusCode)
	}
	summary := decode[grievance.SweepSummary](t, resp)
	if summary.Processed != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/compliance", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("compliance status = %d, want 200", resp.StatusCode)
	}
	report := decode[ComplianceDTO](t, resp)
	if report.TotalCases != 1 || report.CompliancePercent != "100" {
		t.Errorf("report = %+v, want 1 case at 100", report)
	}
}

func TestSeedAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/seed", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d, want 201", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/cases", "")
	cases := decode[[]CaseDTO](t, resp)
	if len(cases) != 3 {
		t.Errorf("seeded cases = %d, want 3", len(cases))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}
