/*
handlers.go - HTTP API handlers for the grievance SLA engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Cases:
    GET    /api/cases                    List open cases
    POST   /api/cases                    File a case (SLA clock starts)
    GET    /api/cases/{id}               Case details with history
    POST   /api/cases/{id}/acknowledge   Record the acknowledgment milestone
    POST   /api/cases/{id}/resolve       Record the resolution milestone
    POST   /api/cases/{id}/escalate      Manual escalation

  Hierarchy:
    POST   /api/projects/setup           Load a factory JSON setup
    GET    /api/regions                  List a project's regions
    POST   /api/regions                  Add a region (cycle-validated)

  Admin:
    POST   /api/admin/sweep              Run the monitor now
    GET    /api/admin/sweeps             Sweep run history
    GET    /api/reports/compliance       Dashboard metrics
    POST   /api/seed                     Load the demo hierarchy

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (ConfigInvalid, CycleDetected)
  - 404: Unknown case/region/level
  - 409: Milestone or escalation on a terminal case
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. Actor authorization for manual
  escalation is delegated to the deployment's gateway.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: The scheduled sweep
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/grievance-engine/factory"
	"github.com/warp/grievance-engine/grievance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      grievance.Store
	Resolver   *grievance.Resolver
	Registry   *grievance.Registry
	Engine     *grievance.Engine
	Monitor    *grievance.Monitor
	Dispatcher grievance.Dispatcher
}

// NewHandler wires the engine components over the given store.
func NewHandler(store grievance.Store, dispatcher grievance.Dispatcher) *Handler {
	resolver := grievance.NewResolver(store)
	registry := grievance.NewRegistry(store)
	engine := grievance.NewEngine(resolver, registry)
	return &Handler{
		Store:      store,
		Resolver:   resolver,
		Registry:   registry,
		Engine:     engine,
		Monitor:    grievance.NewMonitor(store, registry, engine, dispatcher),
		Dispatcher: dispatcher,
	}
}

// =============================================================================
// CASE HANDLERS
// =============================================================================

// ListCases returns all open cases.
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.Store.ListOpenCases(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cases", err)
		return
	}

	dtos := make([]CaseDTO, len(cases))
	for i, c := range cases {
		dtos[i] = toCaseDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCase returns a single case with its escalation history.
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	id := grievance.CaseID(chi.URLParam(r, "id"))

	c, err := h.Store.GetCase(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(c))
}

// CreateCase files a new case. The SLA clock starts now; due dates come
// from the region's level policy.
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.TrackingCode == "" || req.ProjectID == "" || req.RegionID == "" {
		writeError(w, http.StatusBadRequest, "id, tracking_code, project_id and region_id are required", nil)
		return
	}

	ctx := r.Context()
	policy, err := h.Registry.PolicyForRegion(ctx, grievance.RegionID(req.RegionID))
	if err != nil {
		writeDomainError(w, "Failed to resolve region policy", err)
		return
	}

	c := grievance.NewCase(
		grievance.CaseID(req.ID),
		req.TrackingCode,
		grievance.ProjectID(req.ProjectID),
		grievance.RegionID(req.RegionID),
		grievance.Today(),
	)
	grievance.InitializeDueDates(&c, policy)

	if err := h.Store.SaveCase(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save case", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCaseDTO(c))
}

// AcknowledgeCase records the acknowledgment milestone.
func (h *Handler) AcknowledgeCase(w http.ResponseWriter, r *http.Request) {
	h.recordMilestone(w, r, grievance.RecordAcknowledgment)
}

// ResolveCase records the resolution milestone; SLA tracking ends.
func (h *Handler) ResolveCase(w http.ResponseWriter, r *http.Request) {
	h.recordMilestone(w, r, grievance.RecordResolution)
}

func (h *Handler) recordMilestone(w http.ResponseWriter, r *http.Request, record func(*grievance.Case, time.Time) error) {
	id := grievance.CaseID(chi.URLParam(r, "id"))
	ctx := r.Context()

	var updated grievance.Case
	err := h.Store.WithTx(ctx, func(s grievance.CaseStore) error {
		c, err := s.GetCase(ctx, id)
		if err != nil {
			return err
		}
		if err := record(&c, time.Now()); err != nil {
			return err
		}
		updated = c
		return s.SaveCase(ctx, c)
	})
	if err != nil {
		writeDomainError(w, "Failed to update case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(updated))
}

// EscalateCase is the manual escalation entry point. Authorization of
// the actor happens upstream.
func (h *Handler) EscalateCase(w http.ResponseWriter, r *http.Request) {
	id := grievance.CaseID(chi.URLParam(r, "id"))

	var req EscalateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	escalated, err := h.Engine.EscalateCase(r.Context(), h.Store, h.Dispatcher, id, req.ActorID, req.Reason, time.Now())
	if err != nil {
		writeDomainError(w, "Failed to escalate case", err)
		return
	}
	if !escalated {
		writeJSON(w, http.StatusOK, map[string]any{
			"escalated": false,
			"detail":    "region has no parent; case requires manual handling",
		})
		return
	}

	c, err := h.Store.GetCase(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to reload case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(c))
}

// =============================================================================
// HIERARCHY HANDLERS
// =============================================================================

// SetupProject loads a factory JSON document: levels first, then regions
// parent-before-child through the validating write path.
func (h *Handler) SetupProject(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	setup, err := factory.ParseSetup(string(body))
	if err != nil {
		writeDomainError(w, "Invalid project setup", err)
		return
	}

	ctx := r.Context()
	for _, level := range setup.Levels {
		if err := h.Registry.SaveLevel(ctx, level); err != nil {
			writeDomainError(w, "Failed to save level", err)
			return
		}
	}
	for _, region := range setup.Regions {
		if err := h.Resolver.SaveRegion(ctx, region); err != nil {
			writeDomainError(w, "Failed to save region", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"project_id": string(setup.ProjectID),
		"levels":     len(setup.Levels),
		"regions":    len(setup.Regions),
	})
}

// ListRegions returns the regions of a project.
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	project := grievance.ProjectID(r.URL.Query().Get("project_id"))
	if project == "" {
		writeError(w, http.StatusBadRequest, "project_id query parameter is required", nil)
		return
	}

	regions, err := h.Store.ListRegions(r.Context(), project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list regions", err)
		return
	}

	dtos := make([]RegionDTO, len(regions))
	for i, region := range regions {
		dtos[i] = toRegionDTO(region)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRegion adds a region to the tree, rejecting cycles.
func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	var req CreateRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	region := grievance.AdministrativeRegion{
		ID:        grievance.RegionID(req.ID),
		Name:      req.Name,
		ProjectID: grievance.ProjectID(req.ProjectID),
		LevelID:   grievance.LevelID(req.LevelID),
	}
	if req.ParentID != "" {
		parent := grievance.RegionID(req.ParentID)
		region.ParentID = &parent
	}

	if err := h.Resolver.SaveRegion(r.Context(), region); err != nil {
		writeDomainError(w, "Failed to save region", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRegionDTO(region))
}

// =============================================================================
// ADMIN AND REPORTING HANDLERS
// =============================================================================

// RunSweep triggers the monitor immediately, bypassing the scheduler's
// once-per-day skip. The run is recorded like a scheduled one.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now().UTC()
	run := grievance.SweepRun{
		ID:        fmt.Sprintf("sweep-%d", started.UnixNano()),
		StartedAt: started,
		Status:    "running",
	}
	if err := h.Store.SaveSweepRun(ctx, run); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record sweep run", err)
		return
	}

	summary, err := h.Monitor.RunSweep(ctx)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Summary = summary
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	} else {
		run.Status = "completed"
	}
	if saveErr := h.Store.SaveSweepRun(ctx, run); saveErr != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record sweep run", saveErr)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sweep failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListSweepRuns returns the recorded monitor executions, newest first.
func (h *Handler) ListSweepRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListSweepRuns(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sweep runs", err)
		return
	}

	dtos := make([]SweepRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toSweepRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCompliance returns the aggregate SLA picture for dashboards.
func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	report, err := grievance.BuildComplianceReport(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, ComplianceDTO{
		TotalCases:         report.TotalCases,
		OnTime:             report.OnTime,
		NearingDue:         report.NearingDue,
		AckBreached:        report.AckBreached,
		ResolutionBreached: report.ResolutionBreached,
		Completed:          report.Completed,
		TotalEscalations:   report.TotalEscalations,
		CompliancePercent:  report.CompliancePercent.String(),
	})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case grievance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, grievance.ErrCaseTerminal):
		writeError(w, http.StatusConflict, message, err)
	case grievance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
