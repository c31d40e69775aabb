/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: SetupJSON accepted by POST /api/projects/setup
*/
package api

import (
	"time"

	"github.com/warp/grievance-engine/grievance"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CaseDTO represents a grievance case in API responses.
type CaseDTO struct {
	ID              string          `json:"id"`
	TrackingCode    string          `json:"tracking_code"`
	ProjectID       string          `json:"project_id"`
	RegionID        string          `json:"region_id"`
	Status          string          `json:"status"`
	ClockStart      string          `json:"clock_start"`
	AckDue          string          `json:"ack_due"`
	ResolutionDue   string          `json:"resolution_due"`
	AckLane         string          `json:"ack_lane"`
	ResolutionLane  string          `json:"resolution_lane"`
	AckBreachedAt   *string         `json:"ack_breached_at,omitempty"`
	ResBreachedAt   *string         `json:"resolution_breached_at,omitempty"`
	AcknowledgedAt  *string         `json:"acknowledged_at,omitempty"`
	ResolvedAt      *string         `json:"resolved_at,omitempty"`
	EscalationCount int             `json:"escalation_count"`
	LastEscalatedAt *string         `json:"last_escalated_at,omitempty"`
	History         []EscalationDTO `json:"history,omitempty"`
}

// EscalationDTO is one audit record of a case's move up the tree.
type EscalationDTO struct {
	FromRegion string `json:"from_region"`
	ToRegion   string `json:"to_region"`
	At         string `json:"at"`
	Reason     string `json:"reason"`
	Note       string `json:"note,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// CreateCaseRequest is the request to file a new case.
type CreateCaseRequest struct {
	ID           string `json:"id"`
	TrackingCode string `json:"tracking_code"`
	ProjectID    string `json:"project_id"`
	RegionID     string `json:"region_id"`
}

// EscalateCaseRequest is the manual escalation request body.
type EscalateCaseRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// RegionDTO represents a region in API responses.
type RegionDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LevelID  string `json:"level_id"`
	ParentID string `json:"parent_id,omitempty"`
}

// CreateRegionRequest is the request to add a region to the tree.
type CreateRegionRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	LevelID   string `json:"level_id"`
	ParentID  string `json:"parent_id,omitempty"`
}

// SweepRunDTO represents one monitor execution.
type SweepRunDTO struct {
	ID                string  `json:"id"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       *string `json:"completed_at,omitempty"`
	Status            string  `json:"status"`
	Processed         int     `json:"processed"`
	RemindersSent     int     `json:"reminders_sent"`
	Breached          int     `json:"breached"`
	Escalated         int     `json:"escalated"`
	EscalationBlocked int     `json:"escalation_blocked"`
	Errors            int     `json:"errors"`
	Error             string  `json:"error,omitempty"`
}

// ComplianceDTO is the dashboard view of BuildComplianceReport.
type ComplianceDTO struct {
	TotalCases         int    `json:"total_cases"`
	OnTime             int    `json:"on_time"`
	NearingDue         int    `json:"nearing_due"`
	AckBreached        int    `json:"ack_breached"`
	ResolutionBreached int    `json:"resolution_breached"`
	Completed          int    `json:"completed"`
	TotalEscalations   int    `json:"total_escalations"`
	CompliancePercent  string `json:"compliance_percent"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCaseDTO(c grievance.Case) CaseDTO {
	dto := CaseDTO{
		ID:              string(c.ID),
		TrackingCode:    c.TrackingCode,
		ProjectID:       string(c.ProjectID),
		RegionID:        string(c.RegionID),
		Status:          string(c.Status),
		ClockStart:      c.ClockStart.String(),
		AckDue:          c.AckDue.String(),
		ResolutionDue:   c.ResolutionDue.String(),
		AckLane:         string(c.AckLane),
		ResolutionLane:  string(c.ResolutionLane),
		AckBreachedAt:   formatTimePtr(c.AckBreachedAt),
		ResBreachedAt:   formatTimePtr(c.ResolutionBreachedAt),
		AcknowledgedAt:  formatTimePtr(c.AcknowledgedAt),
		ResolvedAt:      formatTimePtr(c.ResolvedAt),
		EscalationCount: c.EscalationCount,
		LastEscalatedAt: formatTimePtr(c.LastEscalatedAt),
	}
	for _, rec := range c.History {
		dto.History = append(dto.History, EscalationDTO{
			FromRegion: string(rec.FromRegion),
			ToRegion:   string(rec.ToRegion),
			At:         rec.At.Format(time.RFC3339),
			Reason:     string(rec.Reason),
			Note:       rec.Note,
			Actor:      rec.Actor,
		})
	}
	return dto
}

func toRegionDTO(r grievance.AdministrativeRegion) RegionDTO {
	dto := RegionDTO{
		ID:      string(r.ID),
		Name:    r.Name,
		LevelID: string(r.LevelID),
	}
	if r.ParentID != nil {
		dto.ParentID = string(*r.ParentID)
	}
	return dto
}

func toSweepRunDTO(run grievance.SweepRun) SweepRunDTO {
	return SweepRunDTO{
		ID:                run.ID,
		StartedAt:         run.StartedAt.Format(time.RFC3339),
		CompletedAt:       formatTimePtr(run.CompletedAt),
		Status:            run.Status,
		Processed:         run.Summary.Processed,
		RemindersSent:     run.Summary.RemindersSent,
		Breached:          run.Summary.Breached,
		Escalated:         run.Summary.Escalated,
		EscalationBlocked: run.Summary.EscalationBlocked,
		Errors:            run.Summary.Errors,
		Error:             run.Error,
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
