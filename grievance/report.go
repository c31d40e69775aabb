/*
report.go - Read-only compliance metrics for the reporting collaborator

PURPOSE:
  Transparency dashboards read escalation counts, lane states, and breach
  timestamps. This file computes the aggregate view; the engine never
  writes reporting-facing aggregates itself.

PRECISION:
  Percentages use decimal.Decimal so 1/3 of the caseload reports as
  33.33, not 33.333333333333336.
*/
package grievance

import (
	"context"

	"github.com/shopspring/decimal"
)

// ComplianceReport is the aggregate SLA picture across open cases.
type ComplianceReport struct {
	TotalCases         int
	OnTime             int
	NearingDue         int
	AckBreached        int
	ResolutionBreached int
	Completed          int
	TotalEscalations   int

	// CompliancePercent is the share of open cases whose resolution lane
	// has not breached, to two decimal places.
	CompliancePercent decimal.Decimal
}

// BuildComplianceReport computes the report over all open cases.
func BuildComplianceReport(ctx context.Context, store CaseStore) (ComplianceReport, error) {
	cases, err := store.ListOpenCases(ctx)
	if err != nil {
		return ComplianceReport{}, err
	}
	return ComplianceFor(cases), nil
}

// ComplianceFor computes the report for an explicit case set. Split out
// so dashboards can report on filtered slices (per region, per project).
func ComplianceFor(cases []Case) ComplianceReport {
	r := ComplianceReport{TotalCases: len(cases)}

	for _, c := range cases {
		r.TotalEscalations += c.EscalationCount
		if c.AckBreachedAt != nil {
			r.AckBreached++
		}
		switch c.ResolutionLane {
		case LaneBreached:
			r.ResolutionBreached++
		case LaneNearingDue:
			r.NearingDue++
		case LaneCompleted:
			r.Completed++
		default:
			r.OnTime++
		}
	}

	if r.TotalCases == 0 {
		r.CompliancePercent = decimal.NewFromInt(100)
		return r
	}
	compliant := decimal.NewFromInt(int64(r.TotalCases - r.ResolutionBreached))
	total := decimal.NewFromInt(int64(r.TotalCases))
	r.CompliancePercent = compliant.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	return r
}
