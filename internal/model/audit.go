package model

import "time"

// EnrichmentStatus is the terminal (or in-flight) status of one AuditRow.
// Constrained to exactly the six values the storage schema allows.
type EnrichmentStatus string

const (
	StatusPending   EnrichmentStatus = "pending"
	StatusSuccess   EnrichmentStatus = "success"
	StatusPartial   EnrichmentStatus = "partial"
	StatusFailed    EnrichmentStatus = "failed"
	StatusCompleted EnrichmentStatus = "completed"
	StatusNoData    EnrichmentStatus = "no_data"
)

// AuditRow is the persisted record of one enrichment attempt, progressively
// updated as each pipeline stage completes. The terminal status is always
// the last field written (§4.4 step 7, §5 ordering guarantee).
type AuditRow struct {
	ID           string           `json:"id"`
	LeadID       string           `json:"lead_id,omitempty"`
	CRMID        string           `json:"crm_id,omitempty"`
	JobID        string           `json:"job_id"`
	Status       EnrichmentStatus `json:"status"`
	Places       *PlacesFacts     `json:"places,omitempty"`
	Company      *CompanyFacts    `json:"company,omitempty"`
	WebTech      *WebTechFacts    `json:"webtech,omitempty"`
	FitScore     *int             `json:"fit_score,omitempty"`
	Breakdown    *ScoreBreakdown  `json:"score_breakdown,omitempty"`
	Projection   *CrmProjection   `json:"projection,omitempty"`
	CRMUpdated   bool             `json:"crm_updated"`
	CRMUpdatedAt *time.Time       `json:"crm_updated_at,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TerminalStatus computes the §4.4 step 6 terminal status from what the
// orchestrator observed: whether scoring ran and succeeded, and whether any
// adapter produced facts.
func TerminalStatus(hasFacts bool, scoringFailed bool) EnrichmentStatus {
	if scoringFailed {
		return StatusFailed
	}
	if !hasFacts {
		return StatusNoData
	}
	return StatusCompleted
}
