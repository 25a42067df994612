// Package audit persists one AuditRow per enrichment attempt, written
// progressively as each pipeline stage completes and never deleted by the
// application itself (garbage collection is an external, operator concern).
package audit

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fit-engine/internal/model"
)

// ErrRowNotFound is returned when an operation targets a row id that does
// not exist.
var ErrRowNotFound = eris.New("audit: row not found")

// ErrMissingIdentifier is returned by CreatePending when neither a lead id
// nor a CRM id is supplied; every row must be traceable to at least one.
var ErrMissingIdentifier = eris.New("audit: at least one of lead_id or crm_id is required")

// Filter narrows ListRows.
type Filter struct {
	Status       model.EnrichmentStatus
	CRMID        string
	CreatedAfter time.Time
	Limit        int
	Offset       int
}

// Store is the persistence interface for audit rows. Every write after
// CreatePending targets a single column group so a stage's result is
// durable as soon as that stage finishes, independent of the stages around
// it (§4.4's progressive-update requirement).
type Store interface {
	CreatePending(ctx context.Context, leadID, crmID, jobID string) (*model.AuditRow, error)

	UpdatePlaces(ctx context.Context, id string, facts *model.PlacesFacts) error
	UpdateCompany(ctx context.Context, id string, facts *model.CompanyFacts) error
	UpdateWebTech(ctx context.Context, id string, facts *model.WebTechFacts) error
	UpdateScore(ctx context.Context, id string, score int, breakdown model.ScoreBreakdown) error
	UpdateProjection(ctx context.Context, id string, projection model.CrmProjection) error
	UpdateCRMResult(ctx context.Context, id string, updated bool, at time.Time) error

	// FinalizeStatus writes the terminal status and, if non-empty, an error
	// message. This is always the last write the orchestrator makes to a row.
	FinalizeStatus(ctx context.Context, id string, status model.EnrichmentStatus, errMessage string) error

	GetRow(ctx context.Context, id string) (*model.AuditRow, error)
	ListRows(ctx context.Context, filter Filter) ([]model.AuditRow, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
