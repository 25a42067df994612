// Package orchestrator implements the enrichment orchestrator (C4): it
// validates a LeadIdentity, fans out the three source adapters under
// per-source failure isolation, scores and projects the merged record, and
// conditionally writes the result back to the CRM, progressively updating
// an audit row at every step.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fit-engine/internal/audit"
	"github.com/sells-group/fit-engine/internal/crm"
	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/projector"
	"github.com/sells-group/fit-engine/internal/scorer"
	"github.com/sells-group/fit-engine/internal/source"
)

// Result is the full output of one enrich() call.
type Result struct {
	AuditID         string                  `json:"audit_id"`
	Record          *model.EnrichmentRecord `json:"record"`
	Score           int                     `json:"score"`
	Breakdown       model.ScoreBreakdown    `json:"breakdown"`
	Projection      model.CrmProjection     `json:"projection"`
	Status          model.EnrichmentStatus  `json:"status"`
	CRMUpdateStatus string                  `json:"crm_update_status"` // "skipped", "updated", or "failed"
}

const (
	crmUpdateSkipped = "skipped"
	crmUpdateOK      = "updated"
	crmUpdateFailed  = "failed"
)

// Orchestrator wires the three C3 adapters, the C5 scorer, the C6
// projector, and the C7 CRM writer into the single enrich() operation.
// A nil CRMWriter is valid: CRM writes are then always skipped.
type Orchestrator struct {
	Places      source.Places
	CompanyData source.CompanyData
	WebTech     source.WebTech
	Audit       audit.Store
	CRMWriter   *crm.Writer
}

// New builds an Orchestrator from its constituent adapters and stores.
func New(places source.Places, companyData source.CompanyData, webTech source.WebTech, store audit.Store, crmWriter *crm.Writer) *Orchestrator {
	return &Orchestrator{
		Places:      places,
		CompanyData: companyData,
		WebTech:     webTech,
		Audit:       store,
		CRMWriter:   crmWriter,
	}
}

// Enrich runs the full §4.4 sequence for one LeadIdentity. ctx carries the
// outer request deadline; an exceeded deadline interrupts in-flight
// adapter and CRM HTTP calls, but does not abort audit-row bookkeeping
// beyond logging a failure.
func (o *Orchestrator) Enrich(ctx context.Context, identity model.LeadIdentity) (*Result, error) {
	if err := identity.Validate(); err != nil {
		return nil, eris.Wrap(err, "orchestrator: invalid identity")
	}

	jobID, err := newJobID()
	if err != nil {
		return nil, eris.Wrap(err, "orchestrator: generate job id")
	}

	// Every audit row needs a lead id or a CRM id; an identity carrying
	// neither is recorded under its job id.
	leadID := identity.ExternalID
	if leadID == "" && identity.CRMID == "" {
		leadID = jobID
	}

	row, err := o.Audit.CreatePending(ctx, leadID, identity.CRMID, jobID)
	if err != nil {
		return nil, eris.Wrap(err, "orchestrator: open audit row")
	}
	auditID := row.ID

	record := o.dispatchAdapters(ctx, auditID, identity)

	score, breakdown, scoreErr := o.score(identity, record)
	if scoreErr != nil {
		if err := o.Audit.FinalizeStatus(ctx, auditID, model.StatusFailed, scoreErr.Error()); err != nil {
			zap.L().Warn("audit: finalize status failed", zap.String("audit_id", auditID), zap.Error(err))
		}
		return &Result{
			AuditID:         auditID,
			Record:          record,
			Status:          model.StatusFailed,
			CRMUpdateStatus: crmUpdateSkipped,
		}, eris.Wrap(scoreErr, "orchestrator: scoring failed")
	}
	if err := o.Audit.UpdateScore(ctx, auditID, score, breakdown); err != nil {
		zap.L().Warn("audit: update score failed", zap.String("audit_id", auditID), zap.Error(err))
	}

	projection := projector.Project(identity, record)
	if err := o.Audit.UpdateProjection(ctx, auditID, projection); err != nil {
		zap.L().Warn("audit: update projection failed", zap.String("audit_id", auditID), zap.Error(err))
	}

	crmStatus := o.maybeUpdateCRM(ctx, auditID, identity, score, breakdown, projection)

	status := model.TerminalStatus(record.HasAnyFacts(), false)
	if err := o.Audit.FinalizeStatus(ctx, auditID, status, ""); err != nil {
		zap.L().Warn("audit: finalize status failed", zap.String("audit_id", auditID), zap.Error(err))
	}

	return &Result{
		AuditID:         auditID,
		Record:          record,
		Score:           score,
		Breakdown:       breakdown,
		Projection:      projection,
		Status:          status,
		CRMUpdateStatus: crmStatus,
	}, nil
}

// score calls the pure C5 calculator under recover: Score is defined as
// total over every EnrichmentRecord, but the orchestrator still treats an
// unexpected panic as the "scoring failure" §4.4 step 4 names fatal,
// rather than letting it crash the request.
func (o *Orchestrator) score(identity model.LeadIdentity, record *model.EnrichmentRecord) (score int, breakdown model.ScoreBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panicked: %v", r)
		}
	}()
	score, breakdown = scorer.Score(identity, record)
	return score, breakdown, nil
}

// dispatchAdapters runs the three source adapters concurrently. A plain
// WaitGroup is used rather than errgroup.WithContext: errgroup cancels
// every goroutine's derived context on the first error, which would break
// the required per-source isolation (one adapter's failure must never
// cancel another's in-flight call).
func (o *Orchestrator) dispatchAdapters(ctx context.Context, auditID string, identity model.LeadIdentity) *model.EnrichmentRecord {
	record := &model.EnrichmentRecord{}
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		facts, err := o.Places.Enrich(ctx, identity)
		if err != nil {
			zap.L().Warn("places adapter failed", zap.Error(err))
			return
		}
		record.Places = facts
		if facts != nil {
			if uerr := o.Audit.UpdatePlaces(ctx, auditID, facts); uerr != nil {
				zap.L().Warn("audit: update places failed", zap.String("audit_id", auditID), zap.Error(uerr))
			}
		}
	}()
	go func() {
		defer wg.Done()
		facts, err := o.CompanyData.Enrich(ctx, identity)
		if err != nil {
			zap.L().Warn("company_data adapter failed", zap.Error(err))
			return
		}
		record.Company = facts
		if facts != nil {
			if uerr := o.Audit.UpdateCompany(ctx, auditID, facts); uerr != nil {
				zap.L().Warn("audit: update company failed", zap.String("audit_id", auditID), zap.Error(uerr))
			}
		}
	}()
	go func() {
		defer wg.Done()
		facts, err := o.WebTech.Enrich(ctx, identity)
		if err != nil {
			zap.L().Warn("webtech adapter failed", zap.Error(err))
			return
		}
		record.WebTech = facts
		if facts != nil {
			if uerr := o.Audit.UpdateWebTech(ctx, auditID, facts); uerr != nil {
				zap.L().Warn("audit: update webtech failed", zap.String("audit_id", auditID), zap.Error(uerr))
			}
		}
	}()
	wg.Wait()

	return record
}

// maybeUpdateCRM calls the CRM writer only when identity carries a CRM
// identifier. Failure is non-fatal: it is logged and the audit row's
// crm_updated stays false.
func (o *Orchestrator) maybeUpdateCRM(ctx context.Context, auditID string, identity model.LeadIdentity, score int, breakdown model.ScoreBreakdown, projection model.CrmProjection) string {
	if !identity.HasCRMID() || o.CRMWriter == nil {
		return crmUpdateSkipped
	}

	updated, err := o.CRMWriter.Update(ctx, identity.CRMID, score, breakdown, projection)
	if err != nil {
		zap.L().Warn("crm update failed", zap.String("crm_id", identity.CRMID), zap.Error(err))
	}

	if uerr := o.Audit.UpdateCRMResult(ctx, auditID, updated, time.Now()); uerr != nil {
		zap.L().Warn("audit: update crm result failed", zap.String("audit_id", auditID), zap.Error(uerr))
	}

	if updated {
		return crmUpdateOK
	}
	return crmUpdateFailed
}

// newJobID generates an opaque 128-bit hex-encoded job identifier.
func newJobID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
