// Package crm implements the CRM writer (C7): an idempotent, retrying
// update of one Lead record's score and projected fields.
package crm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/salesforce"
)

// ErrInvalidCRMID is returned immediately, without any upstream attempt,
// when the id does not match the documented Lead-id format.
var ErrInvalidCRMID = eris.New("crm: crm_id does not match the expected format")

// ErrLeadNotFound is returned when crmID has a valid format but no matching
// Lead record exists in Salesforce.
var ErrLeadNotFound = eris.New("crm: lead not found")

// leadObject is the Salesforce object the writer updates.
const leadObject = "Lead"

// Writer updates a single CRM Lead record by id. It authenticates lazily on
// first use, caches the session, and re-authenticates once on a "session
// expired" error before surfacing failure.
type Writer struct {
	mu           sync.Mutex
	client       salesforce.Client
	authenticate func() (salesforce.Client, error)
	retryCfg     resilience.RetryConfig
}

// NewWriter builds a Writer. authenticate is called lazily (and again on
// re-auth) to obtain a freshly-authenticated client.
func NewWriter(authenticate func() (salesforce.Client, error), retryCfg resilience.RetryConfig) *Writer {
	retryCfg.MaxAttempts = 3
	if retryCfg.ShouldRetry == nil {
		retryCfg.ShouldRetry = func(err error) bool {
			return resilience.IsTransient(err) || isSessionExpired(err)
		}
	}
	return &Writer{authenticate: authenticate, retryCfg: retryCfg}
}

// Update writes score, breakdown, and projection to the Lead identified by
// crmID. It returns false (with the triggering error) on any failure; the
// caller treats a false return as a non-fatal, logged CRM-write failure.
func (w *Writer) Update(ctx context.Context, crmID string, score int, breakdown model.ScoreBreakdown, projection model.CrmProjection) (bool, error) {
	if !model.IsValidCRMID(crmID) {
		return false, ErrInvalidCRMID
	}

	fields, err := buildFields(score, breakdown, projection)
	if err != nil {
		return false, eris.Wrap(err, "crm: build update fields")
	}

	reauthenticated := false
	retryCfg := w.retryCfg
	retryCfg.OnRetry = resilience.RetryLogger("salesforce", "update_lead")

	updateErr := resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
		client, cerr := w.ensureClient()
		if cerr != nil {
			// Authentication failures are retried, so a persistent one
			// surfaces once the retry budget is spent.
			return resilience.NewTransientError(cerr, 0)
		}

		lead, ferr := salesforce.FindLeadByID(ctx, client, crmID)
		if ferr != nil {
			return eris.Wrap(ferr, "crm: verify lead exists")
		}
		if lead == nil {
			return eris.Wrap(ErrLeadNotFound, crmID)
		}

		uerr := client.UpdateOne(ctx, leadObject, crmID, fields)
		if uerr != nil && isSessionExpired(uerr) && !reauthenticated {
			reauthenticated = true
			zap.L().Warn("salesforce session expired, re-authenticating", zap.String("crm_id", crmID))
			if _, rerr := w.reauthenticate(); rerr != nil {
				return eris.Wrap(rerr, "crm: re-authenticate")
			}
		}
		return uerr
	})
	if updateErr != nil {
		return false, eris.Wrap(updateErr, "crm: update lead")
	}
	return true, nil
}

func (w *Writer) ensureClient() (salesforce.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		return w.client, nil
	}
	client, err := w.authenticate()
	if err != nil {
		return nil, eris.Wrap(err, "crm: authenticate")
	}
	w.client = client
	return client, nil
}

func (w *Writer) reauthenticate() (salesforce.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	client, err := w.authenticate()
	if err != nil {
		return nil, err
	}
	w.client = client
	return client, nil
}

func isSessionExpired(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "session expired") || strings.Contains(msg, "invalid_session_id")
}

func buildFields(score int, breakdown model.ScoreBreakdown, projection model.CrmProjection) (map[string]any, error) {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"Fit_Score__c":           score,
		"Fit_Score_Breakdown__c": string(breakdownJSON),
		"Has_Website__c":         projection.HasWebsite,
		"Has_GMB__c":             projection.HasGMB,
		"Spending_On_Marketing__c": projection.SpendingOnMarketing,
	}
	setIfPresent(fields, "Number_Of_Employees__c", projection.NumberOfEmployees)
	setIfPresent(fields, "Number_Of_GBP_Reviews__c", projection.NumberOfGBPReviews)
	setIfPresent(fields, "Number_Of_Years_In_Business__c", projection.NumberOfYearsInBusiness)
	setIfPresent(fields, "GMB_URL__c", projection.GMBUrl)
	setIfPresent(fields, "Location_Type__c", projection.LocationType)
	setIfPresent(fields, "Business_License__c", projection.BusinessLicense)

	return fields, nil
}

func setIfPresent(fields map[string]any, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}
