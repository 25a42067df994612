package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fit-engine/internal/audit"
	"github.com/sells-group/fit-engine/internal/crm"
	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/salesforce"
)

// --- adapter mocks ---

type mockPlaces struct{ mock.Mock }

func (m *mockPlaces) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.PlacesFacts, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlacesFacts), args.Error(1)
}

type mockCompanyData struct{ mock.Mock }

func (m *mockCompanyData) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.CompanyFacts, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompanyFacts), args.Error(1)
}

type mockWebTech struct{ mock.Mock }

func (m *mockWebTech) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.WebTechFacts, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WebTechFacts), args.Error(1)
}

// --- in-memory audit store ---

type fakeAuditStore struct {
	mu   sync.Mutex
	rows map[string]*model.AuditRow
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{rows: make(map[string]*model.AuditRow)}
}

func (f *fakeAuditStore) CreatePending(ctx context.Context, leadID, crmID, jobID string) (*model.AuditRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := jobID
	row := &model.AuditRow{ID: id, LeadID: leadID, CRMID: crmID, JobID: jobID, Status: model.StatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.rows[id] = row
	return row, nil
}

func (f *fakeAuditStore) UpdatePlaces(ctx context.Context, id string, facts *model.PlacesFacts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Places = facts
	return nil
}

func (f *fakeAuditStore) UpdateCompany(ctx context.Context, id string, facts *model.CompanyFacts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Company = facts
	return nil
}

func (f *fakeAuditStore) UpdateWebTech(ctx context.Context, id string, facts *model.WebTechFacts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].WebTech = facts
	return nil
}

func (f *fakeAuditStore) UpdateScore(ctx context.Context, id string, score int, breakdown model.ScoreBreakdown) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].FitScore = &score
	f.rows[id].Breakdown = &breakdown
	return nil
}

func (f *fakeAuditStore) UpdateProjection(ctx context.Context, id string, projection model.CrmProjection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Projection = &projection
	return nil
}

func (f *fakeAuditStore) UpdateCRMResult(ctx context.Context, id string, updated bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].CRMUpdated = updated
	f.rows[id].CRMUpdatedAt = &at
	return nil
}

func (f *fakeAuditStore) FinalizeStatus(ctx context.Context, id string, status model.EnrichmentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Status = status
	f.rows[id].ErrorMessage = errMessage
	return nil
}

func (f *fakeAuditStore) GetRow(ctx context.Context, id string) (*model.AuditRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, audit.ErrRowNotFound
	}
	return row, nil
}

func (f *fakeAuditStore) ListRows(ctx context.Context, filter audit.Filter) ([]model.AuditRow, error) {
	return nil, nil
}

func (f *fakeAuditStore) Ping(ctx context.Context) error    { return nil }
func (f *fakeAuditStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeAuditStore) Close() error                      { return nil }

// --- fake salesforce client for CRM-write paths ---

type fakeSFClient struct {
	updateErr error
	updated   bool
}

func (f *fakeSFClient) Query(ctx context.Context, soql string, out any) error {
	leads := out.(*[]salesforce.Lead)
	*leads = []salesforce.Lead{{ID: "00Qxx0000012345"}}
	return nil
}

func (f *fakeSFClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	return "", nil
}

func (f *fakeSFClient) InsertCollection(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	return nil, nil
}

func (f *fakeSFClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	f.updated = true
	return f.updateErr
}

func (f *fakeSFClient) UpdateCollection(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
	return nil, nil
}

func (f *fakeSFClient) DescribeSObject(ctx context.Context, name string) (*salesforce.SObjectDescription, error) {
	return nil, nil
}

func newTestWriter(sfClient *fakeSFClient) *crm.Writer {
	cfg := resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	return crm.NewWriter(func() (salesforce.Client, error) { return sfClient, nil }, cfg)
}

func validIdentity() model.LeadIdentity {
	return model.LeadIdentity{BusinessName: "Acme Co"}
}

func TestEnrich_NoFacts_StatusNoData(t *testing.T) {
	places := &mockPlaces{}
	places.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	company := &mockCompanyData{}
	company.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	webtech := &mockWebTech{}
	webtech.On("Enrich", mock.Anything, mock.Anything).Return(&model.WebTechFacts{}, nil)

	store := newFakeAuditStore()
	o := New(places, company, webtech, store, nil)

	result, err := o.Enrich(context.Background(), validIdentity())
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoData, result.Status)
	assert.Equal(t, crmUpdateSkipped, result.CRMUpdateStatus)
}

func TestEnrich_SomeFacts_StatusCompleted(t *testing.T) {
	places := &mockPlaces{}
	places.On("Enrich", mock.Anything, mock.Anything).Return(&model.PlacesFacts{ReviewCount: 20, Operational: true, Address: "1 Main St"}, nil)
	company := &mockCompanyData{}
	company.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	webtech := &mockWebTech{}
	webtech.On("Enrich", mock.Anything, mock.Anything).Return(&model.WebTechFacts{HasMetaPixel: true}, nil)

	store := newFakeAuditStore()
	o := New(places, company, webtech, store, nil)

	result, err := o.Enrich(context.Background(), validIdentity())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, result.Status)
	assert.True(t, result.Score > 0)

	row, err := store.GetRow(context.Background(), result.AuditID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, row.Status)
	require.NotNil(t, row.FitScore)
}

func TestEnrich_OneAdapterFails_OthersStillMerge(t *testing.T) {
	places := &mockPlaces{}
	places.On("Enrich", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	company := &mockCompanyData{}
	company.On("Enrich", mock.Anything, mock.Anything).Return(&model.CompanyFacts{YearsInBusiness: 5, EmployeeCount: 10}, nil)
	webtech := &mockWebTech{}
	webtech.On("Enrich", mock.Anything, mock.Anything).Return(&model.WebTechFacts{}, nil)

	store := newFakeAuditStore()
	o := New(places, company, webtech, store, nil)

	result, err := o.Enrich(context.Background(), validIdentity())
	require.NoError(t, err)
	assert.Nil(t, result.Record.Places)
	require.NotNil(t, result.Record.Company)
	assert.Equal(t, model.StatusCompleted, result.Status)
}

func TestEnrich_WithCRMID_UpdatesCRM(t *testing.T) {
	places := &mockPlaces{}
	places.On("Enrich", mock.Anything, mock.Anything).Return(&model.PlacesFacts{}, nil)
	company := &mockCompanyData{}
	company.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	webtech := &mockWebTech{}
	webtech.On("Enrich", mock.Anything, mock.Anything).Return(&model.WebTechFacts{}, nil)

	store := newFakeAuditStore()
	sfClient := &fakeSFClient{}
	writer := newTestWriter(sfClient)
	o := New(places, company, webtech, store, writer)

	identity := validIdentity()
	identity.CRMID = "00Qxx0000012345"

	result, err := o.Enrich(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, crmUpdateOK, result.CRMUpdateStatus)
	assert.True(t, sfClient.updated)

	row, err := store.GetRow(context.Background(), result.AuditID)
	require.NoError(t, err)
	assert.True(t, row.CRMUpdated)
}

func TestEnrich_CRMWriteFails_NonFatal(t *testing.T) {
	places := &mockPlaces{}
	places.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	company := &mockCompanyData{}
	company.On("Enrich", mock.Anything, mock.Anything).Return(nil, nil)
	webtech := &mockWebTech{}
	webtech.On("Enrich", mock.Anything, mock.Anything).Return(&model.WebTechFacts{}, nil)

	store := newFakeAuditStore()
	sfClient := &fakeSFClient{updateErr: assert.AnError}
	writer := newTestWriter(sfClient)
	o := New(places, company, webtech, store, writer)

	identity := validIdentity()
	identity.CRMID = "00Qxx0000012345"

	result, err := o.Enrich(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, crmUpdateFailed, result.CRMUpdateStatus)

	row, err := store.GetRow(context.Background(), result.AuditID)
	require.NoError(t, err)
	assert.False(t, row.CRMUpdated)
	assert.Equal(t, model.StatusNoData, row.Status)
}

func TestEnrich_InvalidIdentity_ReturnsErrorWithoutAuditRow(t *testing.T) {
	places := &mockPlaces{}
	company := &mockCompanyData{}
	webtech := &mockWebTech{}
	store := newFakeAuditStore()
	o := New(places, company, webtech, store, nil)

	_, err := o.Enrich(context.Background(), model.LeadIdentity{})
	assert.Error(t, err)
	places.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything)
	assert.Empty(t, store.rows)
}

func TestNewJobID_Produces32HexChars(t *testing.T) {
	id, err := newJobID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}
