package crm

import (
	"context"

	"github.com/sells-group/fit-engine/pkg/salesforce"
)

// mockSFClient implements salesforce.Client for testing the writer in
// isolation from the real go-salesforce transport.
type mockSFClient struct {
	queryFn     func(ctx context.Context, soql string, out any) error
	updateOneFn func(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

func (m *mockSFClient) Query(ctx context.Context, soql string, out any) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, soql, out)
	}
	leads := out.(*[]salesforce.Lead)
	*leads = []salesforce.Lead{{ID: "00Qxx0000012345"}}
	return nil
}

func (m *mockSFClient) InsertOne(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "", nil
}

func (m *mockSFClient) InsertCollection(_ context.Context, _ string, _ []map[string]any) ([]salesforce.CollectionResult, error) {
	return nil, nil
}

func (m *mockSFClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if m.updateOneFn != nil {
		return m.updateOneFn(ctx, sObjectName, id, fields)
	}
	return nil
}

func (m *mockSFClient) UpdateCollection(_ context.Context, _ string, _ []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
	return nil, nil
}

func (m *mockSFClient) DescribeSObject(_ context.Context, name string) (*salesforce.SObjectDescription, error) {
	return &salesforce.SObjectDescription{Name: name}, nil
}
