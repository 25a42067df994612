// Package mocks provides test doubles for the companydata client.
package mocks

import (
	"context"

	companydata "github.com/sells-group/fit-engine/pkg/companydata"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Lookup provides a mock function with given fields: ctx, req
func (_m *MockClient) Lookup(ctx context.Context, req companydata.LookupRequest) (*companydata.LookupResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Lookup")
	}

	var r0 *companydata.LookupResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, companydata.LookupRequest) (*companydata.LookupResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, companydata.LookupRequest) *companydata.LookupResponse); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*companydata.LookupResponse)
	}

	if rf, ok := ret.Get(1).(func(context.Context, companydata.LookupRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
