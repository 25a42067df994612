package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/places"
	"github.com/sells-group/fit-engine/pkg/places/mocks"
)

func TestPlacesAdapter_NoBusinessName_ReturnsNil(t *testing.T) {
	client := new(mocks.MockClient)
	a := NewPlacesAdapter(client, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())

	facts, err := a.Enrich(context.Background(), model.LeadIdentity{})
	require.NoError(t, err)
	assert.Nil(t, facts)
	client.AssertNotCalled(t, "SearchText")
}

func TestPlacesAdapter_SelectsBestByRatingVolume(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("SearchText", mock.Anything, mock.Anything).Return(&places.SearchResponse{
		Places: []places.Candidate{
			{ID: "low", Rating: 4.9, UserRatingCount: 2, DisplayName: places.DisplayName{Text: "Low Volume"}},
			{ID: "high", Rating: 4.2, UserRatingCount: 500, DisplayName: places.DisplayName{Text: "High Volume"}},
		},
	}, nil)

	a := NewPlacesAdapter(client, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())
	facts, err := a.Enrich(context.Background(), model.LeadIdentity{BusinessName: "Acme", City: "Austin", State: "TX"})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, "high", facts.PlaceID)
}

func TestPlacesAdapter_OverwriteAddressHint_OnlyOnHighConfidenceMatch(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("SearchText", mock.Anything, mock.Anything).Return(&places.SearchResponse{
		Places: []places.Candidate{
			{
				ID:                       "p1",
				Rating:                   4.5,
				UserRatingCount:          10,
				DisplayName:              places.DisplayName{Text: "Acme Plumbing"},
				InternationalPhoneNumber: "+15125551234",
			},
		},
	}, nil)

	a := NewPlacesAdapter(client, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())
	facts, err := a.Enrich(context.Background(), model.LeadIdentity{
		BusinessName: "acme plumbing",
		Phone:        "(512) 555-1234",
	})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.True(t, facts.OverwriteAddressHint)
}

func TestPlacesAdapter_NoOverwriteHint_WhenPhoneMismatches(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("SearchText", mock.Anything, mock.Anything).Return(&places.SearchResponse{
		Places: []places.Candidate{
			{
				ID:                       "p1",
				Rating:                   4.5,
				UserRatingCount:          10,
				DisplayName:              places.DisplayName{Text: "Acme Plumbing"},
				InternationalPhoneNumber: "+15125550000",
			},
		},
	}, nil)

	a := NewPlacesAdapter(client, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())
	facts, err := a.Enrich(context.Background(), model.LeadIdentity{
		BusinessName: "acme plumbing",
		Phone:        "(512) 555-1234",
	})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.False(t, facts.OverwriteAddressHint)
}

func TestPlacesAdapter_EmptyResults_ReturnsNil(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("SearchText", mock.Anything, mock.Anything).Return(&places.SearchResponse{}, nil)

	a := NewPlacesAdapter(client, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())
	facts, err := a.Enrich(context.Background(), model.LeadIdentity{BusinessName: "Ghost LLC"})

	require.NoError(t, err)
	assert.Nil(t, facts)
}
