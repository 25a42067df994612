package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/firecrawl"
	"github.com/sells-group/fit-engine/pkg/firecrawl/mocks"
	"github.com/sells-group/fit-engine/pkg/webtech"
)

func TestWebTechAdapter_NoWebsite_ReturnsAllFalseDefault(t *testing.T) {
	client := new(mocks.MockClient)
	renderer := webtech.NewRenderer(client)
	a := NewWebTechAdapter(renderer, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())

	facts, err := a.Enrich(context.Background(), model.LeadIdentity{})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.False(t, facts.HasMetaPixel)
	assert.Equal(t, 0, facts.PixelCount)
	client.AssertNotCalled(t, "Scrape")
}

func TestWebTechAdapter_RenderFailure_ReturnsAllFalseDefault(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("Scrape", mock.Anything, mock.Anything).Return(&firecrawl.ScrapeResponse{Success: false}, nil)
	renderer := webtech.NewRenderer(client)
	a := NewWebTechAdapter(renderer, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())

	facts, err := a.Enrich(context.Background(), model.LeadIdentity{Website: "https://down.example.com"})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.False(t, facts.HasGoogleAnalytics)
}

func TestWebTechAdapter_DetectsTrackersFromRenderedHTML(t *testing.T) {
	client := new(mocks.MockClient)
	client.On("Scrape", mock.Anything, mock.Anything).Return(&firecrawl.ScrapeResponse{
		Success: true,
		Data:    firecrawl.PageData{RawHTML: `<script src="https://connect.facebook.net/fbevents.js"></script>`},
	}, nil)
	renderer := webtech.NewRenderer(client)
	a := NewWebTechAdapter(renderer, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()), resilience.DefaultRetryConfig())
	a.domainAgeFn = func(_ context.Context, _ string) (int, bool) { return 0, false }

	facts, err := a.Enrich(context.Background(), model.LeadIdentity{Website: "https://acme.example.com"})

	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.True(t, facts.HasMetaPixel)
	assert.Equal(t, 1, facts.PixelCount)
}
