package source

import (
	"context"
	"net/http"
	"time"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/webtech"
)

// renderTimeout is the hard per-page timeout the spec assigns the
// web-tech adapter, distinct from the 30s shared by the other two sources.
const renderTimeout = 15 * time.Second

// WebTechAdapter satisfies the WebTech contract over the shared Renderer.
type WebTechAdapter struct {
	renderer    *webtech.Renderer
	breaker     *resilience.CircuitBreaker
	retryCfg    resilience.RetryConfig
	domainAgeFn func(ctx context.Context, websiteURL string) (int, bool)
}

// NewWebTechAdapter builds the adapter over a Renderer (normally
// webtech.Shared(...)) and a breaker dedicated to the rendering service.
func NewWebTechAdapter(renderer *webtech.Renderer, breaker *resilience.CircuitBreaker, retryCfg resilience.RetryConfig) *WebTechAdapter {
	domainAgeHTTP := &http.Client{Timeout: 5 * time.Second}
	return &WebTechAdapter{
		renderer: renderer,
		breaker:  breaker,
		retryCfg: retryCfg,
		domainAgeFn: func(ctx context.Context, websiteURL string) (int, bool) {
			return webtech.DomainAge(ctx, domainAgeHTTP, websiteURL)
		},
	}
}

// Enrich is only meaningful when identity carries a website; callers that
// skip this adapter for website-less identities still get the all-false
// default by calling it with an empty Website, which is handled here too.
func (a *WebTechAdapter) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.WebTechFacts, error) {
	website := identity.Website
	if website == "" {
		return &model.WebTechFacts{}, nil
	}

	rendered, err := withResilience(ctx, a.breaker, a.retryCfg, "webtech", func(ctx context.Context) (*webtech.Rendered, error) {
		ctx, cancel := context.WithTimeout(ctx, renderTimeout)
		defer cancel()
		return a.renderer.Render(ctx, website)
	})
	if err != nil || rendered == nil || !rendered.FetchedOK {
		// Render failures are not reported upward: §4.3 requires the
		// all-false default, not an adapter-level error.
		return &model.WebTechFacts{}, nil
	}

	fp := webtech.Detect(rendered.HTML)
	facts := &model.WebTechFacts{
		HasMetaPixel:           fp.HasMetaPixel,
		HasGoogleAnalytics:     fp.HasGoogleAnalytics,
		HasGoogleAdsTag:        fp.HasGoogleAdsTag,
		HasTikTokPixel:         fp.HasTikTokPixel,
		HasMarketingAutomation: fp.HasMarketingAutomation,
		ToolTags:               fp.ToolTags,
	}
	facts.PixelCount = facts.ComputePixelCount()

	if years, ok := a.domainAgeFn(ctx, website); ok {
		facts.DomainAgeYears = years
		facts.DomainAgeKnown = true
	}

	return facts, nil
}
