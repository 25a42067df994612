// Package source implements the three C3 adapters over the Places,
// Company-data, and Web-tech upstreams, each wrapped uniformly in retry
// (C1) and a per-source circuit breaker (C2).
package source

import (
	"context"
	"time"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
)

// sourceTimeout is the hard per-call timeout every adapter enforces on its
// upstream HTTP request, independent of the caller's deadline.
const sourceTimeout = 30 * time.Second

// Places looks up a business against the Places source. A nil result with a
// nil error means no usable candidate was found.
type Places interface {
	Enrich(ctx context.Context, identity model.LeadIdentity) (*model.PlacesFacts, error)
}

// CompanyData looks up a business against the company-data source.
type CompanyData interface {
	Enrich(ctx context.Context, identity model.LeadIdentity) (*model.CompanyFacts, error)
}

// WebTech inspects a business's website for known tracker fingerprints.
type WebTech interface {
	Enrich(ctx context.Context, identity model.LeadIdentity) (*model.WebTechFacts, error)
}

// withResilience runs fn under the breaker with retry innermost: the
// breaker sees one logical call (one success or one failure), regardless of
// how many attempts retry makes underneath it, per §4.3.
func withResilience[T any](
	ctx context.Context,
	cb *resilience.CircuitBreaker,
	retryCfg resilience.RetryConfig,
	op string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	retryCfg.OnRetry = resilience.RetryLogger(op, "enrich")
	return resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (T, error) {
		return resilience.DoVal(ctx, retryCfg, fn)
	})
}
