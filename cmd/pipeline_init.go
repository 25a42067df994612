package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fit-engine/internal/audit"
	"github.com/sells-group/fit-engine/internal/crm"
	"github.com/sells-group/fit-engine/internal/orchestrator"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/internal/source"
	"github.com/sells-group/fit-engine/pkg/companydata"
	"github.com/sells-group/fit-engine/pkg/firecrawl"
	"github.com/sells-group/fit-engine/pkg/places"
	"github.com/sells-group/fit-engine/pkg/webtech"
)

// retryMultiplier is the exponential-backoff growth factor shared by every
// adapter's retry policy. It is not exposed as a config knob because no
// deployment to date has needed to tune it independently of the other
// resilience parameters.
const retryMultiplier = 2.0

// enrichEnv holds every initialized client, the audit store, and the
// orchestrator needed by the enrich and serve commands.
type enrichEnv struct {
	Audit        audit.Store
	Orchestrator *orchestrator.Orchestrator
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Audit != nil {
		_ = e.Audit.Close()
	}
}

// initEnrichEnv sets up the audit store, the three source adapters (each
// wrapped in its own retry policy and circuit breaker), the CRM writer, and
// the orchestrator that wires them together.
func initEnrichEnv(ctx context.Context, mode string) (*enrichEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initAuditStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate audit store")
	}

	retryCfg := resilience.FromRetryConfig(
		cfg.Resilience.MaxAttempts,
		cfg.Resilience.InitialBackoffMillis,
		cfg.Resilience.MaxBackoffMillis,
		retryMultiplier,
		cfg.Resilience.JitterFraction,
	)
	cbCfg := resilience.FromCircuitConfig(
		cfg.Resilience.FailureThreshold,
		cfg.Resilience.ResetTimeoutSecs,
		cfg.Resilience.MonitoringWindowSecs,
	)
	cbCfg.ShouldTrip = resilience.IsTransient

	placesClient := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRateLimit(cfg.Places.RateLimit),
	)
	placesAdapter := source.NewPlacesAdapter(placesClient, resilience.NewCircuitBreaker(cbCfg), retryCfg)

	companyDataClient := companydata.NewClient(cfg.CompanyData.APIKey,
		companydata.WithBaseURL(cfg.CompanyData.BaseURL),
		companydata.WithRateLimit(cfg.CompanyData.RateLimit),
	)
	companyDataAdapter := source.NewCompanyDataAdapter(companyDataClient, resilience.NewCircuitBreaker(cbCfg), retryCfg)

	renderer := webtech.Shared(func() firecrawl.Client {
		return firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
	})
	webTechAdapter := source.NewWebTechAdapter(renderer, resilience.NewCircuitBreaker(cbCfg), retryCfg)

	var writer *crm.Writer
	if cfg.Salesforce.ClientID != "" {
		writer = crm.NewWriter(newSalesforceAuthenticator(), retryCfg)
	}

	orch := orchestrator.New(placesAdapter, companyDataAdapter, webTechAdapter, st, writer)

	return &enrichEnv{
		Audit:        st,
		Orchestrator: orch,
	}, nil
}
