package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/companydata"
)

// CompanyDataAdapter satisfies the CompanyData contract over a
// pkg/companydata.Client.
type CompanyDataAdapter struct {
	client    companydata.Client
	breaker   *resilience.CircuitBreaker
	retryCfg  resilience.RetryConfig
	currentYear func() int
}

// NewCompanyDataAdapter builds the adapter. currentYear is set to read the
// real calendar year; tests may override the field.
func NewCompanyDataAdapter(client companydata.Client, breaker *resilience.CircuitBreaker, retryCfg resilience.RetryConfig) *CompanyDataAdapter {
	return &CompanyDataAdapter{
		client:   client,
		breaker:  breaker,
		retryCfg: retryCfg,
		currentYear: func() int {
			return time.Now().Year()
		},
	}
}

// Enrich queries the company-data source by name, website, and locality.
func (a *CompanyDataAdapter) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.CompanyFacts, error) {
	req := companydata.LookupRequest{
		Name:     identity.BusinessName,
		Website:  identity.Website,
		Locality: joinLocality(identity.City, identity.State),
	}
	if req.Name == "" && req.Website == "" && req.Locality == "" {
		return nil, nil
	}

	resp, err := withResilience(ctx, a.breaker, a.retryCfg, "companydata", func(ctx context.Context) (*companydata.LookupResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
		defer cancel()
		return a.client.Lookup(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrap(err, "companydata adapter: lookup")
	}
	if resp == nil || !resp.Found {
		return nil, nil
	}

	facts := &model.CompanyFacts{
		FoundedYear:   resp.FoundedYear,
		EmployeeCount: resp.EmployeeCount,
		SizeRange:     resp.SizeRange,
		Industry:      resp.Industry,
		RevenueRange:  resp.RevenueRange,
		Headquarters:  resp.Headquarters,
	}
	if facts.FoundedYear > 0 {
		facts.YearsInBusiness = a.currentYear() - facts.FoundedYear
		if facts.YearsInBusiness < 0 {
			facts.YearsInBusiness = 0
		}
	}

	return facts, nil
}

func joinLocality(city, state string) string {
	if city == "" {
		return state
	}
	if state == "" {
		return city
	}
	return city + ", " + state
}
