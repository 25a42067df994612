// Package companydata provides a client for a company-data enrichment API:
// given a business name, website, or locality, it returns firmographic
// detail (founding year, headcount, industry, revenue, headquarters).
package companydata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.companydata.example.com/v2"

// Client performs company lookups.
type Client interface {
	Lookup(ctx context.Context, req LookupRequest) (*LookupResponse, error)
}

// LookupRequest identifies the business to look up. At least one of Name,
// Website, or Locality should be set.
type LookupRequest struct {
	Name     string
	Website  string
	Locality string
}

// LookupResponse is the best-match firmographic record, or a zero value
// with Found=false when nothing matched.
type LookupResponse struct {
	Found        bool   `json:"found"`
	FoundedYear  int    `json:"founded_year"`
	EmployeeCount int   `json:"employee_count"`
	SizeRange    string `json:"size_range"`
	Industry     string `json:"industry"`
	NAICSCode    string `json:"naics_code"`
	RevenueRange string `json:"revenue_range"`
	Headquarters string `json:"headquarters"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests at rps per second, with a burst equal
// to the integer portion of rps. A non-positive rps leaves the client
// unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a company-data API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wait blocks until the rate limiter admits one request, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) Lookup(ctx context.Context, lookup LookupRequest) (*LookupResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "companydata: rate limit")
	}

	q := url.Values{}
	if lookup.Name != "" {
		q.Set("name", lookup.Name)
	}
	if lookup.Website != "" {
		q.Set("website", lookup.Website)
	}
	if lookup.Locality != "" {
		q.Set("locality", lookup.Locality)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/companies/lookup?"+q.Encode(), bytes.NewReader(nil))
	if err != nil {
		return nil, eris.Wrap(err, "companydata: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "companydata: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return &LookupResponse{Found: false}, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "companydata: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("companydata: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result LookupResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "companydata: unmarshal response")
	}
	result.Found = true

	return &result, nil
}
