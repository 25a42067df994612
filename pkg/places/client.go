// Package places adapts a Google-Places-shaped text search API into the
// Facts contract the enrichment core expects (internal/model.PlacesFacts).
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const searchFieldMask = "places.id,places.displayName.text,places.primaryType,places.types," +
	"places.userRatingCount,places.rating,places.formattedAddress,places.businessStatus," +
	"places.websiteUri,places.internationalPhoneNumber"

// Client performs the text-search lookup the Places adapter needs.
type Client interface {
	SearchText(ctx context.Context, query string) (*SearchResponse, error)
}

// SearchResponse is the response from a places text search.
type SearchResponse struct {
	Places []Candidate `json:"places"`
}

// Candidate is one business returned by the search.
type Candidate struct {
	ID                        string      `json:"id"`
	DisplayName               DisplayName `json:"displayName"`
	PrimaryType               string      `json:"primaryType"`
	Types                     []string    `json:"types"`
	UserRatingCount           int         `json:"userRatingCount"`
	Rating                    float64     `json:"rating"`
	FormattedAddress          string      `json:"formattedAddress"`
	BusinessStatus            string      `json:"businessStatus"`
	WebsiteURI                string      `json:"websiteUri"`
	InternationalPhoneNumber  string      `json:"internationalPhoneNumber"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
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

// NewClient creates a Places text-search client.
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

type searchRequest struct {
	TextQuery string `json:"textQuery"`
}

// SearchText issues a free-text query (e.g. "<business name> <city> <state>")
// and returns candidate matches.
func (c *httpClient) SearchText(ctx context.Context, query string) (*SearchResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	body, err := json.Marshal(searchRequest{TextQuery: query})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	return &result, nil
}
