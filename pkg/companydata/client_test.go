package companydata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL))
}

func TestLookup(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/companies/lookup", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Acme Corp", r.URL.Query().Get("name"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"founded_year":2010,"employee_count":12,"size_range":"11-50","industry":"Retail","naics_code":"4451","revenue_range":"$1M-$5M","headquarters":"Springfield, IL"}`))
	})

	resp, err := c.Lookup(context.Background(), LookupRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, 2010, resp.FoundedYear)
	assert.Equal(t, 12, resp.EmployeeCount)
}

func TestLookup_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	resp, err := c.Lookup(context.Background(), LookupRequest{Name: "Nobody LLC"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
}

func TestLookup_UpstreamError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal"}`))
	})

	_, err := c.Lookup(context.Background(), LookupRequest{Name: "Acme Corp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestLookup_ContextCancelled(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should have been cancelled")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Lookup(ctx, LookupRequest{Name: "Acme Corp"})
	require.Error(t, err)
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := NewClient("key", WithHTTPClient(custom)).(*httpClient)
	assert.Equal(t, custom, c.http)
}

func TestWithRateLimit(t *testing.T) {
	t.Run("sets limiter", func(t *testing.T) {
		c := NewClient("key", WithRateLimit(10)).(*httpClient)
		require.NotNil(t, c.limiter)
		assert.Equal(t, rate.Limit(10), c.limiter.Limit())
		assert.Equal(t, 10, c.limiter.Burst())
	})

	t.Run("zero rate skips limiter", func(t *testing.T) {
		c := NewClient("key", WithRateLimit(0)).(*httpClient)
		assert.Nil(t, c.limiter)
	})

	t.Run("no option means no limiter", func(t *testing.T) {
		c := NewClient("key").(*httpClient)
		assert.Nil(t, c.limiter)
	})
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	c := &httpClient{limiter: rate.NewLimiter(rate.Every(time.Hour), 0)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Lookup(ctx, LookupRequest{Name: "Acme Corp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
