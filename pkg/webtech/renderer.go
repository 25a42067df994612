// Package webtech renders a target page with JavaScript executed and
// exposes the resulting markup for tracker-fingerprint inspection. It
// wraps a JS-rendering scrape service (github.com/sells-group/fit-engine/pkg/firecrawl)
// behind a single process-wide instance so every request reuses the same
// connection pool instead of paying per-request client setup cost.
package webtech

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fit-engine/pkg/firecrawl"
)

// Rendered is the fully-rendered page content a Renderer returns.
type Rendered struct {
	URL      string
	HTML     string
	Title    string
	FetchedOK bool
}

// Renderer loads a URL with JavaScript executed and returns the final DOM
// content. It is safe for concurrent use.
type Renderer struct {
	client firecrawl.Client
}

var (
	singleton     *Renderer
	singletonOnce sync.Once
	singletonMu   sync.Mutex
)

// Shared returns the process-wide Renderer, constructing it on first use
// from newClient. Subsequent calls ignore newClient and return the existing
// instance.
func Shared(newClient func() firecrawl.Client) *Renderer {
	singletonOnce.Do(func() {
		singletonMu.Lock()
		defer singletonMu.Unlock()
		singleton = &Renderer{client: newClient()}
	})
	return singleton
}

// ResetShared tears down the process-wide Renderer so a later call to
// Shared constructs a fresh one. Intended for test isolation and graceful
// shutdown; callers must not hold a Render call in flight when calling this.
func ResetShared() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singleton = nil
	singletonOnce = sync.Once{}
}

// NewRenderer builds a Renderer over an explicit client, bypassing the
// shared singleton. Useful for tests and for callers that need isolation.
func NewRenderer(client firecrawl.Client) *Renderer {
	return &Renderer{client: client}
}

// Render loads url with JavaScript executed and returns the rendered
// markup. Callers are expected to apply their own timeout via ctx.
func (r *Renderer) Render(ctx context.Context, url string) (*Rendered, error) {
	resp, err := r.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     url,
		Formats: []string{"rawHtml"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "webtech: render")
	}
	if !resp.Success {
		return &Rendered{URL: url, FetchedOK: false}, nil
	}
	return &Rendered{
		URL:       url,
		HTML:      resp.Data.RawHTML,
		Title:     resp.Data.Title,
		FetchedOK: true,
	}, nil
}
