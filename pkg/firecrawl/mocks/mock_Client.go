// Package mocks provides test doubles for the firecrawl client.
package mocks

import (
	"context"

	firecrawl "github.com/sells-group/fit-engine/pkg/firecrawl"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

func (_m *MockClient) Crawl(ctx context.Context, req firecrawl.CrawlRequest) (*firecrawl.CrawlResponse, error) {
	ret := _m.Called(ctx, req)
	var r0 *firecrawl.CrawlResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.CrawlResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockClient) GetCrawlStatus(ctx context.Context, id string) (*firecrawl.CrawlStatusResponse, error) {
	ret := _m.Called(ctx, id)
	var r0 *firecrawl.CrawlStatusResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.CrawlStatusResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockClient) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	ret := _m.Called(ctx, req)
	var r0 *firecrawl.ScrapeResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.ScrapeResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockClient) BatchScrape(ctx context.Context, req firecrawl.BatchScrapeRequest) (*firecrawl.BatchScrapeResponse, error) {
	ret := _m.Called(ctx, req)
	var r0 *firecrawl.BatchScrapeResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.BatchScrapeResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockClient) GetBatchScrapeStatus(ctx context.Context, id string) (*firecrawl.BatchScrapeStatusResponse, error) {
	ret := _m.Called(ctx, id)
	var r0 *firecrawl.BatchScrapeStatusResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.BatchScrapeStatusResponse)
	}
	return r0, ret.Error(1)
}
