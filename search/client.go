// Package search provides the web-search provider client.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response wire format
// - HTTP transport, timeouts and retries (delegated to resty)
package search

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.tavily.com"

// Search depth values accepted by the provider.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Request is a search query sent to the provider.
type Request struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeAnswer  string   `json:"include_answer,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the provider's answer to a search request.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// apiError is the provider's error payload.
type apiError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// Searcher is the interface consumed by the tool adapters.
// Client implements it; tests substitute fakes.
type Searcher interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

// Client talks to the Tavily search API.
type Client struct {
	http *resty.Client
}

// NewClient creates a search client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetAuthToken(apiKey).
			SetRetryCount(2),
	}
}

// WithBaseURL overrides the provider endpoint. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.http.SetBaseURL(baseURL)
	return c
}

// Search executes a search request. Transport failures and non-2xx
// responses are returned as errors; the caller decides whether they are
// fatal.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	var out Response
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if resp.IsError() {
		if apiErr.Detail.Error != "" {
			return nil, fmt.Errorf("search provider returned %s: %s", resp.Status(), apiErr.Detail.Error)
		}
		return nil, fmt.Errorf("search provider returned %s", resp.Status())
	}

	return &out, nil
}

// Verify Client implements Searcher
var _ Searcher = (*Client)(nil)
