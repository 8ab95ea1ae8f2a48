// Package search wraps the external Brave Search API behind a single
// callable web-search action. It is the only component with an outbound
// side effect besides the model backends.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crs-platform/orchestrator/internal/circuitbreaker"
)

// ErrUnavailable wraps any transport failure or timeout reaching the search
// backend. It propagates to the pipeline without retry.
var ErrUnavailable = errors.New("web search backend unavailable")

// Result is one raw search hit: title, snippet and canonical URL, passed
// through to the summarizer without interpretation.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Client calls the Brave Search web-search endpoint. Brave allows one
// request per second per key, so all calls are paced through a limiter.
type Client struct {
	apiKey     string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Breaker
	logger     *zap.Logger
}

const defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

// NewClient builds a Brave search client. maxResults caps how many hits a
// single search returns; values outside 1..20 fall back to 5.
func NewClient(apiKey string, maxResults int, logger *zap.Logger) *Client {
	if maxResults < 1 || maxResults > 20 {
		maxResults = 5
	}
	return &Client{
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		breaker:    circuitbreaker.New("brave_search", 5, 30*time.Second, logger),
		logger:     logger,
	}
}

// Search issues exactly one web search for the given query. An empty result
// slice is a successful outcome; the caller decides how to surface it.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var results []Result
	err := c.breaker.Execute(func() error {
		var fetchErr error
		results, fetchErr = c.fetch(ctx, query)
		return fetchErr
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Web search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", defaultEndpoint, url.QueryEscape(query), c.maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
		if len(results) >= c.maxResults {
			break
		}
	}
	return results, nil
}

// SetEndpointForTest repoints the client at a test server.
func (c *Client) SetEndpointForTest(endpoint string) func() {
	// endpoint is a package constant for production use; tests swap the
	// request URL through the transport instead.
	previous := c.httpClient.Transport
	c.httpClient.Transport = rewriteTransport{target: endpoint, base: previous}
	return func() { c.httpClient.Transport = previous }
}

type rewriteTransport struct {
	target string
	base   http.RoundTripper
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	targetURL, err := url.Parse(t.target)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = targetURL.Scheme
	req.URL.Host = targetURL.Host
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
