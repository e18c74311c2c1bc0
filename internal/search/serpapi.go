// Package search queries an external web-search API and normalizes
// its results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eva/internal/logger"
)

// Item is one normalized search result.
type Item struct {
	Title   string
	URL     string
	Snippet string
}

// SerpEngine queries the SerpAPI Google endpoint.
type SerpEngine struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

// Option tweaks a SerpEngine.
type Option func(*SerpEngine)

// WithHTTPClient replaces the default HTTP client, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *SerpEngine) { e.client = c }
}

// NewSerpEngine builds an engine. baseURL defaults to the public
// SerpAPI endpoint and maxResults to 5.
func NewSerpEngine(apiKey, baseURL string, maxResults int, opts ...Option) *SerpEngine {
	if baseURL == "" {
		baseURL = "https://serpapi.com/search.json"
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	e := &SerpEngine{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the query and returns up to maxResults organic results.
func (e *SerpEngine) Search(ctx context.Context, query string) ([]Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", e.apiKey)
	params.Set("num", strconv.Itoa(e.maxResults))
	params.Set("hl", "fr")
	params.Set("gl", "fr")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "EVA/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var payload struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("search API error: %s", payload.Error)
	}

	items := make([]Item, 0, len(payload.Organic))
	for _, r := range payload.Organic {
		items = append(items, Item{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
		if len(items) >= e.maxResults {
			break
		}
	}
	logger.Debug("search: %q returned %d results", query, len(items))
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
