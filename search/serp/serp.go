/*
	Package serp provides a search.Provider implementation backed by the
	SerpApi HTTP service.

	The client pages through google engine results, assigning each result
	entry a 1-based position across the concatenated pages. Entries whose
	URL was already seen are skipped while still consuming their position,
	so the ranks of the produced hits may contain gaps.
*/
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/mycok/kwScout/search"
)

const (
	defaultEndpoint = "https://serpapi.com/search"
	defaultEngine   = "google"
	defaultPageSize = 10
)

// Config defines configurations for the SerpApi search client.
type Config struct {
	// The SerpApi authentication key. Required.
	APIKey string

	// The search endpoint URL. If not specified, the public SerpApi
	// endpoint will be used instead.
	Endpoint string

	// The search engine to query. If not specified, the google engine
	// will be used instead.
	Engine string

	// The number of results to request per page. If not specified,
	// a page size of 10 will be used instead.
	PageSize int

	// An API for performing HTTP requests. If not specified,
	// http.DefaultClient will be used instead.
	HTTPClient *http.Client
}

func (config *Config) validate() error {
	var err error

	if config.APIKey == "" {
		err = multierror.Append(err, fmt.Errorf("API key not provided"))
	}

	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}

	if config.Engine == "" {
		config.Engine = defaultEngine
	}

	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}

	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	return err
}

// Client queries the SerpApi service for ranked keyword search results.
// It implements the search.Provider interface.
type Client struct {
	cfg Config
}

// NewClient creates and returns a new SerpApi client instance after
// validating the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("serp client: config validation failed: %w", err)
	}

	return &Client{cfg: cfg}, nil
}

// Search returns an iterator that lazily pages through the search results
// for the provided keyword until maxResults hits have been produced or the
// backend runs out of results.
func (c *Client) Search(ctx context.Context, keyword string, maxResults int) (search.Iterator, error) {
	if keyword == "" {
		return nil, fmt.Errorf("serp client: keyword not provided")
	}

	if maxResults <= 0 {
		return nil, fmt.Errorf("serp client: invalid value for max results, must be > 0")
	}

	return &hitIterator{
		client:     c,
		ctx:        ctx,
		keyword:    keyword,
		maxResults: maxResults,
		seenURLs:   make(map[string]struct{}),
	}, nil
}

// fetchPage requests a single result page starting at the provided offset
// and returns the URLs of its organic result entries. Entries without a
// URL are returned as empty strings so that callers can account for the
// positions they occupy.
func (c *Client) fetchPage(ctx context.Context, keyword string, offset int) ([]string, error) {
	reqURL, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("serp client: invalid endpoint: %w", err)
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("engine", c.cfg.Engine)
	params.Set("num", strconv.Itoa(c.cfg.PageSize))
	params.Set("start", strconv.Itoa(offset))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("serp client: create request: %w", err)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serp client: search request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp client: unexpected response status %d", resp.StatusCode)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("serp client: decode response: %w", err)
	}

	links := make([]string, len(page.OrganicResults))
	for i, entry := range page.OrganicResults {
		links[i] = entry.Link
	}

	return links, nil
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Link string `json:"link"`
}
