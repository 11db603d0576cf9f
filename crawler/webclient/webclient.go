/*
	Package webclient provides the polite HTTP fetch collaborator used by
	the crawler's fetch stage. Requests to the same host are spaced by a
	configurable download delay, carry a configurable User-Agent header
	and are re-attempted on timeout or network failure with a fresh
	deadline per attempt.
*/
package webclient

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mycok/kwScout/crawler"
)

const (
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout       = 10 * time.Second
	defaultMaxRetries    = 1
	defaultDownloadDelay = 500 * time.Millisecond
)

// Static and compile-time check to ensure Client implements the
// crawler.URLGetter interface.
var _ crawler.URLGetter = (*Client)(nil)

// Config defines configurations for the web client.
type Config struct {
	// The User-Agent header value sent with every request. If not
	// specified, a desktop browser agent will be used instead.
	UserAgent string

	// The deadline applied to each request attempt. If not specified,
	// 10 seconds will be used instead.
	RequestTimeout time.Duration

	// The number of times a request is re-attempted after a timeout or
	// network failure. If not specified, a single retry will be used
	// instead.
	MaxRetries int

	// The minimum pause between successive requests to the same host.
	// If not specified, 500ms will be used instead.
	DownloadDelay time.Duration

	// Whether fetches should honor robots exclusion policies. The flag
	// is carried for transports that implement enforcement.
	RespectRobotsPolicy bool
}

func (config *Config) applyDefaults() {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultTimeout
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}

	if config.DownloadDelay <= 0 {
		config.DownloadDelay = defaultDownloadDelay
	}
}

// Client performs polite HTTP GET requests on behalf of the crawler's
// fetch stage.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient instantiates and returns a web client instance.
func NewClient(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Get fetches the provided URL. Timed-out and failed attempts are
// retried up to the configured retry budget; each attempt gets the full
// request deadline. HTTP error statuses are returned to the caller
// as-is, they never trigger a retry.
func (c *Client) Get(ctx context.Context, urlStr string) (*http.Response, error) {
	limiter := c.limiterFor(hostOf(urlStr))

	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Run cancellation is not retryable.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// limiterFor returns the politeness limiter for a host, creating it on
// first use.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, exists := c.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(c.cfg.DownloadDelay), 1)
		c.limiters[host] = limiter
	}

	return limiter
}

func hostOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	return parsed.Hostname()
}
