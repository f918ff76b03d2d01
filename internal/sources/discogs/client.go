// Package discogs talks to the Discogs REST API: the user's collection
// folder, full release details, and artist profiles. Discogs is the
// cataloging source, so a failure here stops the release it concerns; the
// enrichment providers are allowed to fail without that consequence.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"crate/internal/config"
	"crate/internal/sources"
)

const (
	sourceName         = "discogs"
	defaultBaseURL     = "https://api.discogs.com"
	defaultHTTPTimeout = 15 * time.Second

	// Authenticated Discogs clients are limited to 60 requests per minute.
	defaultRequestsPerMinute = 60
)

// Client wraps the Discogs REST API for one authenticated user.
type Client struct {
	token      string
	username   string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      sources.Policy
}

// Option customizes the Discogs client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base, used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithRetryPolicy overrides the transient retry policy.
func WithRetryPolicy(policy sources.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient constructs a Discogs client from configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	perMinute := cfg.Discogs.RequestsPerMn
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}

	client := &Client{
		token:      strings.TrimSpace(cfg.Discogs.Token),
		username:   strings.TrimSpace(cfg.Discogs.Username),
		baseURL:    strings.TrimRight(cfg.Discogs.BaseURL, "/"),
		userAgent:  sources.UserAgent(cfg.Wikipedia.Contact),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		retry:      sources.PolicyFromConfig(cfg.Retry),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client
}

// getJSON performs one rate-limited, retried GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, operation, url string, out any) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return sources.Wrap(sources.ErrFatal, sourceName, operation, "build request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Discogs token="+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return sources.ClassifyTransport(sourceName, operation, err)
		}
		defer resp.Body.Close()

		if classified := sources.ClassifyStatus(sourceName, operation, resp); classified != nil {
			io.Copy(io.Discard, resp.Body)
			return classified
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return sources.Wrap(sources.ErrTransient, sourceName, operation, "read body", err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return sources.Wrap(sources.ErrTransient, sourceName, operation, "decode response", err)
		}
		return nil
	})
}

func (c *Client) endpoint(format string, args ...any) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}
