// Package wikipedia fetches artist summaries from the Wikimedia REST API.
// Summaries compete with Apple Music editorial notes in the reconciler,
// so only the lead extract is kept.
package wikipedia

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	"golang.org/x/time/rate"

	"crate/internal/config"
	"crate/internal/record"
	"crate/internal/sources"
)

const (
	sourceName         = "wikipedia"
	defaultBaseURL     = "https://en.wikipedia.org/api/rest_v1"
	defaultHTTPTimeout = 15 * time.Second

	// The Wikimedia REST API asks anonymous clients to stay under
	// 200 req/s; one a second is more than enough for artist summaries.
	defaultRequestsPerMinute = 60
)

// Client wraps the page-summary endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retry      sources.Policy
	limiter    *rate.Limiter
}

// Option customizes the Wikipedia client.
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

// WithRequestsPerMinute overrides the request pacing.
func WithRequestsPerMinute(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		}
	}
}

// NewClient constructs a Wikipedia client. The configured contact address
// goes into the User-Agent per the Wikimedia API policy.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(cfg.Wikipedia.BaseURL, "/"),
		userAgent:  sources.UserAgent(cfg.Wikipedia.Contact),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry:      sources.PolicyFromConfig(cfg.Retry),
		limiter:    rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMinute)/60.0), 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client
}

type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ExtractHTML string `json:"extract_html"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// disambiguation pages carry this type marker instead of a usable summary.
const disambiguationType = "disambiguation"

// Summary fetches the lead summary for a page title. Disambiguation pages
// count as misses because they describe nothing in particular.
func (c *Client) Summary(ctx context.Context, title string) (*record.WikipediaSummary, error) {
	const operation = "page summary"

	title = strings.TrimSpace(record.CleanName(title))
	if title == "" {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, operation, "empty title", nil)
	}
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	var decoded summaryResponse
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return sources.Wrap(sources.ErrFatal, sourceName, operation, "build request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

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
		decoded = summaryResponse{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return sources.Wrap(sources.ErrTransient, sourceName, operation, "decode response", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decoded.Type == disambiguationType {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, operation, "disambiguation page for "+title, nil)
	}

	summary := strings.TrimSpace(decoded.Extract)
	if summary == "" && decoded.ExtractHTML != "" {
		summary = strings.TrimSpace(html2text.HTML2Text(decoded.ExtractHTML))
	}
	if summary == "" {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, operation, "empty summary for "+title, nil)
	}

	return &record.WikipediaSummary{
		Summary: summary,
		URL:     decoded.ContentURLs.Desktop.Page,
	}, nil
}
