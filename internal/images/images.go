// Package images downloads cover art and artist photos for the rendered
// site. Files already on disk are never fetched again, so repeated runs
// cost nothing for an unchanged collection.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"crate/internal/config"
	"crate/internal/logging"
	"crate/internal/sources"
)

const defaultHTTPTimeout = 30 * time.Second

// Fetcher downloads images with bounded retries and a sentinel fallback.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	retries     int
	retryDelay  time.Duration
	maxSize     int
	sentinelURL string
	logger      *slog.Logger
}

// Option customizes the fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithSentinelURL overrides the missing-artwork fallback image.
func WithSentinelURL(url string) Option {
	return func(f *Fetcher) {
		f.sentinelURL = url
	}
}

// WithRetryDelay overrides the pause between download attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDelay = delay
	}
}

// NewFetcher builds an image fetcher from configuration.
func NewFetcher(cfg *config.Config, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	retries := cfg.Retry.ImageRetries
	if retries < 1 {
		retries = 3
	}
	fetcher := &Fetcher{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		userAgent:  sources.UserAgent(cfg.Wikipedia.Contact),
		retries:    retries,
		retryDelay: time.Second,
		maxSize:    cfg.AppleMusic.ArtworkSize,
		logger:     logging.WithComponent(logger, "images"),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// Download fetches url into path unless the file already exists. Oversized
// images are scaled down to the configured dimension before writing. When
// every attempt fails and a sentinel is configured, the sentinel image is
// fetched instead so the page never renders a broken reference.
func (f *Fetcher) Download(ctx context.Context, url, path string) error {
	if url == "" {
		return fmt.Errorf("download image: empty url")
	}
	if _, err := os.Stat(path); err == nil {
		f.logger.Debug("image already present", logging.String("path", path))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	err := f.fetchWithRetries(ctx, url, path)
	if err == nil {
		return nil
	}
	if f.sentinelURL != "" && f.sentinelURL != url {
		f.logger.Warn("image download failed, using missing-artwork sentinel",
			logging.String("url", url), logging.Error(err))
		return f.fetchWithRetries(ctx, f.sentinelURL, path)
	}
	return err
}

func (f *Fetcher) fetchWithRetries(ctx context.Context, url, path string) error {
	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		lastErr = f.fetchOnce(ctx, url, path)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Debug("image download attempt failed",
			logging.String("url", url),
			logging.Int("attempt", attempt),
			logging.Error(lastErr))
		if attempt < f.retries {
			timer := time.NewTimer(f.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("download image %s after %d attempts: %w", url, f.retries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch: http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if f.maxSize > 0 {
		if scaled, scaleErr := scaleDown(data, f.maxSize); scaleErr == nil {
			data = scaled
		}
		// Undecodable bytes are written as-is; the source may serve
		// formats the decoder does not know.
	}

	// Write via a temp file so a failed download never leaves a partial
	// image that a later run would treat as present.
	tmp := path + ".partial"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize image: %w", err)
	}
	return nil
}
