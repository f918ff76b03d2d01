// Package spotify resolves collection albums to Spotify album IDs using
// the client-credentials flow. Only the ID is kept; the site embeds a
// player from it.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"crate/internal/config"
	"crate/internal/record"
	"crate/internal/sources"
)

const (
	sourceName     = "spotify"
	searchLimit    = 5
	matchThreshold = 0.85

	// Spotify rate-limits per 30-second window; this keeps a sync run
	// comfortably inside it.
	defaultRequestsPerMinute = 120
)

// Searcher is the slice of the Spotify Web API the client needs. The
// concrete implementation is *spotifyapi.Client.
type Searcher interface {
	Search(ctx context.Context, query string, t spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error)
}

// Client searches Spotify for albums in the collection.
type Client struct {
	api     Searcher
	retry   sources.Policy
	limiter *rate.Limiter
}

// Option customizes the Spotify client.
type Option func(*Client)

// WithAPI injects a prebuilt API implementation, used by tests.
func WithAPI(api Searcher) Option {
	return func(c *Client) {
		c.api = api
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

// NewClient constructs a Spotify client authenticated with the
// client-credentials grant. Token refresh is handled by the oauth2
// transport underneath.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	client := &Client{
		retry:   sources.PolicyFromConfig(cfg.Retry),
		limiter: rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMinute)/60.0), 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.api == nil {
		credentials := &clientcredentials.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		}
		httpClient := credentials.Client(context.Background())
		client.api = spotifyapi.New(httpClient)
	}
	return client
}

// SearchAlbum resolves an artist and album title to a Spotify album ID.
// Results too far from the query count as a miss.
func (c *Client) SearchAlbum(ctx context.Context, artist, title string) (*record.SpotifyAlbum, error) {
	const operation = "search album"

	artist = record.CleanName(artist)
	query := fmt.Sprintf("artist:%s album:%s", artist, title)

	var result *spotifyapi.SearchResult
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var searchErr error
		result, searchErr = c.api.Search(ctx, query, spotifyapi.SearchTypeAlbum, spotifyapi.Limit(searchLimit))
		return classifyAPIError(operation, searchErr)
	})
	if err != nil {
		return nil, err
	}

	if result == nil || result.Albums == nil || len(result.Albums.Albums) == 0 {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, operation, fmt.Sprintf("no results for %q", query), nil)
	}

	want := normalizeForMatch(artist + " " + title)
	var best *spotifyapi.SimpleAlbum
	var bestScore float64
	for index := range result.Albums.Albums {
		candidate := &result.Albums.Albums[index]
		candidateArtist := ""
		if len(candidate.Artists) > 0 {
			candidateArtist = candidate.Artists[0].Name
		}
		got := normalizeForMatch(candidateArtist + " " + candidate.Name)
		score := strutil.Similarity(want, got, metrics.NewJaroWinkler())
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if best == nil || bestScore < matchThreshold {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, operation, fmt.Sprintf("no close match for %q", query), nil)
	}

	return &record.SpotifyAlbum{ID: string(best.ID)}, nil
}

// classifyAPIError maps library errors into the shared taxonomy. The
// spotify library surfaces HTTP failures as spotifyapi.Error with the
// response status attached.
func classifyAPIError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusNotFound:
			return sources.Wrap(sources.ErrMiss, sourceName, operation, apiErr.Message, nil)
		case apiErr.Status == http.StatusUnauthorized, apiErr.Status == http.StatusForbidden:
			return sources.Wrap(sources.ErrFatal, sourceName, operation, apiErr.Message, nil)
		case apiErr.Status == http.StatusTooManyRequests, apiErr.Status >= 500:
			return sources.Wrap(sources.ErrTransient, sourceName, operation, apiErr.Message, nil)
		default:
			return sources.Wrap(sources.ErrFatal, sourceName, operation, apiErr.Message, nil)
		}
	}
	return sources.Wrap(sources.ErrTransient, sourceName, operation, "request failed", err)
}

func normalizeForMatch(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
