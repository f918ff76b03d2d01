// Package applemusic searches the Apple Music catalog for albums and
// artists. Requests carry a locally signed ES256 developer token; results
// are fuzzy-matched against the query so catalog near-misses do not
// attach the wrong album.
package applemusic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/time/rate"

	"crate/internal/config"
	"crate/internal/record"
	"crate/internal/sources"
)

const (
	sourceName         = "apple music"
	defaultBaseURL     = "https://api.music.apple.com/v1/catalog"
	defaultHTTPTimeout = 15 * time.Second

	// Apple publishes no hard budget; this stays well under what the
	// catalog API tolerates for a developer token.
	defaultRequestsPerMinute = 180

	searchLimit    = 5
	matchThreshold = 0.85
)

// TokenSource supplies a current developer token for catalog requests.
type TokenSource interface {
	Token() (string, error)
}

// Client wraps the Apple Music catalog search API for one storefront.
type Client struct {
	storefront string
	baseURL    string
	userAgent  string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      sources.Policy
}

// Option customizes the Apple Music client.
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

// NewClient constructs an Apple Music client from configuration. tokens is
// usually a TokenManager built from the same config.
func NewClient(cfg *config.Config, tokens TokenSource, opts ...Option) *Client {
	client := &Client{
		storefront: strings.TrimSpace(cfg.AppleMusic.Storefront),
		baseURL:    defaultBaseURL,
		userAgent:  sources.UserAgent(cfg.Wikipedia.Contact),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMinute)/60.0), 1),
		retry:      sources.PolicyFromConfig(cfg.Retry),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.storefront == "" {
		client.storefront = "us"
	}
	return client
}

type searchResponse struct {
	Results struct {
		Albums struct {
			Data []albumResource `json:"data"`
		} `json:"albums"`
		Artists struct {
			Data []artistResource `json:"data"`
		} `json:"artists"`
	} `json:"results"`
}

type albumResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name           string `json:"name"`
		ArtistName     string `json:"artistName"`
		URL            string `json:"url"`
		EditorialNotes struct {
			Standard string `json:"standard"`
			Short    string `json:"short"`
		} `json:"editorialNotes"`
		Artwork struct {
			URL string `json:"url"`
		} `json:"artwork"`
	} `json:"attributes"`
}

type artistResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name           string   `json:"name"`
		URL            string   `json:"url"`
		GenreNames     []string `json:"genreNames"`
		EditorialNotes struct {
			Standard string `json:"standard"`
			Short    string `json:"short"`
		} `json:"editorialNotes"`
		Artwork struct {
			URL string `json:"url"`
		} `json:"artwork"`
	} `json:"attributes"`
}

// SearchAlbum looks up an album by artist and title. A result that does
// not resemble the query closely enough counts as a miss.
func (c *Client) SearchAlbum(ctx context.Context, artist, title string) (*record.AppleMusicAlbum, error) {
	query := record.CleanName(artist) + " " + record.CleanName(title)
	decoded, err := c.search(ctx, "search album", query, "albums")
	if err != nil {
		return nil, err
	}

	want := normalizeForMatch(record.CleanName(artist) + " " + title)
	var best *albumResource
	var bestScore float64
	for index := range decoded.Results.Albums.Data {
		candidate := &decoded.Results.Albums.Data[index]
		got := normalizeForMatch(candidate.Attributes.ArtistName + " " + candidate.Attributes.Name)
		score := strutil.Similarity(want, got, metrics.NewJaroWinkler())
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if best == nil || bestScore < matchThreshold {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, "search album", fmt.Sprintf("no close match for %q", query), nil)
	}

	album := &record.AppleMusicAlbum{
		ID:                 best.ID,
		URL:                best.Attributes.URL,
		EditorialNote:      strings.TrimSpace(best.Attributes.EditorialNotes.Standard),
		ArtworkURLTemplate: best.Attributes.Artwork.URL,
	}
	if album.EditorialNote == "" {
		album.EditorialNote = strings.TrimSpace(best.Attributes.EditorialNotes.Short)
	}
	return album, nil
}

// SearchArtist looks up an artist by name with the same closeness rule.
func (c *Client) SearchArtist(ctx context.Context, name string) (*record.AppleMusicArtist, error) {
	query := record.CleanName(name)
	decoded, err := c.search(ctx, "search artist", query, "artists")
	if err != nil {
		return nil, err
	}

	want := normalizeForMatch(query)
	var best *artistResource
	var bestScore float64
	for index := range decoded.Results.Artists.Data {
		candidate := &decoded.Results.Artists.Data[index]
		score := strutil.Similarity(want, normalizeForMatch(candidate.Attributes.Name), metrics.NewJaroWinkler())
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if best == nil || bestScore < matchThreshold {
		return nil, sources.Wrap(sources.ErrMiss, sourceName, "search artist", fmt.Sprintf("no close match for %q", query), nil)
	}

	artist := &record.AppleMusicArtist{
		ID:                 best.ID,
		URL:                best.Attributes.URL,
		Genres:             best.Attributes.GenreNames,
		EditorialNote:      strings.TrimSpace(best.Attributes.EditorialNotes.Standard),
		ArtworkURLTemplate: best.Attributes.Artwork.URL,
	}
	if artist.EditorialNote == "" {
		artist.EditorialNote = strings.TrimSpace(best.Attributes.EditorialNotes.Short)
	}
	return artist, nil
}

func (c *Client) search(ctx context.Context, operation, term, types string) (*searchResponse, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("types", types)
	query.Set("limit", fmt.Sprint(searchLimit))

	endpoint := fmt.Sprintf("%s/%s/search?%s", c.baseURL, url.PathEscape(c.storefront), query.Encode())

	var decoded searchResponse
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		token, err := c.tokens.Token()
		if err != nil {
			return sources.Wrap(sources.ErrFatal, sourceName, operation, "developer token", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return sources.Wrap(sources.ErrFatal, sourceName, operation, "build request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", c.userAgent)

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
		decoded = searchResponse{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return sources.Wrap(sources.ErrTransient, sourceName, operation, "decode response", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

func normalizeForMatch(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
