// Package pipeline drives a collection run: list the catalog, fetch and
// enrich each release, reconcile, persist, render. Items are processed
// strictly one at a time in catalog order; one bad item never stops the
// batch, only a fatal catalog or credential failure does.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"crate/internal/config"
	"crate/internal/logging"
	"crate/internal/record"
	"crate/internal/sources/discogs"
	"crate/internal/store"
)

// Item states, logged as each release moves through the run.
const (
	StatusPending     = "pending"
	StatusSkipped     = "skipped"
	StatusFetching    = "fetching"
	StatusEnriching   = "enriching"
	StatusReconciling = "reconciling"
	StatusPersisting  = "persisting"
	StatusRendering   = "rendering"
	StatusDone        = "done"
	StatusFailed      = "failed"
)

// Catalog is the mandatory cataloging source. A fatal failure here halts
// the whole run; the enrichment sources below are best-effort.
type Catalog interface {
	ListCollection(ctx context.Context, page, perPage int, sortOrder string) (*discogs.CollectionPage, error)
	GetRelease(ctx context.Context, releaseID int64) (*record.Release, error)
	GetArtist(ctx context.Context, artistID int64) (*record.Artist, error)
}

// AppleMusicSource searches the Apple Music catalog.
type AppleMusicSource interface {
	SearchAlbum(ctx context.Context, artist, title string) (*record.AppleMusicAlbum, error)
	SearchArtist(ctx context.Context, name string) (*record.AppleMusicArtist, error)
}

// SpotifySource resolves albums to Spotify IDs.
type SpotifySource interface {
	SearchAlbum(ctx context.Context, artist, title string) (*record.SpotifyAlbum, error)
}

// WikipediaSource fetches artist summaries.
type WikipediaSource interface {
	Summary(ctx context.Context, title string) (*record.WikipediaSummary, error)
}

// Renderer writes site content for canonical records.
type Renderer interface {
	RenderRelease(release *record.Release) (string, error)
	RenderArtist(artist *record.Artist) (string, error)
	ReleaseImagePath(release *record.Release) string
	ArtistImagePath(artist *record.Artist) string
}

// ImageFetcher downloads an image unless it is already on disk.
type ImageFetcher interface {
	Download(ctx context.Context, url, path string) error
}

// Scope selects which part of the collection a run covers.
type Scope struct {
	// Limit caps the number of items processed; zero means the whole
	// collection.
	Limit int
	// ArtistID restricts the run to one artist's releases.
	ArtistID int64
	// ReleaseID restricts the run to a single release, fetched directly.
	ReleaseID int64
	// ArtistsOnly refreshes artist records and pages without touching
	// releases.
	ArtistsOnly bool
	// Force re-processes items already marked done.
	Force bool
	// DryRun walks the collection and reports what would change without
	// writing to the store or the site.
	DryRun bool
}

// Summary is the outcome of one run.
type Summary struct {
	RunID           string
	Processed       int
	Skipped         int
	AlreadyDone     int
	Failed          int
	ArtistsUpdated  int
	MissedFragments int
	Duration        time.Duration
}

// Pipeline owns one run at a time over the shared cache store.
type Pipeline struct {
	cfg      *config.Config
	store    *store.Store
	catalog  Catalog
	apple    AppleMusicSource
	spotify  SpotifySource
	wiki     WikipediaSource
	renderer Renderer
	images   ImageFetcher
	logger   *slog.Logger

	delay time.Duration
}

// New wires a pipeline. apple, spotify, wiki, renderer, and images may be
// nil; the corresponding step is skipped.
func New(cfg *config.Config, st *store.Store, catalog Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		catalog: catalog,
		logger:  logging.WithComponent(logger, "pipeline"),
		delay:   time.Duration(cfg.Discogs.DelaySeconds * float64(time.Second)),
	}
}

// WithAppleMusic attaches the Apple Music source.
func (p *Pipeline) WithAppleMusic(source AppleMusicSource) *Pipeline {
	p.apple = source
	return p
}

// WithSpotify attaches the Spotify source.
func (p *Pipeline) WithSpotify(source SpotifySource) *Pipeline {
	p.spotify = source
	return p
}

// WithWikipedia attaches the Wikipedia source.
func (p *Pipeline) WithWikipedia(source WikipediaSource) *Pipeline {
	p.wiki = source
	return p
}

// WithRenderer attaches the content renderer.
func (p *Pipeline) WithRenderer(renderer Renderer) *Pipeline {
	p.renderer = renderer
	return p
}

// WithImages attaches the image fetcher.
func (p *Pipeline) WithImages(fetcher ImageFetcher) *Pipeline {
	p.images = fetcher
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
