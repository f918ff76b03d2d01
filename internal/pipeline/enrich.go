package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"crate/internal/logging"
	"crate/internal/reconcile"
	"crate/internal/record"
	"crate/internal/sources"
)

// enrichRelease queries the album-level sources. Misses and exhausted
// retries leave the fragment nil; fatal failures propagate and halt the
// run.
func (r *runState) enrichRelease(ctx context.Context, logger *slog.Logger, base *record.Release) (reconcile.Fragments, error) {
	var fragments reconcile.Fragments
	p := r.pipeline

	// Compilation artists produce junk matches on album search.
	variousArtist := strings.Contains(strings.ToLower(base.ArtistName), "various")

	if p.apple != nil && !variousArtist {
		album, err := p.apple.SearchAlbum(ctx, base.ArtistName, base.AlbumTitle)
		switch {
		case err == nil:
			fragments.AppleMusic = album
		case isHalting(err):
			return fragments, fmt.Errorf("apple music album search: %w", err)
		default:
			r.recordMiss(logger, "apple music", err)
		}
	}

	if p.spotify != nil && !variousArtist {
		album, err := p.spotify.SearchAlbum(ctx, base.ArtistName, base.AlbumTitle)
		switch {
		case err == nil:
			fragments.Spotify = album
		case isHalting(err):
			return fragments, fmt.Errorf("spotify album search: %w", err)
		default:
			r.recordMiss(logger, "spotify", err)
		}
	}

	return fragments, nil
}

// ensureArtist fetches, enriches, persists, and renders the artist behind
// a release once per run. Later releases by the same artist reuse the
// stored record.
func (r *runState) ensureArtist(ctx context.Context, artistID int64, artistName string) (*record.Artist, error) {
	p := r.pipeline
	if artistID == 0 {
		return nil, nil
	}
	if r.artistsDone[artistID] {
		artist, err := p.store.GetArtist(ctx, artistID)
		if err != nil {
			return nil, fmt.Errorf("load artist %d: %w", artistID, err)
		}
		return artist, nil
	}

	logger := r.logger.With(
		logging.Int64("artist_id", artistID),
		logging.String(logging.FieldArtist, artistName))
	logger.Info("processing artist")

	base, err := p.catalog.GetArtist(ctx, artistID)
	switch {
	case err == nil:
	case sources.IsMiss(err):
		logger.Warn("artist missing from catalog", logging.Error(err))
		base = &record.Artist{
			ArtistID: artistID,
			Name:     artistName,
			Slug:     record.Slugify(record.CleanName(artistName)),
		}
	default:
		return nil, fmt.Errorf("fetch artist %d: %w", artistID, err)
	}

	var appleFragment *record.AppleMusicArtist
	if p.apple != nil {
		fragment, err := p.apple.SearchArtist(ctx, base.Name)
		switch {
		case err == nil:
			appleFragment = fragment
		case isHalting(err):
			return nil, fmt.Errorf("apple music artist search: %w", err)
		default:
			r.recordMiss(logger, "apple music artist", err)
		}
	}

	var wikiFragment *record.WikipediaSummary
	if p.wiki != nil {
		fragment, err := p.wiki.Summary(ctx, base.Name)
		switch {
		case err == nil:
			wikiFragment = fragment
		case isHalting(err):
			return nil, fmt.Errorf("wikipedia summary: %w", err)
		default:
			r.recordMiss(logger, "wikipedia", err)
		}
	}

	previous, err := p.store.GetArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load previous artist: %w", err)
	}
	artist := reconcile.Artist(base, appleFragment, wikiFragment, previous)

	if !r.scope.DryRun {
		if err := p.store.UpsertArtist(ctx, artist); err != nil {
			return nil, fmt.Errorf("persist artist %d: %w", artistID, err)
		}
		r.renderArtist(ctx, logger, artist)
	}

	r.artistsDone[artistID] = true
	r.summary.ArtistsUpdated++
	return artist, nil
}

func (r *runState) renderArtist(ctx context.Context, logger *slog.Logger, artist *record.Artist) {
	p := r.pipeline
	if p.renderer == nil {
		return
	}

	if p.images != nil {
		imageURL := ""
		if artist.Enrichment.AppleMusic != nil {
			imageURL = reconcile.ExpandArtworkTemplate(artist.Enrichment.AppleMusic.ArtworkURLTemplate, p.cfg.AppleMusic.ArtworkSize)
		}
		if imageURL == "" && len(artist.ImageURLs) > 0 {
			imageURL = artist.ImageURLs[0]
		}
		if imageURL == "" {
			imageURL = reconcile.DefaultMissingArtworkURL
		}
		imagePath := p.renderer.ArtistImagePath(artist)
		if err := p.images.Download(ctx, imageURL, imagePath); err != nil {
			logger.Error("artist image download failed", logging.Error(err))
		} else {
			artist.ImagePath = imagePath
		}
	}
	if _, err := p.renderer.RenderArtist(artist); err != nil {
		logger.Error("artist render failed", logging.Error(err))
	}
}

func (r *runState) recordMiss(logger *slog.Logger, source string, err error) {
	r.summary.MissedFragments++
	logger.Info("enrichment fragment absent",
		logging.String(logging.FieldSource, source),
		logging.Error(err))
}

// isHalting reports whether a source error must stop the run instead of
// degrading to an absent fragment.
func isHalting(err error) bool {
	if err == nil {
		return false
	}
	if sources.IsFatal(err) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
