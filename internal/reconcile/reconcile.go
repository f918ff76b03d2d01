// Package reconcile merges a catalog release with enrichment fragments
// into one canonical record. It is pure: callers gather the inputs, the
// reconciler applies deterministic preference rules and never touches the
// network or the store.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"crate/internal/record"
)

// DefaultMissingArtworkURL is used when neither enrichment nor the
// catalog offers a cover image.
const DefaultMissingArtworkURL = "https://github.com/russmckendrick/records/raw/b00f1d9fc0a67b391bde0b0fa93284c8e64d3dfe/assets/images/missing.jpg"

const defaultArtworkSize = 2000

// Summary source labels recorded alongside the chosen text.
const (
	SummarySourceAppleMusic = "apple_music"
	SummarySourceWikipedia  = "wikipedia"
)

// Fragments holds the per-release enrichment results. A nil field means
// the source had nothing this run; the previous record's fragment, if
// any, is retained in that case.
type Fragments struct {
	AppleMusic *record.AppleMusicAlbum
	Spotify    *record.SpotifyAlbum
	Wikipedia  *record.WikipediaSummary
}

// Options tune the derived fields.
type Options struct {
	// ArtworkSize replaces the {w}x{h} placeholder in templated artwork URLs.
	ArtworkSize int
	// MissingArtworkURL is the last-resort cover image.
	MissingArtworkURL string
}

func (o Options) withDefaults() Options {
	if o.ArtworkSize <= 0 {
		o.ArtworkSize = defaultArtworkSize
	}
	if o.MissingArtworkURL == "" {
		o.MissingArtworkURL = DefaultMissingArtworkURL
	}
	return o
}

// Release builds the canonical record. Catalog fields from base are
// authoritative; fragments fill the enrichment; previous supplies anything
// the current run could not fetch again.
func Release(base *record.Release, fragments Fragments, previous *record.Release, opts Options) *record.Release {
	opts = opts.withDefaults()

	result := *base
	if previous != nil {
		// Start enrichment from what we already knew.
		result.Enrichment = previous.Enrichment
		if result.Slug == "" {
			result.Slug = previous.Slug
		}
		if result.InstanceID == 0 {
			result.InstanceID = previous.InstanceID
		}
		if result.DateAdded.IsZero() {
			result.DateAdded = previous.DateAdded
		}
		if result.CoverImagePath == "" {
			result.CoverImagePath = previous.CoverImagePath
		}
	}

	if fragments.AppleMusic != nil {
		result.Enrichment.AppleMusic = fragments.AppleMusic
	}
	if fragments.Spotify != nil {
		result.Enrichment.Spotify = fragments.Spotify
	}
	if fragments.Wikipedia != nil {
		result.Enrichment.Wikipedia = fragments.Wikipedia
	}

	deriveSummary(&result.Enrichment)
	result.Enrichment.ArtworkURL = artworkURL(&result, opts)
	result.Enrichment.StreamingURL = streamingURL(&result.Enrichment)

	return &result
}

// Artist merges enrichment into an artist record the same way. base comes
// from the catalog; previous retention mirrors Release.
func Artist(base *record.Artist, apple *record.AppleMusicArtist, wiki *record.WikipediaSummary, previous *record.Artist) *record.Artist {
	result := *base
	if previous != nil {
		result.Enrichment = previous.Enrichment
		if result.Slug == "" {
			result.Slug = previous.Slug
		}
		if result.ImagePath == "" {
			result.ImagePath = previous.ImagePath
		}
		if result.Profile == "" {
			result.Profile = previous.Profile
		}
	}
	if apple != nil {
		result.Enrichment.AppleMusic = apple
	}
	if wiki != nil {
		result.Enrichment.Wikipedia = wiki
	}
	return &result
}

// deriveSummary picks the longer of the editorial note and the Wikipedia
// summary as the displayed text. Length, not quality: on a tie Wikipedia
// wins so the outcome stays deterministic.
func deriveSummary(enrichment *record.Enrichment) {
	var editorial, wiki string
	if enrichment.AppleMusic != nil {
		editorial = strings.TrimSpace(enrichment.AppleMusic.EditorialNote)
	}
	if enrichment.Wikipedia != nil {
		wiki = strings.TrimSpace(enrichment.Wikipedia.Summary)
	}

	switch {
	case editorial == "" && wiki == "":
		enrichment.Summary = ""
		enrichment.SummarySource = ""
		enrichment.SecondarySummary = ""
	case wiki == "":
		enrichment.Summary = editorial
		enrichment.SummarySource = SummarySourceAppleMusic
		enrichment.SecondarySummary = ""
	case editorial == "":
		enrichment.Summary = wiki
		enrichment.SummarySource = SummarySourceWikipedia
		enrichment.SecondarySummary = ""
	case len(editorial) > len(wiki):
		enrichment.Summary = editorial
		enrichment.SummarySource = SummarySourceAppleMusic
		enrichment.SecondarySummary = wiki
	default:
		enrichment.Summary = wiki
		enrichment.SummarySource = SummarySourceWikipedia
		enrichment.SecondarySummary = editorial
	}
}

func artworkURL(release *record.Release, opts Options) string {
	if release.Enrichment.AppleMusic != nil {
		if templated := ExpandArtworkTemplate(release.Enrichment.AppleMusic.ArtworkURLTemplate, opts.ArtworkSize); templated != "" {
			return templated
		}
	}
	if release.CoverImageURL != "" {
		return release.CoverImageURL
	}
	return opts.MissingArtworkURL
}

// ExpandArtworkTemplate substitutes the {w}x{h} placeholder with a square
// target dimension. An empty template yields an empty URL.
func ExpandArtworkTemplate(template string, size int) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return ""
	}
	if size <= 0 {
		size = defaultArtworkSize
	}
	dimension := fmt.Sprint(size)
	template = strings.ReplaceAll(template, "{w}", dimension)
	template = strings.ReplaceAll(template, "{h}", dimension)
	return template
}

func streamingURL(enrichment *record.Enrichment) string {
	if enrichment.AppleMusic != nil && enrichment.AppleMusic.URL != "" {
		return enrichment.AppleMusic.URL
	}
	if enrichment.Spotify != nil && enrichment.Spotify.ID != "" {
		return "https://open.spotify.com/album/" + enrichment.Spotify.ID
	}
	return ""
}

// SlugChecker reports whether a slug already names a different release.
type SlugChecker interface {
	SlugInUse(ctx context.Context, slug string, excludeReleaseID int64) (bool, error)
}

// UniqueSlug derives the artist-title slug and appends a numeric suffix
// until it no longer collides with another release.
func UniqueSlug(ctx context.Context, checker SlugChecker, artist, title string, releaseID int64) (string, error) {
	base := record.ReleaseSlug(artist, title)
	if base == "" {
		base = fmt.Sprintf("release-%d", releaseID)
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		inUse, err := checker.SlugInUse(ctx, candidate, releaseID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
