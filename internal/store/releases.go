package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"crate/internal/record"
)

// GetRelease fetches a canonical release by identifier, or nil when absent.
func (s *Store) GetRelease(ctx context.Context, releaseID int64) (*record.Release, error) {
	ctx = ensureContext(ctx)
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM releases WHERE release_id = ?`, releaseID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get release: %w", err)
	}
	return decodeRelease(data)
}

// ReleaseExists reports whether a release is cached.
func (s *Store) ReleaseExists(ctx context.Context, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM releases WHERE release_id = ?`, releaseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("release exists: %w", err)
	}
	return true, nil
}

// UpsertRelease writes a release as a full-record replacement. This is the
// durability point for pipeline persistence and the editor's save path.
func (s *Store) UpsertRelease(ctx context.Context, release *record.Release) error {
	if release == nil {
		return errors.New("release is nil")
	}
	if release.ReleaseID == 0 {
		return errors.New("release id must not be zero")
	}
	if strings.TrimSpace(release.Slug) == "" {
		return errors.New("release slug must not be empty")
	}
	payload, err := json.Marshal(release)
	if err != nil {
		return fmt.Errorf("marshal release: %w", err)
	}
	return s.execWithRetry(ctx,
		`INSERT INTO releases (release_id, artist_id, slug, data, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(release_id) DO UPDATE SET
             artist_id = excluded.artist_id,
             slug = excluded.slug,
             data = excluded.data,
             updated_at = excluded.updated_at`,
		release.ReleaseID,
		release.ArtistID,
		release.Slug,
		string(payload),
		timestamp(),
	)
}

// MergeRelease overlays the non-empty fields of a partial release onto the
// cached record, creating it when absent. The editor uses this for partial
// edits; full replacements go through UpsertRelease.
func (s *Store) MergeRelease(ctx context.Context, partial *record.Release) error {
	if partial == nil {
		return errors.New("release is nil")
	}
	existing, err := s.GetRelease(ctx, partial.ReleaseID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.UpsertRelease(ctx, partial)
	}
	merged := overlayRelease(*existing, partial)
	return s.UpsertRelease(ctx, &merged)
}

// SlugInUse reports whether a slug is held by a release other than the one
// supplied. Used by the reconciler to disambiguate collisions.
func (s *Store) SlugInUse(ctx context.Context, slug string, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM releases WHERE slug = ? AND release_id != ?`, slug, releaseID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("slug in use: %w", err)
	}
	return true, nil
}

// DeleteRelease removes a release from the cache.
func (s *Store) DeleteRelease(ctx context.Context, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM releases WHERE release_id = ?`, releaseID)
	if err != nil {
		return false, fmt.Errorf("delete release: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReleaseFilter narrows and orders ListReleases output.
type ReleaseFilter struct {
	Query    string // case-insensitive substring on artist or title
	ArtistID int64
	SortKey  string // "artist", "title", "added" (default: release id)
}

// ListReleases returns cached releases matching the filter.
func (s *Store) ListReleases(ctx context.Context, filter ReleaseFilter) ([]*record.Release, error) {
	ctx = ensureContext(ctx)
	query := `SELECT data FROM releases`
	var args []any
	if filter.ArtistID != 0 {
		query += ` WHERE artist_id = ?`
		args = append(args, filter.ArtistID)
	}
	query += ` ORDER BY release_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	var releases []*record.Release
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		release, err := decodeRelease(data)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		filtered := releases[:0]
		for _, release := range releases {
			if strings.Contains(strings.ToLower(release.ArtistName), q) ||
				strings.Contains(strings.ToLower(release.AlbumTitle), q) {
				filtered = append(filtered, release)
			}
		}
		releases = filtered
	}

	switch filter.SortKey {
	case "artist":
		sort.SliceStable(releases, func(i, j int) bool {
			return strings.ToLower(releases[i].ArtistName) < strings.ToLower(releases[j].ArtistName)
		})
	case "title":
		sort.SliceStable(releases, func(i, j int) bool {
			return strings.ToLower(releases[i].AlbumTitle) < strings.ToLower(releases[j].AlbumTitle)
		})
	case "added":
		sort.SliceStable(releases, func(i, j int) bool {
			return releases[i].DateAdded.After(releases[j].DateAdded)
		})
	}
	return releases, nil
}

func decodeRelease(data string) (*record.Release, error) {
	var release record.Release
	if err := json.Unmarshal([]byte(data), &release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &release, nil
}

// overlayRelease applies the non-empty fields of partial on top of base.
// Fields absent from the partial record are retained, never nulled out.
func overlayRelease(base record.Release, partial *record.Release) record.Release {
	if partial.ArtistID != 0 {
		base.ArtistID = partial.ArtistID
	}
	if partial.InstanceID != 0 {
		base.InstanceID = partial.InstanceID
	}
	if partial.ArtistName != "" {
		base.ArtistName = partial.ArtistName
	}
	if partial.AlbumTitle != "" {
		base.AlbumTitle = partial.AlbumTitle
	}
	if partial.Slug != "" {
		base.Slug = partial.Slug
	}
	if !partial.DateAdded.IsZero() {
		base.DateAdded = partial.DateAdded
	}
	if partial.ReleaseYear != 0 {
		base.ReleaseYear = partial.ReleaseYear
	}
	if partial.ReleaseURL != "" {
		base.ReleaseURL = partial.ReleaseURL
	}
	if partial.Label != "" {
		base.Label = partial.Label
	}
	if partial.CatalogNumber != "" {
		base.CatalogNumber = partial.CatalogNumber
	}
	if partial.Country != "" {
		base.Country = partial.Country
	}
	if len(partial.Genres) > 0 {
		base.Genres = partial.Genres
	}
	if len(partial.Styles) > 0 {
		base.Styles = partial.Styles
	}
	if len(partial.Formats) > 0 {
		base.Formats = partial.Formats
	}
	if len(partial.TrackList) > 0 {
		base.TrackList = partial.TrackList
	}
	if len(partial.Videos) > 0 {
		base.Videos = partial.Videos
	}
	if partial.Notes != "" {
		base.Notes = partial.Notes
	}
	if len(partial.Credits) > 0 {
		base.Credits = partial.Credits
	}
	if partial.CoverImageURL != "" {
		base.CoverImageURL = partial.CoverImageURL
	}
	if partial.CoverImagePath != "" {
		base.CoverImagePath = partial.CoverImagePath
	}
	if len(partial.ExtraImageURLs) > 0 {
		base.ExtraImageURLs = partial.ExtraImageURLs
	}
	base.Enrichment = overlayEnrichment(base.Enrichment, partial.Enrichment)
	return base
}

func overlayEnrichment(base, partial record.Enrichment) record.Enrichment {
	if partial.AppleMusic != nil {
		base.AppleMusic = partial.AppleMusic
	}
	if partial.Spotify != nil {
		base.Spotify = partial.Spotify
	}
	if partial.Wikipedia != nil {
		base.Wikipedia = partial.Wikipedia
	}
	if partial.Summary != "" {
		base.Summary = partial.Summary
		base.SummarySource = partial.SummarySource
	}
	if partial.SecondarySummary != "" {
		base.SecondarySummary = partial.SecondarySummary
	}
	if partial.ArtworkURL != "" {
		base.ArtworkURL = partial.ArtworkURL
	}
	if partial.StreamingURL != "" {
		base.StreamingURL = partial.StreamingURL
	}
	return base
}
