package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"crate/internal/record"
)

// GetArtist fetches an artist record by identifier, or nil when absent.
func (s *Store) GetArtist(ctx context.Context, artistID int64) (*record.Artist, error) {
	ctx = ensureContext(ctx)
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM artists WHERE artist_id = ?`, artistID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	var artist record.Artist
	if err := json.Unmarshal([]byte(data), &artist); err != nil {
		return nil, fmt.Errorf("decode artist: %w", err)
	}
	return &artist, nil
}

// ArtistExists reports whether an artist is cached.
func (s *Store) ArtistExists(ctx context.Context, artistID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE artist_id = ?`, artistID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("artist exists: %w", err)
	}
	return true, nil
}

// UpsertArtist writes an artist record, replacing any previous version.
// Artists are never deleted automatically; later runs only enrich them.
func (s *Store) UpsertArtist(ctx context.Context, artist *record.Artist) error {
	if artist == nil {
		return errors.New("artist is nil")
	}
	if artist.ArtistID == 0 {
		return errors.New("artist id must not be zero")
	}
	if strings.TrimSpace(artist.Slug) == "" {
		return errors.New("artist slug must not be empty")
	}
	payload, err := json.Marshal(artist)
	if err != nil {
		return fmt.Errorf("marshal artist: %w", err)
	}
	return s.execWithRetry(ctx,
		`INSERT INTO artists (artist_id, slug, data, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(artist_id) DO UPDATE SET
             slug = excluded.slug,
             data = excluded.data,
             updated_at = excluded.updated_at`,
		artist.ArtistID,
		artist.Slug,
		string(payload),
		timestamp(),
	)
}

// ListArtists returns all cached artists ordered by identifier.
func (s *Store) ListArtists(ctx context.Context) ([]*record.Artist, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM artists ORDER BY artist_id`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []*record.Artist
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var artist record.Artist
		if err := json.Unmarshal([]byte(data), &artist); err != nil {
			return nil, fmt.Errorf("decode artist: %w", err)
		}
		artists = append(artists, &artist)
	}
	return artists, rows.Err()
}

// FindArtistByName returns the first artist whose name matches, ignoring case.
func (s *Store) FindArtistByName(ctx context.Context, name string) (*record.Artist, error) {
	artists, err := s.ListArtists(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, artist := range artists {
		if strings.ToLower(artist.Name) == needle {
			return artist, nil
		}
	}
	return nil, nil
}
