package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SkipEntry is a release the user has excluded from enrichment.
type SkipEntry struct {
	ReleaseID int64
	AddedAt   time.Time
}

// AddSkip records a release as excluded from enrichment.
func (s *Store) AddSkip(ctx context.Context, releaseID int64) error {
	if releaseID == 0 {
		return errors.New("release id must not be zero")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO skip_releases (release_id, added_at) VALUES (?, ?)
         ON CONFLICT(release_id) DO NOTHING`,
		releaseID, timestamp(),
	)
}

// RemoveSkip clears a release from the skip list.
func (s *Store) RemoveSkip(ctx context.Context, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM skip_releases WHERE release_id = ?`, releaseID)
	if err != nil {
		return false, fmt.Errorf("remove skip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsSkipped reports whether a release is on the skip list.
func (s *Store) IsSkipped(ctx context.Context, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM skip_releases WHERE release_id = ?`, releaseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is skipped: %w", err)
	}
	return true, nil
}

// ListSkips returns the skip list ordered by release identifier.
func (s *Store) ListSkips(ctx context.Context) ([]SkipEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT release_id, added_at FROM skip_releases ORDER BY release_id`)
	if err != nil {
		return nil, fmt.Errorf("list skips: %w", err)
	}
	defer rows.Close()

	var entries []SkipEntry
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		entry := SkipEntry{ReleaseID: id}
		if added, err := parseTimeString(raw); err == nil {
			entry.AddedAt = added
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
