package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MarkDone records a release as fully processed. Callers must commit the
// canonical release first: the progress marker always trails the data write.
func (s *Store) MarkDone(ctx context.Context, releaseID, artistID int64, runID string) error {
	if releaseID == 0 {
		return errors.New("release id must not be zero")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO progress (release_id, artist_id, run_id, completed_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(release_id) DO UPDATE SET
             artist_id = excluded.artist_id,
             run_id = excluded.run_id,
             completed_at = excluded.completed_at`,
		releaseID, artistID, runID, timestamp(),
	)
}

// IsDone reports whether a release completed in a previous run.
func (s *Store) IsDone(ctx context.Context, releaseID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM progress WHERE release_id = ?`, releaseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is done: %w", err)
	}
	return true, nil
}

// ClearProgress removes all completion markers, forcing full reprocessing.
func (s *Store) ClearProgress(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM progress`)
	if err != nil {
		return 0, fmt.Errorf("clear progress: %w", err)
	}
	return res.RowsAffected()
}

// ClearProgressForRelease removes the completion marker for one release.
func (s *Store) ClearProgressForRelease(ctx context.Context, releaseID int64) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE release_id = ?`, releaseID)
	if err != nil {
		return 0, fmt.Errorf("clear release progress: %w", err)
	}
	return res.RowsAffected()
}

// ClearProgressForArtist removes completion markers for every release by an artist.
func (s *Store) ClearProgressForArtist(ctx context.Context, artistID int64) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE artist_id = ?`, artistID)
	if err != nil {
		return 0, fmt.Errorf("clear artist progress: %w", err)
	}
	return res.RowsAffected()
}

// Stats summarizes cache contents for status output.
type Stats struct {
	Releases  int
	Artists   int
	Skipped   int
	Completed int
}

// Stats counts rows in each logical table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM releases`, &stats.Releases},
		{`SELECT COUNT(1) FROM artists`, &stats.Artists},
		{`SELECT COUNT(1) FROM skip_releases`, &stats.Skipped},
		{`SELECT COUNT(1) FROM progress`, &stats.Completed},
	}
	for _, count := range counts {
		if err := s.db.QueryRowContext(ctx, count.query).Scan(count.dest); err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
	}
	return stats, nil
}
