package testsupport

import (
	"context"
	"testing"
	"time"

	"crate/internal/config"
	"crate/internal/record"
	"crate/internal/store"
)

// MustOpenStore opens a cache store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedRelease inserts a minimal canonical release for tests.
func SeedRelease(t testing.TB, st *store.Store, releaseID, artistID int64, artist, title string) *record.Release {
	t.Helper()

	release := &record.Release{
		ReleaseID:  releaseID,
		ArtistID:   artistID,
		ArtistName: artist,
		AlbumTitle: title,
		Slug:       record.ReleaseSlug(artist, title),
		DateAdded:  time.Now().UTC(),
	}
	if err := st.UpsertRelease(context.Background(), release); err != nil {
		t.Fatalf("store.UpsertRelease: %v", err)
	}
	return release
}
