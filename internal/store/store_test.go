package store_test

import (
	"context"
	"os"
	"testing"

	"crate/internal/record"
	"crate/internal/store"
	"crate/internal/testsupport"
)

func TestUpsertAndGetReleaseRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seeded := testsupport.SeedRelease(t, st, 101, 7, "Bruce Springsteen", "Born To Run")

	got, err := st.GetRelease(ctx, 101)
	if err != nil {
		t.Fatalf("GetRelease: %v", err)
	}
	if got == nil {
		t.Fatal("expected release, got nil")
	}
	if got.ArtistName != seeded.ArtistName || got.Slug != "bruce-springsteen-born-to-run" {
		t.Fatalf("unexpected release: %+v", got)
	}

	exists, err := st.ReleaseExists(ctx, 101)
	if err != nil || !exists {
		t.Fatalf("expected release to exist, err=%v", err)
	}
	missing, err := st.GetRelease(ctx, 999)
	if err != nil {
		t.Fatalf("GetRelease missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing release, got %+v", missing)
	}
}

func TestMergeReleaseRetainsExistingFields(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	full := testsupport.SeedRelease(t, st, 202, 7, "Nirvana", "Nevermind")
	full.Label = "DGC"
	full.Enrichment.Spotify = &record.SpotifyAlbum{ID: "spotify-id"}
	if err := st.UpsertRelease(ctx, full); err != nil {
		t.Fatalf("UpsertRelease: %v", err)
	}

	// Partial update: only a new editorial note. The label and the Spotify
	// fragment must survive the merge.
	partial := &record.Release{
		ReleaseID:  202,
		ArtistID:   7,
		ArtistName: "Nirvana",
		AlbumTitle: "Nevermind",
		Slug:       full.Slug,
	}
	partial.Enrichment.AppleMusic = &record.AppleMusicAlbum{ID: "am-1", EditorialNote: "a landmark"}
	if err := st.MergeRelease(ctx, partial); err != nil {
		t.Fatalf("MergeRelease: %v", err)
	}

	merged, err := st.GetRelease(ctx, 202)
	if err != nil {
		t.Fatalf("GetRelease: %v", err)
	}
	if merged.Label != "DGC" {
		t.Fatalf("merge dropped label: %+v", merged)
	}
	if merged.Enrichment.Spotify == nil || merged.Enrichment.Spotify.ID != "spotify-id" {
		t.Fatalf("merge dropped spotify fragment: %+v", merged.Enrichment)
	}
	if merged.Enrichment.AppleMusic == nil || merged.Enrichment.AppleMusic.EditorialNote != "a landmark" {
		t.Fatalf("merge missed apple fragment: %+v", merged.Enrichment)
	}
}

func TestSlugInUse(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedRelease(t, st, 301, 1, "Boards of Canada", "Geogaddi")

	inUse, err := st.SlugInUse(ctx, "boards-of-canada-geogaddi", 999)
	if err != nil {
		t.Fatalf("SlugInUse: %v", err)
	}
	if !inUse {
		t.Fatal("expected slug to be in use by another release")
	}

	inUse, err = st.SlugInUse(ctx, "boards-of-canada-geogaddi", 301)
	if err != nil {
		t.Fatalf("SlugInUse: %v", err)
	}
	if inUse {
		t.Fatal("slug should not conflict with its own release")
	}
}

func TestSkipListLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.AddSkip(ctx, 42); err != nil {
		t.Fatalf("AddSkip: %v", err)
	}
	// Adding twice is a no-op, not an error.
	if err := st.AddSkip(ctx, 42); err != nil {
		t.Fatalf("AddSkip twice: %v", err)
	}

	skipped, err := st.IsSkipped(ctx, 42)
	if err != nil || !skipped {
		t.Fatalf("expected release skipped, err=%v", err)
	}

	entries, err := st.ListSkips(ctx)
	if err != nil {
		t.Fatalf("ListSkips: %v", err)
	}
	if len(entries) != 1 || entries[0].ReleaseID != 42 {
		t.Fatalf("unexpected skip entries: %+v", entries)
	}

	removed, err := st.RemoveSkip(ctx, 42)
	if err != nil || !removed {
		t.Fatalf("RemoveSkip: removed=%v err=%v", removed, err)
	}
	skipped, err = st.IsSkipped(ctx, 42)
	if err != nil || skipped {
		t.Fatalf("expected release no longer skipped, err=%v", err)
	}
}

func TestProgressMarkersAndScopes(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.MarkDone(ctx, 1, 10, "run-a"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if err := st.MarkDone(ctx, 2, 10, "run-a"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if err := st.MarkDone(ctx, 3, 20, "run-a"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	done, err := st.IsDone(ctx, 1)
	if err != nil || !done {
		t.Fatalf("expected release 1 done, err=%v", err)
	}

	cleared, err := st.ClearProgressForArtist(ctx, 10)
	if err != nil {
		t.Fatalf("ClearProgressForArtist: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 markers cleared, got %d", cleared)
	}
	done, err = st.IsDone(ctx, 3)
	if err != nil || !done {
		t.Fatalf("artist scope should not touch other artists, err=%v", err)
	}

	if _, err := st.ClearProgressForRelease(ctx, 3); err != nil {
		t.Fatalf("ClearProgressForRelease: %v", err)
	}
	done, err = st.IsDone(ctx, 3)
	if err != nil || done {
		t.Fatalf("expected release 3 cleared, err=%v", err)
	}
}

func TestStatsCountsTables(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedRelease(t, st, 1, 1, "A", "One")
	testsupport.SeedRelease(t, st, 2, 1, "A", "Two")
	if err := st.AddSkip(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkDone(ctx, 1, 1, "run"); err != nil {
		t.Fatal(err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Releases != 2 || stats.Skipped != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestListReleasesFilterAndSort(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedRelease(t, st, 1, 1, "Zeppelin", "Houses of the Holy")
	testsupport.SeedRelease(t, st, 2, 2, "Aphex Twin", "Drukqs")
	testsupport.SeedRelease(t, st, 3, 2, "Aphex Twin", "Syro")

	all, err := st.ListReleases(ctx, store.ReleaseFilter{SortKey: "artist"})
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(all) != 3 || all[0].ArtistName != "Aphex Twin" {
		t.Fatalf("unexpected sort order: %+v", all)
	}

	filtered, err := st.ListReleases(ctx, store.ReleaseFilter{Query: "aphex"})
	if err != nil {
		t.Fatalf("ListReleases query: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(filtered))
	}

	byArtist, err := st.ListReleases(ctx, store.ReleaseFilter{ArtistID: 2})
	if err != nil {
		t.Fatalf("ListReleases artist: %v", err)
	}
	if len(byArtist) != 2 {
		t.Fatalf("expected 2 releases for artist, got %d", len(byArtist))
	}
}

func TestBackupProducesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRelease(t, st, 1, 1, "A", "One")

	path, err := st.Backup(ctx, cfg.Paths.BackupDir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty backup file")
	}
}

func TestArtistLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	artist := &record.Artist{
		ArtistID: 7,
		Name:     "Nirvana",
		Slug:     "nirvana",
		Profile:  "Band from Aberdeen.",
	}
	if err := st.UpsertArtist(ctx, artist); err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}

	got, err := st.GetArtist(ctx, 7)
	if err != nil || got == nil {
		t.Fatalf("GetArtist: %+v err=%v", got, err)
	}
	if got.Profile != artist.Profile {
		t.Fatalf("unexpected artist: %+v", got)
	}

	// Later runs enrich rather than recreate.
	got.Enrichment.Wikipedia = &record.WikipediaSummary{Summary: "long bio", URL: "https://en.wikipedia.org/wiki/Nirvana"}
	if err := st.UpsertArtist(ctx, got); err != nil {
		t.Fatalf("UpsertArtist update: %v", err)
	}
	updated, err := st.GetArtist(ctx, 7)
	if err != nil || updated.Enrichment.Wikipedia == nil {
		t.Fatalf("expected enrichment retained, err=%v", err)
	}

	found, err := st.FindArtistByName(ctx, "nirvana")
	if err != nil || found == nil || found.ArtistID != 7 {
		t.Fatalf("FindArtistByName: %+v err=%v", found, err)
	}
}
