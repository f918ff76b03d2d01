package render_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"crate/internal/record"
	"crate/internal/render"
	"crate/internal/testsupport"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()

	renderer, err := render.New(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

func sampleRelease() *record.Release {
	release := &record.Release{
		ReleaseID:   4043626,
		ArtistID:    65013,
		ArtistName:  "Led Zeppelin (2)",
		AlbumTitle:  "Houses Of The Holy",
		Slug:        "led-zeppelin-houses-of-the-holy",
		DateAdded:   time.Date(2023, 1, 15, 18, 4, 30, 0, time.UTC),
		ReleaseYear: 1973,
		ReleaseURL:  "https://www.discogs.com/release/4043626",
		Label:       "Atlantic",
		Genres:      []string{"Rock"},
		Styles:      []string{"Hard Rock"},
		Formats:     []record.Format{{Name: "Vinyl", Qty: "1", Descriptions: []string{"LP", "Album"}}},
		TrackList: []record.Track{
			{Position: "A1", Title: "The Song Remains The Same", Duration: "5:30"},
			{Position: "A2", Title: "The Rain Song"},
		},
		Videos: []record.Video{
			{Title: "The Ocean", URL: "https://www.youtube.com/watch?v=fullvideo1"},
			{Title: "Dancing Days", URL: "https://youtu.be/extra2"},
		},
	}
	release.Enrichment.Summary = "A classic record."
	release.Enrichment.SummarySource = "wikipedia"
	release.Enrichment.Spotify = &record.SpotifyAlbum{ID: "spid"}
	release.Enrichment.StreamingURL = "https://music.apple.com/gb/album/1"
	return release
}

func TestRenderReleaseFrontMatterAndBody(t *testing.T) {
	renderer := newRenderer(t)

	path, err := renderer.RenderRelease(sampleRelease())
	if err != nil {
		t.Fatalf("RenderRelease: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		`title: "Led Zeppelin - Houses Of The Holy"`,
		`artist: "Led Zeppelin"`,
		"date: 2023-01-15T18:04:30Z",
		`release_id: "4043626"`,
		`cover: "led-zeppelin-houses-of-the-holy.jpg"`,
		`genres: ["Rock"]`,
		`release_formats: "Vinyl LP Album"`,
		`spotify_id: "spid"`,
		"1. The Song Remains The Same (5:30)",
		"2. The Rain Song",
		`{{< youtube id="fullvideo1" title="The Ocean" >}}`,
		"[Dancing Days](https://youtu.be/extra2)",
		"[Listen on streaming](https://music.apple.com/gb/album/1)",
		"A classic record.",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("output missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "(2)") {
		t.Fatalf("disambiguator leaked into output:\n%s", content)
	}
}

func TestRenderReleaseOmitsAbsentSections(t *testing.T) {
	renderer := newRenderer(t)

	release := &record.Release{
		ReleaseID:  1,
		ArtistName: "Minimal",
		AlbumTitle: "Bare",
		Slug:       "minimal-bare",
	}
	path, err := renderer.RenderRelease(release)
	if err != nil {
		t.Fatalf("RenderRelease: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, forbidden := range []string{"## Listen", "## Videos", "## Tracklist", "spotify_id", "label:"} {
		if strings.Contains(content, forbidden) {
			t.Fatalf("absent data must not render %q:\n%s", forbidden, content)
		}
	}
}

func TestRenderArtistPrefersWikipediaSummary(t *testing.T) {
	renderer := newRenderer(t)

	artist := &record.Artist{
		ArtistID: 65013,
		Name:     "Led Zeppelin (2)",
		Slug:     "led-zeppelin",
		Profile:  "[b]English[/b] rock band.",
		Members:  []string{"Jimmy Page", "Robert Plant"},
	}
	artist.Enrichment.Wikipedia = &record.WikipediaSummary{
		Summary: "Led Zeppelin were an English rock band.",
		URL:     "https://en.wikipedia.org/wiki/Led_Zeppelin",
	}

	path, err := renderer.RenderArtist(artist)
	if err != nil {
		t.Fatalf("RenderArtist: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, `title: "Led Zeppelin"`) {
		t.Fatalf("unexpected front matter:\n%s", content)
	}
	if !strings.Contains(content, "Led Zeppelin were an English rock band.") {
		t.Fatalf("wikipedia summary missing:\n%s", content)
	}
	if !strings.Contains(content, `members: ["Jimmy Page", "Robert Plant"]`) {
		t.Fatalf("members missing:\n%s", content)
	}
	if !strings.HasSuffix(path, "_index.md") {
		t.Fatalf("artist pages are section indexes, got %s", path)
	}
}

func TestRenderArtistFallsBackToProfile(t *testing.T) {
	renderer := newRenderer(t)

	artist := &record.Artist{
		ArtistID: 1,
		Name:     "Obscure Act",
		Slug:     "obscure-act",
		Profile:  "[b]Obscure[/b] act from nowhere.",
	}
	path, err := renderer.RenderArtist(artist)
	if err != nil {
		t.Fatalf("RenderArtist: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "**Obscure** act from nowhere.") {
		t.Fatalf("tidied profile missing:\n%s", data)
	}
}

func TestFormatFormats(t *testing.T) {
	formats := []record.Format{
		{Name: "Vinyl", Qty: "2", Text: "Gatefold", Descriptions: []string{"LP", "Album"}},
		{Name: "CD"},
	}
	got := render.FormatFormats(formats)
	want := "Vinyl 2× LP Album (Gatefold), CD"
	if got != want {
		t.Fatalf("FormatFormats = %q, want %q", got, want)
	}
}
