package render

import (
	"fmt"
	"strings"
	"time"

	"crate/internal/record"
)

// releaseView is the flattened shape the release template consumes. All
// text has quotes escaped and catalog markup tidied; empty fields mean
// "omit the section".
type releaseView struct {
	Title            string
	Artist           string
	Album            string
	DateAdded        string
	ReleaseID        int64
	Slug             string
	CoverFilename    string
	Genres           []string
	Styles           []string
	Tracklist        string
	FirstVideoID     string
	FirstVideoTitle  string
	AdditionalVideos []videoView
	ReleaseYear      int
	ReleaseURL       string
	Label            string
	Formats          string
	CatalogNumber    string
	Notes            string
	Summary          string
	SecondarySummary string
	SpotifyID        string
	AppleMusicURL    string
	StreamingURL     string
}

type videoView struct {
	Title string
	ID    string
	URL   string
}

func newReleaseView(release *record.Release) releaseView {
	artist := record.EscapeQuotes(record.CleanName(release.ArtistName))
	album := record.EscapeQuotes(release.AlbumTitle)

	view := releaseView{
		Title:         fmt.Sprintf("%s - %s", artist, album),
		Artist:        artist,
		Album:         album,
		ReleaseID:     release.ReleaseID,
		Slug:          release.Slug,
		CoverFilename: release.Slug + ".jpg",
		Genres:        release.Genres,
		Styles:        release.Styles,
		Tracklist:     FormatTracklist(release.TrackList),
		ReleaseYear:   release.ReleaseYear,
		ReleaseURL:    release.ReleaseURL,
		Label:         record.EscapeQuotes(release.Label),
		Formats:       FormatFormats(release.Formats),
		CatalogNumber: record.EscapeQuotes(release.CatalogNumber),
		Notes:         record.TidyText(record.FlattenNotes(release.Notes)),
		Summary:       record.EscapeQuotes(release.Enrichment.Summary),
		StreamingURL:  release.Enrichment.StreamingURL,
	}
	if !release.DateAdded.IsZero() {
		view.DateAdded = release.DateAdded.UTC().Format(time.RFC3339)
	}
	if release.Enrichment.SecondarySummary != "" {
		view.SecondarySummary = record.EscapeQuotes(release.Enrichment.SecondarySummary)
	}
	if release.Enrichment.Spotify != nil {
		view.SpotifyID = release.Enrichment.Spotify.ID
	}
	if release.Enrichment.AppleMusic != nil {
		view.AppleMusicURL = release.Enrichment.AppleMusic.URL
	}

	if primary := release.PrimaryVideo(); primary != nil {
		view.FirstVideoID = record.YouTubeID(primary.URL)
		view.FirstVideoTitle = record.EscapeQuotes(primary.Title)
	}
	for _, video := range release.AdditionalVideos() {
		view.AdditionalVideos = append(view.AdditionalVideos, videoView{
			Title: record.EscapeQuotes(video.Title),
			ID:    record.YouTubeID(video.URL),
			URL:   video.URL,
		})
	}
	return view
}

// artistView is the flattened shape the artist template consumes.
type artistView struct {
	Name          string
	Slug          string
	Profile       string
	Summary       string
	SummaryURL    string
	Aliases       []string
	Members       []string
	ImageFilename string
	AppleMusicURL string
	Genres        []string
}

func newArtistView(artist *record.Artist) artistView {
	view := artistView{
		Name:          record.EscapeQuotes(record.CleanName(artist.Name)),
		Slug:          artist.Slug,
		Profile:       record.TidyText(artist.Profile),
		ImageFilename: artist.Slug + ".jpg",
	}
	for _, alias := range artist.Aliases {
		view.Aliases = append(view.Aliases, record.EscapeQuotes(record.CleanName(alias)))
	}
	for _, member := range artist.Members {
		view.Members = append(view.Members, record.EscapeQuotes(record.CleanName(member)))
	}
	if artist.Enrichment.Wikipedia != nil {
		view.Summary = record.EscapeQuotes(artist.Enrichment.Wikipedia.Summary)
		view.SummaryURL = artist.Enrichment.Wikipedia.URL
	}
	if artist.Enrichment.AppleMusic != nil {
		view.AppleMusicURL = artist.Enrichment.AppleMusic.URL
		view.Genres = artist.Enrichment.AppleMusic.Genres
	}
	return view
}

// FormatTracklist renders one numbered line per track, duration appended
// when known.
func FormatTracklist(tracks []record.Track) string {
	if len(tracks) == 0 {
		return ""
	}
	lines := make([]string, 0, len(tracks))
	for index, track := range tracks {
		if track.Duration != "" {
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", index+1, track.Title, track.Duration))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s", index+1, track.Title))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatFormats renders the release formats as a comma-separated list,
// e.g. "Vinyl 2× LP Album (Gatefold), CD".
func FormatFormats(formats []record.Format) string {
	if len(formats) == 0 {
		return ""
	}
	parts := make([]string, 0, len(formats))
	for _, format := range formats {
		details := []string{format.Name}
		if format.Qty != "" && format.Qty != "1" {
			details = append(details, format.Qty+"×")
		}
		details = append(details, format.Descriptions...)
		if format.Text != "" {
			details = append(details, "("+format.Text+")")
		}
		parts = append(parts, strings.Join(details, " "))
	}
	return strings.Join(parts, ", ")
}
