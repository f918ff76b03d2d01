package record

import "time"

// Format describes one physical or digital format of a release.
type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty,omitempty"`
	Text         string   `json:"text,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// Track is a single tracklist entry in release order.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// Video is a linked video; the first entry on a release is treated as primary.
type Video struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AppleMusicAlbum is the album-level fragment from the Apple Music catalog.
type AppleMusicAlbum struct {
	ID                 string `json:"id"`
	URL                string `json:"url,omitempty"`
	EditorialNote      string `json:"editorial_note,omitempty"`
	ArtworkURLTemplate string `json:"artwork_url_template,omitempty"`
}

// AppleMusicArtist is the artist-level fragment from the Apple Music catalog.
type AppleMusicArtist struct {
	ID                 string   `json:"id"`
	URL                string   `json:"url,omitempty"`
	Genres             []string `json:"genres,omitempty"`
	EditorialNote      string   `json:"editorial_note,omitempty"`
	ArtworkURLTemplate string   `json:"artwork_url_template,omitempty"`
}

// SpotifyAlbum is the album identifier fragment from Spotify.
type SpotifyAlbum struct {
	ID string `json:"id"`
}

// WikipediaSummary is the artist summary fragment from Wikipedia.
type WikipediaSummary struct {
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// Enrichment groups the optional per-release fragments plus the fields the
// reconciler derives from them. A release with a zero Enrichment is still
// valid and renderable.
type Enrichment struct {
	AppleMusic *AppleMusicAlbum  `json:"apple_music,omitempty"`
	Spotify    *SpotifyAlbum     `json:"spotify,omitempty"`
	Wikipedia  *WikipediaSummary `json:"wikipedia,omitempty"`

	// Derived by the reconciler.
	Summary          string `json:"summary,omitempty"`
	SummarySource    string `json:"summary_source,omitempty"`
	SecondarySummary string `json:"secondary_summary,omitempty"`
	ArtworkURL       string `json:"artwork_url,omitempty"`
	StreamingURL     string `json:"streaming_url,omitempty"`
}

// Release is the canonical record for one release in the collection.
// Identity, dates, label, formats, and tracklist come from the cataloging
// source and are never overridden by enrichment.
type Release struct {
	ReleaseID     int64     `json:"release_id"`
	InstanceID    int64     `json:"instance_id,omitempty"`
	ArtistID      int64     `json:"artist_id"`
	ArtistName    string    `json:"artist_name"`
	AlbumTitle    string    `json:"album_title"`
	Slug          string    `json:"slug"`
	DateAdded     time.Time `json:"date_added"`
	ReleaseYear   int       `json:"release_year,omitempty"`
	ReleaseURL    string    `json:"release_url,omitempty"`
	Label         string    `json:"label,omitempty"`
	CatalogNumber string    `json:"catalog_number,omitempty"`
	Country       string    `json:"country,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	Styles        []string  `json:"styles,omitempty"`
	Formats       []Format  `json:"formats,omitempty"`
	TrackList     []Track   `json:"track_list,omitempty"`
	Videos        []Video   `json:"videos,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Credits       []string  `json:"credits,omitempty"`

	CoverImageURL  string   `json:"cover_image_url,omitempty"`
	CoverImagePath string   `json:"cover_image_path,omitempty"`
	ExtraImageURLs []string `json:"extra_image_urls,omitempty"`

	Enrichment Enrichment `json:"enrichment"`
}

// ArtistEnrichment groups the optional per-artist fragments.
type ArtistEnrichment struct {
	AppleMusic *AppleMusicArtist `json:"apple_music,omitempty"`
	Wikipedia  *WikipediaSummary `json:"wikipedia,omitempty"`
}

// Artist is the canonical record for one artist, created the first time any
// release by the artist is processed and updated on later runs.
type Artist struct {
	ArtistID  int64    `json:"artist_id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Profile   string   `json:"profile,omitempty"`
	URL       string   `json:"url,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Members   []string `json:"members,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`

	Enrichment ArtistEnrichment `json:"enrichment"`
}

// PrimaryVideo returns the first video, if any.
func (r *Release) PrimaryVideo() *Video {
	if len(r.Videos) == 0 {
		return nil
	}
	return &r.Videos[0]
}

// AdditionalVideos returns everything past the primary video.
func (r *Release) AdditionalVideos() []Video {
	if len(r.Videos) < 2 {
		return nil
	}
	return r.Videos[1:]
}
