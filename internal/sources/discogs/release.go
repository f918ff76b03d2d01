package discogs

import (
	"context"
	"strings"

	"crate/internal/record"
)

type releaseResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Country string `json:"country"`
	URI     string `json:"uri"`
	Notes   string `json:"notes"`
	Artists []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Labels []struct {
		Name  string `json:"name"`
		CatNo string `json:"catno"`
	} `json:"labels"`
	Genres  []string `json:"genres"`
	Styles  []string `json:"styles"`
	Formats []struct {
		Name         string   `json:"name"`
		Qty          string   `json:"qty"`
		Text         string   `json:"text"`
		Descriptions []string `json:"descriptions"`
	} `json:"formats"`
	Tracklist []struct {
		Position string `json:"position"`
		Title    string `json:"title"`
		Duration string `json:"duration"`
	} `json:"tracklist"`
	Videos []struct {
		Title string `json:"title"`
		URI   string `json:"uri"`
	} `json:"videos"`
	Images []struct {
		Type        string `json:"type"`
		ResourceURL string `json:"resource_url"`
	} `json:"images"`
	ExtraArtists []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"extraartists"`
}

// GetRelease fetches the full release details and maps them onto the
// canonical record. Identity fields from the collection listing (instance
// id, date added, slug) are the caller's to fill.
func (c *Client) GetRelease(ctx context.Context, releaseID int64) (*record.Release, error) {
	var decoded releaseResponse
	if err := c.getJSON(ctx, "get release", c.endpoint("/releases/%d", releaseID), &decoded); err != nil {
		return nil, err
	}

	release := &record.Release{
		ReleaseID:   decoded.ID,
		AlbumTitle:  decoded.Title,
		ReleaseYear: decoded.Year,
		Country:     decoded.Country,
		ReleaseURL:  decoded.URI,
		Notes:       decoded.Notes,
		Genres:      decoded.Genres,
		Styles:      decoded.Styles,
	}
	if len(decoded.Artists) > 0 {
		release.ArtistID = decoded.Artists[0].ID
		release.ArtistName = decoded.Artists[0].Name
	}
	if len(decoded.Labels) > 0 {
		release.Label = decoded.Labels[0].Name
		release.CatalogNumber = decoded.Labels[0].CatNo
	}
	for _, format := range decoded.Formats {
		release.Formats = append(release.Formats, record.Format{
			Name:         format.Name,
			Qty:          format.Qty,
			Text:         format.Text,
			Descriptions: format.Descriptions,
		})
	}
	for _, track := range decoded.Tracklist {
		release.TrackList = append(release.TrackList, record.Track{
			Position: track.Position,
			Title:    track.Title,
			Duration: track.Duration,
		})
	}
	for _, video := range decoded.Videos {
		release.Videos = append(release.Videos, record.Video{
			Title: video.Title,
			URL:   video.URI,
		})
	}
	for index, image := range decoded.Images {
		if image.ResourceURL == "" {
			continue
		}
		if index == 0 {
			release.CoverImageURL = image.ResourceURL
			continue
		}
		release.ExtraImageURLs = append(release.ExtraImageURLs, image.ResourceURL)
	}
	for _, credit := range decoded.ExtraArtists {
		name := strings.TrimSpace(credit.Name)
		role := strings.TrimSpace(credit.Role)
		switch {
		case name == "":
			continue
		case role == "":
			release.Credits = append(release.Credits, name)
		default:
			release.Credits = append(release.Credits, name+" - "+role)
		}
	}
	return release, nil
}
