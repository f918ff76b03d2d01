package discogs

import (
	"context"

	"crate/internal/record"
)

type artistResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Profile string `json:"profile"`
	URI     string `json:"uri"`
	Aliases []struct {
		Name string `json:"name"`
	} `json:"aliases"`
	Members []struct {
		Name string `json:"name"`
	} `json:"members"`
	Images []struct {
		ResourceURL string `json:"resource_url"`
	} `json:"images"`
}

// GetArtist fetches an artist profile and maps it onto the canonical
// artist record. The profile keeps its catalog markup; the renderer
// cleans it at output time.
func (c *Client) GetArtist(ctx context.Context, artistID int64) (*record.Artist, error) {
	var decoded artistResponse
	if err := c.getJSON(ctx, "get artist", c.endpoint("/artists/%d", artistID), &decoded); err != nil {
		return nil, err
	}

	artist := &record.Artist{
		ArtistID: decoded.ID,
		Name:     decoded.Name,
		Slug:     record.Slugify(record.CleanName(decoded.Name)),
		Profile:  decoded.Profile,
		URL:      decoded.URI,
	}
	for _, alias := range decoded.Aliases {
		if alias.Name != "" {
			artist.Aliases = append(artist.Aliases, alias.Name)
		}
	}
	for _, member := range decoded.Members {
		if member.Name != "" {
			artist.Members = append(artist.Members, member.Name)
		}
	}
	for _, image := range decoded.Images {
		if image.ResourceURL != "" {
			artist.ImageURLs = append(artist.ImageURLs, image.ResourceURL)
		}
	}
	return artist, nil
}
