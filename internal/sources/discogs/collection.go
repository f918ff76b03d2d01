package discogs

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// CollectionItem is one entry in the user's collection folder. It carries
// the identity needed to fetch full details plus the fields the listing
// already includes.
type CollectionItem struct {
	ReleaseID  int64
	InstanceID int64
	ArtistID   int64
	ArtistName string
	AlbumTitle string
	DateAdded  time.Time
}

// CollectionPage is one page of the collection listing, in the order the
// API returned it.
type CollectionPage struct {
	Page  int
	Pages int
	Total int
	Items []CollectionItem
}

// HasNext reports whether another page follows this one.
func (p *CollectionPage) HasNext() bool {
	return p.Page < p.Pages
}

type collectionResponse struct {
	Pagination struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
		Items int `json:"items"`
	} `json:"pagination"`
	Releases []struct {
		ID               int64  `json:"id"`
		InstanceID       int64  `json:"instance_id"`
		DateAdded        string `json:"date_added"`
		BasicInformation struct {
			Title   string `json:"title"`
			Artists []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"basic_information"`
	} `json:"releases"`
}

// ListCollection fetches one page of the "All" collection folder, sorted by
// date added in the configured direction. page is 1-based.
func (c *Client) ListCollection(ctx context.Context, page, perPage int, sortOrder string) (*CollectionPage, error) {
	if c.username == "" {
		return nil, fmt.Errorf("discogs: username required")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 100
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("per_page", fmt.Sprint(perPage))
	query.Set("sort", "added")
	query.Set("sort_order", sortOrder)

	endpoint := c.endpoint("/users/%s/collection/folders/0/releases", url.PathEscape(c.username)) + "?" + query.Encode()

	var decoded collectionResponse
	if err := c.getJSON(ctx, "list collection", endpoint, &decoded); err != nil {
		return nil, err
	}

	result := &CollectionPage{
		Page:  decoded.Pagination.Page,
		Pages: decoded.Pagination.Pages,
		Total: decoded.Pagination.Items,
		Items: make([]CollectionItem, 0, len(decoded.Releases)),
	}
	for _, entry := range decoded.Releases {
		item := CollectionItem{
			ReleaseID:  entry.ID,
			InstanceID: entry.InstanceID,
			AlbumTitle: entry.BasicInformation.Title,
		}
		if len(entry.BasicInformation.Artists) > 0 {
			item.ArtistID = entry.BasicInformation.Artists[0].ID
			item.ArtistName = entry.BasicInformation.Artists[0].Name
		}
		if entry.DateAdded != "" {
			if added, err := time.Parse(time.RFC3339, entry.DateAdded); err == nil {
				item.DateAdded = added.UTC()
			}
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
