package applemusic_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"crate/internal/sources"
	"crate/internal/sources/applemusic"
	"crate/internal/testsupport"
)

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

func newTestClient(t *testing.T) *applemusic.Client {
	t.Helper()

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg := testsupport.NewConfig(t)
	cfg.AppleMusic.Storefront = "gb"
	return applemusic.NewClient(cfg, staticTokens("developer-token"),
		applemusic.WithHTTPClient(httpClient),
		applemusic.WithBaseURL("https://api.music.test/v1/catalog"),
		applemusic.WithRetryPolicy(sources.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}),
		applemusic.WithRequestsPerMinute(6000),
	)
}

func TestSearchAlbumPicksClosestMatch(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		httpmock.NewStringResponder(http.StatusOK, `{
			"results": {
				"albums": {
					"data": [
						{
							"id": "999",
							"attributes": {
								"name": "Nevermind Tribute Sessions",
								"artistName": "Various Artists",
								"url": "https://music.apple.com/gb/album/999"
							}
						},
						{
							"id": "1440783617",
							"attributes": {
								"name": "Nevermind",
								"artistName": "Nirvana",
								"url": "https://music.apple.com/gb/album/1440783617",
								"editorialNotes": {"standard": "A generational touchstone."},
								"artwork": {"url": "https://is1.mzstatic.test/image/{w}x{h}bb.jpg"}
							}
						}
					]
				}
			}
		}`))

	album, err := client.SearchAlbum(context.Background(), "Nirvana", "Nevermind")
	if err != nil {
		t.Fatalf("SearchAlbum: %v", err)
	}
	if album.ID != "1440783617" {
		t.Fatalf("picked wrong candidate: %+v", album)
	}
	if album.EditorialNote != "A generational touchstone." {
		t.Fatalf("unexpected note: %+v", album)
	}
	if album.ArtworkURLTemplate != "https://is1.mzstatic.test/image/{w}x{h}bb.jpg" {
		t.Fatalf("unexpected artwork template: %+v", album)
	}
}

func TestSearchAlbumRejectsDistantMatches(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		httpmock.NewStringResponder(http.StatusOK, `{
			"results": {
				"albums": {
					"data": [
						{
							"id": "42",
							"attributes": {
								"name": "Completely Different Record",
								"artistName": "Somebody Else"
							}
						}
					]
				}
			}
		}`))

	_, err := client.SearchAlbum(context.Background(), "Nirvana", "Nevermind")
	if !sources.IsMiss(err) {
		t.Fatalf("expected miss for distant match, got %v", err)
	}
}

func TestSearchAlbumEmptyResultsIsMiss(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		httpmock.NewStringResponder(http.StatusOK, `{"results": {}}`))

	_, err := client.SearchAlbum(context.Background(), "Nirvana", "Nevermind")
	if !sources.IsMiss(err) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestSearchArtistStripsDisambiguator(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		func(req *http.Request) (*http.Response, error) {
			if term := req.URL.Query().Get("term"); term != "Nirvana" {
				t.Fatalf("disambiguator leaked into query: %q", term)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{
				"results": {
					"artists": {
						"data": [
							{
								"id": "112018",
								"attributes": {
									"name": "Nirvana",
									"url": "https://music.apple.com/gb/artist/112018",
									"genreNames": ["Rock", "Grunge"]
								}
							}
						]
					}
				}
			}`), nil
		})

	artist, err := client.SearchArtist(context.Background(), "Nirvana (2)")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if artist.ID != "112018" || len(artist.Genres) != 2 {
		t.Fatalf("unexpected artist: %+v", artist)
	}
}

func TestSearchRateLimitIsTransient(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		func(req *http.Request) (*http.Response, error) {
			calls++
			resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "slow down")
			resp.Header.Set("Retry-After", "0")
			return resp, nil
		})

	_, err := client.SearchAlbum(context.Background(), "Nirvana", "Nevermind")
	if !sources.IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected bounded retries, got %d calls", calls)
	}
}

func TestSearchPacesRequests(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg := testsupport.NewConfig(t)
	cfg.AppleMusic.Storefront = "gb"
	client := applemusic.NewClient(cfg, staticTokens("developer-token"),
		applemusic.WithHTTPClient(httpClient),
		applemusic.WithBaseURL("https://api.music.test/v1/catalog"),
		applemusic.WithRequestsPerMinute(1200),
	)

	httpmock.RegisterResponder(http.MethodGet,
		"https://api.music.test/v1/catalog/gb/search",
		httpmock.NewStringResponder(http.StatusOK, `{"results": {"albums": {"data": [
			{"id": "1", "attributes": {"name": "Nevermind", "artistName": "Nirvana", "url": "https://music.apple.test/1"}}
		]}}}`))

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := client.SearchAlbum(context.Background(), "Nirvana", "Nevermind"); err != nil {
			t.Fatalf("SearchAlbum: %v", err)
		}
	}
	// 1200/min is one request per 50ms; the second call has to wait.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected paced requests, two calls took %v", elapsed)
	}
}
