package images_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"crate/internal/images"
	"crate/internal/testsupport"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func newFetcher(t *testing.T, opts ...images.Option) *images.Fetcher {
	t.Helper()

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg := testsupport.NewConfig(t)
	cfg.Retry.ImageRetries = 2
	opts = append([]images.Option{
		images.WithHTTPClient(httpClient),
		images.WithRetryDelay(time.Millisecond),
	}, opts...)
	return images.NewFetcher(cfg, nil, opts...)
}

func TestDownloadWritesFile(t *testing.T) {
	fetcher := newFetcher(t)

	httpmock.RegisterResponder(http.MethodGet, "https://img.test/cover.jpg",
		httpmock.NewBytesResponder(http.StatusOK, encodeJPEG(t, 100, 100)))

	path := filepath.Join(t.TempDir(), "albums", "slug", "slug.jpg")
	if err := fetcher.Download(context.Background(), "https://img.test/cover.jpg", path); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected image on disk: %v", err)
	}
}

func TestDownloadSkipsExistingFile(t *testing.T) {
	fetcher := newFetcher(t)

	path := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No responder registered: any request would fail the test.
	if err := fetcher.Download(context.Background(), "https://img.test/cover.jpg", path); err != nil {
		t.Fatalf("Download must skip existing files: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "existing" {
		t.Fatalf("existing file must be untouched: %q err=%v", data, err)
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	fetcher := newFetcher(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, "https://img.test/flaky.jpg",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusBadGateway, "upstream"), nil
			}
			return httpmock.NewBytesResponse(http.StatusOK, encodeJPEG(t, 50, 50)), nil
		})

	path := filepath.Join(t.TempDir(), "flaky.jpg")
	if err := fetcher.Download(context.Background(), "https://img.test/flaky.jpg", path); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected retry, got %d calls", calls)
	}
}

func TestDownloadFallsBackToSentinel(t *testing.T) {
	fetcher := newFetcher(t, images.WithSentinelURL("https://img.test/missing.jpg"))

	httpmock.RegisterResponder(http.MethodGet, "https://img.test/gone.jpg",
		httpmock.NewStringResponder(http.StatusNotFound, "gone"))
	httpmock.RegisterResponder(http.MethodGet, "https://img.test/missing.jpg",
		httpmock.NewBytesResponder(http.StatusOK, encodeJPEG(t, 10, 10)))

	path := filepath.Join(t.TempDir(), "gone.jpg")
	if err := fetcher.Download(context.Background(), "https://img.test/gone.jpg", path); err != nil {
		t.Fatalf("expected sentinel fallback, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sentinel image on disk: %v", err)
	}
}

func TestDownloadScalesOversizedImages(t *testing.T) {
	fetcher := newFetcher(t)

	// Config artwork size is 2000; serve something larger.
	httpmock.RegisterResponder(http.MethodGet, "https://img.test/huge.jpg",
		httpmock.NewBytesResponder(http.StatusOK, encodeJPEG(t, 3000, 1500)))

	path := filepath.Join(t.TempDir(), "huge.jpg")
	if err := fetcher.Download(context.Background(), "https://img.test/huge.jpg", path); err != nil {
		t.Fatalf("Download: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	decoded, _, err := image.Decode(file)
	if err != nil {
		t.Fatalf("decode written image: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 2000 || bounds.Dy() != 1000 {
		t.Fatalf("expected 2000x1000 after scaling, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}
