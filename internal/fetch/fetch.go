package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const defaultUserAgent = "CardpressAssetFetcher/1.0"

// imageExtensions are the URL extensions preserved in destination filenames;
// anything else falls back to .jpg.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Fetcher downloads raw card artwork over HTTP
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

// New returns a Fetcher with the given request timeout. A timeout of zero
// would disable the http.Client deadline entirely, so non-positive values
// are rejected.
func New(timeout time.Duration) (*Fetcher, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", timeout)
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: defaultUserAgent,
	}, nil
}

// DestName returns the destination path for a slug, keeping the URL's image
// extension when it has one
func DestName(dir, slug, rawURL string) string {
	ext := ".jpg"
	if parsed, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); imageExtensions[e] {
			ext = e
		}
	}
	return filepath.Join(dir, slug+ext)
}

// Download fetches rawURL into destination. Responses that do not declare an
// image Content-Type are rejected rather than written to disk.
func (f *Fetcher) Download(rawURL, destination string) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.Contains(contentType, "image") {
		return fmt.Errorf("URL does not look like an image (Content-Type: %s)", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}
	if err := os.WriteFile(destination, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %v", destination, err)
	}
	return nil
}
