// Package fetch downloads candidate images for detection through an
// on-disk HTTP cache, so repeated checks of the same URL stay local.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/yyyoichi/httpcache-go"
)

var (
	ErrTooLarge = errors.New("response exceeds size limit")
)

type Fetcher struct {
	client   httpcache.Client
	maxBytes int64
}

// New returns a Fetcher caching responses under cacheDir and refusing
// bodies larger than maxBytes. Requests that miss the cache are spaced at
// least interval apart.
func New(cacheDir string, maxBytes int64, interval time.Duration) *Fetcher {
	if !strings.HasSuffix(cacheDir, string(os.PathSeparator)) {
		cacheDir += string(os.PathSeparator)
	}
	return &Fetcher{
		client: httpcache.Client{
			Client:  newRateLimitedClient(http.DefaultClient, interval),
			Cache:   httpcache.NewStorageCache(cacheDir),
			Handler: httpcache.NewDefaultHandler(),
		},
		maxBytes: maxBytes,
	}
}

// Fetch downloads rawURL and returns the body with the file name taken
// from the URL path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("invalid url: unsupported scheme %q", u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrTooLarge, f.maxBytes)
	}
	return body, path.Base(u.Path), nil
}
