// Package fetch downloads remote videos into the local scratch directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
)

// HTTPDoer abstracts http.Client.Do so that tests can inject a stub.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher streams a remote video to a freshly named file under Dir.
type Fetcher struct {
	Client HTTPDoer
	Dir    string
	// Timeout bounds the whole download, headers and body. Zero disables it.
	Timeout time.Duration
}

// NewFetcher constructs a Fetcher using the default http.Client.
func NewFetcher(dir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:  &http.Client{},
		Dir:     dir,
		Timeout: timeout,
	}
}

// Fetch GETs sourceURL and writes the body to <Dir>/<uuid>.mp4.
//
// The returned path is non-empty whenever a local file was created, even if
// the download then failed, so the caller can always clean it up. Failures
// are reported as domain.KindFetch errors carrying the underlying cause.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) (string, error) {
	if sourceURL == "" {
		return "", domain.ErrVideoURLRequired
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", domain.FetchError(fmt.Errorf("build request: %w", err))
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", domain.FetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.FetchError(fmt.Errorf("GET %s returned status %d", sourceURL, resp.StatusCode))
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", domain.FetchError(fmt.Errorf("mkdir %s: %w", f.Dir, err))
	}

	destPath := domain.NewArtifactPath(f.Dir, domain.VideoExt)
	out, err := os.Create(destPath)
	if err != nil {
		return "", domain.FetchError(fmt.Errorf("create local file %s: %w", destPath, err))
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return destPath, domain.FetchError(fmt.Errorf("copy response body to %s: %w", destPath, err))
	}
	if err := out.Close(); err != nil {
		return destPath, domain.FetchError(fmt.Errorf("close %s: %w", destPath, err))
	}
	return destPath, nil
}
