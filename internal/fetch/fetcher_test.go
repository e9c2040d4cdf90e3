package fetch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/fetch"
)

// ── stub HTTPDoer ─────────────────────────────────────────────────────────────

type stubDoer struct {
	resp *http.Response
	err  error
	req  *http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.req = req
	return s.resp, s.err
}

func okResponse(body io.Reader) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(body)}
}

// failingReader yields some bytes and then an error, simulating a dropped
// connection mid-body.
type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset by peer")
}

// ── Fetch ─────────────────────────────────────────────────────────────────────

func TestFetch_Success_WritesBody(t *testing.T) {
	dir := t.TempDir()
	doer := &stubDoer{resp: okResponse(strings.NewReader("video-bytes"))}
	f := &fetch.Fetcher{Client: doer, Dir: dir}

	path, err := f.Fetch(context.Background(), "https://example.com/v.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %q not under %q", path, dir)
	}
	if !strings.HasSuffix(path, ".mp4") {
		t.Errorf("path %q missing .mp4 suffix", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "video-bytes" {
		t.Errorf("content = %q, want %q", got, "video-bytes")
	}
}

func TestFetch_IssuesGET(t *testing.T) {
	doer := &stubDoer{resp: okResponse(strings.NewReader(""))}
	f := &fetch.Fetcher{Client: doer, Dir: t.TempDir()}

	_, _ = f.Fetch(context.Background(), "https://example.com/v.mp4")

	if doer.req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", doer.req.Method)
	}
	if doer.req.URL.String() != "https://example.com/v.mp4" {
		t.Errorf("url = %s", doer.req.URL)
	}
}

func TestFetch_DistinctPathsPerCall(t *testing.T) {
	dir := t.TempDir()
	f := &fetch.Fetcher{Dir: dir}

	f.Client = &stubDoer{resp: okResponse(strings.NewReader("a"))}
	p1, err := f.Fetch(context.Background(), "https://example.com/v.mp4")
	if err != nil {
		t.Fatal(err)
	}
	f.Client = &stubDoer{resp: okResponse(strings.NewReader("b"))}
	p2, err := f.Fetch(context.Background(), "https://example.com/v.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Errorf("same path returned twice: %s", p1)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	doer := &stubDoer{}
	f := &fetch.Fetcher{Client: doer, Dir: t.TempDir()}

	_, err := f.Fetch(context.Background(), "")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if doer.req != nil {
		t.Error("no request should be issued for an empty URL")
	}
}

func TestFetch_NetworkError_IncludesCause(t *testing.T) {
	doer := &stubDoer{err: errors.New("dial tcp: lookup nowhere.invalid: no such host")}
	f := &fetch.Fetcher{Client: doer, Dir: t.TempDir()}

	path, err := f.Fetch(context.Background(), "https://nowhere.invalid/v.mp4")
	if !domain.IsKind(err, domain.KindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such host") {
		t.Errorf("error %q does not carry the network cause", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty when no file was created", path)
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	doer := &stubDoer{resp: &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}}
	f := &fetch.Fetcher{Client: doer, Dir: t.TempDir()}

	_, err := f.Fetch(context.Background(), "https://example.com/missing.mp4")
	if !domain.IsKind(err, domain.KindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention status", err)
	}
}

func TestFetch_BodyError_ReturnsPartialPath(t *testing.T) {
	dir := t.TempDir()
	doer := &stubDoer{resp: okResponse(&failingReader{})}
	f := &fetch.Fetcher{Client: doer, Dir: dir}

	path, err := f.Fetch(context.Background(), "https://example.com/v.mp4")
	if !domain.IsKind(err, domain.KindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if path == "" {
		t.Fatal("expected the partially written path to be reported")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("partial file should exist for the caller to clean: %v", statErr)
	}
}

func TestFetch_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	doer := &stubDoer{resp: okResponse(strings.NewReader("x"))}
	f := &fetch.Fetcher{Client: doer, Dir: dir}

	if _, err := f.Fetch(context.Background(), "https://example.com/v.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("dir not created: %v", err)
	}
}

func TestFetch_RealServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4-data"))
	}))
	defer srv.Close()

	f := fetch.NewFetcher(t.TempDir(), 5*time.Second)
	path, err := f.Fetch(context.Background(), srv.URL+"/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "mp4-data" {
		t.Errorf("content = %q", got)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := fetch.NewFetcher(t.TempDir(), 50*time.Millisecond)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !domain.IsKind(err, domain.KindFetch) {
		t.Fatalf("expected fetch error on timeout, got %v", err)
	}
}
