package domain_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
)

func TestError_MessageIncludesCause(t *testing.T) {
	err := domain.FetchError(errors.New("dial tcp: connection refused"))
	want := "Failed to download video: dial tcp: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := domain.ExtractionError(cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestVideoURLRequired_Message(t *testing.T) {
	if domain.ErrVideoURLRequired.Error() != "videoUrl is required" {
		t.Errorf("message = %q", domain.ErrVideoURLRequired.Error())
	}
	if !domain.IsKind(domain.ErrVideoURLRequired, domain.KindValidation) {
		t.Error("expected validation kind")
	}
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", domain.PublishError(errors.New("403")))
	if got := domain.KindOf(err); got != domain.KindPublish {
		t.Errorf("KindOf = %q, want %q", got, domain.KindPublish)
	}
}

func TestPublishErrorTo_NamesBackend(t *testing.T) {
	err := domain.PublishErrorTo("Google Cloud Storage", errors.New("403"))
	if err.Error() != "Failed to upload to Google Cloud Storage: 403" {
		t.Errorf("message = %q", err.Error())
	}
	if got := domain.PublishError(errors.New("403")).Error(); got != "Failed to upload image: 403" {
		t.Errorf("unnamed message = %q", got)
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := domain.KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf = %q, want empty", got)
	}
	if domain.IsKind(nil, domain.KindFetch) {
		t.Error("nil error must not match any kind")
	}
}

func TestNewArtifactPath_Unique(t *testing.T) {
	dir := t.TempDir()
	a := domain.NewArtifactPath(dir, domain.VideoExt)
	b := domain.NewArtifactPath(dir, domain.VideoExt)
	if a == b {
		t.Fatalf("expected distinct paths, got %q twice", a)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("dir = %q, want %q", filepath.Dir(a), dir)
	}
	if !strings.HasSuffix(a, ".mp4") {
		t.Errorf("path %q missing .mp4 suffix", a)
	}
}
