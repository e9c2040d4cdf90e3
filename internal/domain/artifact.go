package domain

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Extensions used for transient artifacts.
const (
	VideoExt = ".mp4"
	ImageExt = ".jpg"
)

// ImageContentType is the content type attached to published frames.
const ImageContentType = "image/jpeg"

// NewArtifactPath returns a fresh path of the form <dir>/<uuid><ext>.
// Every call yields a distinct name, so concurrent operations sharing dir
// never collide.
func NewArtifactPath(dir, ext string) string {
	return filepath.Join(dir, uuid.NewString()+ext)
}
