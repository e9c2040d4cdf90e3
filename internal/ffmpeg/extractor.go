package ffmpeg

import (
	"context"
	"os"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
)

// FrameGrabber is satisfied by *Runner.
type FrameGrabber interface {
	ExtractFrame(ctx context.Context, inputPath, destPath string, percent float64) error
}

// Extractor produces one still image per video under Dir.
type Extractor struct {
	Grabber FrameGrabber
	Dir     string
	// Percent is the sampling position as a share of the video's duration.
	Percent float64
}

// NewExtractor constructs an Extractor writing into dir at percent.
func NewExtractor(g FrameGrabber, dir string, percent float64) *Extractor {
	return &Extractor{Grabber: g, Dir: dir, Percent: percent}
}

// Extract writes the frame at e.Percent of videoPath to <Dir>/<uuid>.jpg and
// returns that path. On failure the path is still returned if ffmpeg left a
// file behind, so the caller can remove it.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (string, error) {
	imagePath := domain.NewArtifactPath(e.Dir, domain.ImageExt)

	if err := e.Grabber.ExtractFrame(ctx, videoPath, imagePath, e.Percent); err != nil {
		if _, statErr := os.Stat(imagePath); statErr == nil {
			return imagePath, domain.ExtractionError(err)
		}
		return "", domain.ExtractionError(err)
	}
	return imagePath, nil
}
