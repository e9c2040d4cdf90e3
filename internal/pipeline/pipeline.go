// Package pipeline sequences download, frame extraction and publishing for a
// single video, and guarantees that every transient file it produced is
// removed before it returns.
package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/metrics"
)

// Fetcher downloads a remote video to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (string, error)
}

// Extractor writes one still frame of a local video to a local image path.
type Extractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// Publisher uploads a local image and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, imagePath string) (string, error)
}

// Pipeline groups the stage dependencies. It holds no per-request state and
// is safe for concurrent use as long as its stages are.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	publisher Publisher
	cleaner   *Cleaner
	metrics   *metrics.Metrics
}

// New constructs a Pipeline. m may be nil.
func New(f Fetcher, e Extractor, p Publisher, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		publisher: p,
		cleaner:   &Cleaner{Metrics: m},
		metrics:   m,
	}
}

// WithCleaner replaces the default Cleaner; used by tests to observe removals.
func (p *Pipeline) WithCleaner(c *Cleaner) *Pipeline {
	p.cleaner = c
	return p
}

// Process runs fetch → extract → publish for sourceURL and returns the public
// image URL. Any stage failure aborts the remaining stages and is returned
// unchanged. Every local path a stage reported, including one reported
// together with an error, is removed before Process returns.
func (p *Pipeline) Process(ctx context.Context, sourceURL string) (imageURL string, err error) {
	logger := log.WithField("video_url", sourceURL)

	var artifacts []string
	defer func() {
		p.cleaner.Cleanup(logger, artifacts...)
		p.metrics.RequestDone(err)
	}()

	// ── Step 1: Download video ────────────────────────────────────────────────
	start := time.Now()
	videoPath, err := p.fetcher.Fetch(ctx, sourceURL)
	artifacts = appendPath(artifacts, videoPath)
	p.metrics.ObserveStage(metrics.StageFetch, time.Since(start), err)
	if err != nil {
		return "", err
	}
	logger.WithField("video_path", videoPath).Info("video downloaded")

	// ── Step 2: Extract frame ─────────────────────────────────────────────────
	start = time.Now()
	imagePath, err := p.extractor.Extract(ctx, videoPath)
	artifacts = appendPath(artifacts, imagePath)
	p.metrics.ObserveStage(metrics.StageExtract, time.Since(start), err)
	if err != nil {
		return "", err
	}
	logger.WithField("image_path", imagePath).Info("frame extracted")

	// ── Step 3: Publish image ─────────────────────────────────────────────────
	start = time.Now()
	imageURL, err = p.publisher.Publish(ctx, imagePath)
	p.metrics.ObserveStage(metrics.StagePublish, time.Since(start), err)
	if err != nil {
		return "", err
	}
	logger.WithField("image_url", imageURL).Info("frame published")

	return imageURL, nil
}

func appendPath(paths []string, p string) []string {
	if p == "" {
		return paths
	}
	return append(paths, p)
}
