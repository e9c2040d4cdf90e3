package pipeline

import (
	"errors"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/metrics"
)

// Cleaner removes transient artifacts. Removal failures are logged and
// counted, never returned.
type Cleaner struct {
	// Remove deletes one path; defaults to os.Remove.
	Remove  func(path string) error
	Metrics *metrics.Metrics
}

// Cleanup attempts to delete every non-empty path. A path that is already
// gone counts as removed.
func (c *Cleaner) Cleanup(logger *log.Entry, paths ...string) {
	remove := c.Remove
	if remove == nil {
		remove = os.Remove
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		err := remove(p)
		switch {
		case err == nil:
			logger.WithField("path", p).Debug("removed transient file")
		case errors.Is(err, fs.ErrNotExist):
			logger.WithField("path", p).Debug("transient file already gone")
		default:
			c.Metrics.CleanupFailed()
			logger.WithFields(log.Fields{"path": p, "error": err}).Warn("failed to remove transient file")
		}
	}
}
