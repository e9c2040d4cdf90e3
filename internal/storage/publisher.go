// Package storage publishes extracted frames to object storage and returns
// their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
)

// ObjectStore is the object-storage capability the Publisher needs. It is
// satisfied by *GCSStore and *S3Store, and lets tests inject a stub.
type ObjectStore interface {
	// Upload writes r to object with the given content type.
	Upload(ctx context.Context, object, contentType string, r io.Reader) error
	// MakePublic grants anonymous read access to object.
	MakePublic(ctx context.Context, object string) error
	// Delete removes object.
	Delete(ctx context.Context, object string) error
	// PublicURL returns the unauthenticated URL of object.
	PublicURL(object string) string
}

// backendNamer is implemented by stores that name themselves in errors.
type backendNamer interface {
	BackendName() string
}

// Publisher uploads local images under Prefix and makes them public.
type Publisher struct {
	Store  ObjectStore
	Prefix string
	// Backend names the store in failure messages; empty gives a generic one.
	Backend string
}

// NewPublisher constructs a Publisher backed by store.
func NewPublisher(store ObjectStore, prefix string) *Publisher {
	p := &Publisher{Store: store, Prefix: prefix}
	if n, ok := store.(backendNamer); ok {
		p.Backend = n.BackendName()
	}
	return p
}

// ObjectName returns the object key for a local image: <Prefix>/<basename>.
func (p *Publisher) ObjectName(imagePath string) string {
	base := filepath.Base(imagePath)
	if p.Prefix == "" {
		return base
	}
	return path.Join(p.Prefix, base)
}

// Publish uploads imagePath as a JPEG, marks it publicly readable and returns
// its public URL. If the object was uploaded but could not be made public it
// is deleted again, best-effort, so no private orphan is left behind.
func (p *Publisher) Publish(ctx context.Context, imagePath string) (string, error) {
	object := p.ObjectName(imagePath)

	f, err := os.Open(imagePath)
	if err != nil {
		return "", domain.PublishErrorTo(p.Backend, fmt.Errorf("open local file %s: %w", imagePath, err))
	}
	defer f.Close()

	if err := p.Store.Upload(ctx, object, domain.ImageContentType, f); err != nil {
		return "", domain.PublishErrorTo(p.Backend, err)
	}

	if err := p.Store.MakePublic(ctx, object); err != nil {
		if delErr := p.Store.Delete(ctx, object); delErr != nil {
			log.WithFields(log.Fields{
				"object": object,
				"error":  delErr,
			}).Warn("could not delete private object after make-public failure")
		}
		return "", domain.PublishErrorTo(p.Backend, fmt.Errorf("make %s public: %w", object, err))
	}

	return p.Store.PublicURL(object), nil
}
