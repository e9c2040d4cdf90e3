package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/config"
)

// GCSPublicBaseURL is the host serving publicly readable GCS objects.
const GCSPublicBaseURL = "https://storage.googleapis.com"

// GCSStore implements ObjectStore using the real GCS client.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore wraps a *storage.Client bound to bucket.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// BackendName is used in publish failure messages.
func (g *GCSStore) BackendName() string { return "Google Cloud Storage" }

// Upload streams r to gs://<bucket>/<object>. A failed copy aborts the
// writer so no partial object is committed.
func (g *GCSStore) Upload(ctx context.Context, object, contentType string, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType
	if err := commitOrAbort(wc, cancel, r); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", g.bucket, object, err)
	}
	return nil
}

// commitOrAbort copies r into wc and closes it to commit. On a copy error
// it calls abort instead of Close, since closing would commit the bytes
// written so far.
func commitOrAbort(wc io.WriteCloser, abort context.CancelFunc, r io.Reader) error {
	if _, err := io.Copy(wc, r); err != nil {
		abort()
		return fmt.Errorf("copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalise: %w", err)
	}
	return nil
}

// MakePublic grants allUsers read access on the object.
func (g *GCSStore) MakePublic(ctx context.Context, object string) error {
	acl := g.client.Bucket(g.bucket).Object(object).ACL()
	if err := acl.Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return fmt.Errorf("set public ACL on gs://%s/%s: %w", g.bucket, object, err)
	}
	return nil
}

// Delete removes the object.
func (g *GCSStore) Delete(ctx context.Context, object string) error {
	if err := g.client.Bucket(g.bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("delete gs://%s/%s: %w", g.bucket, object, err)
	}
	return nil
}

// PublicURL returns https://storage.googleapis.com/<bucket>/<object>.
func (g *GCSStore) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", GCSPublicBaseURL, g.bucket, object)
}

// serviceAccountKey is the JSON shape of a service-account key file, built
// from an inline client email and private key.
type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id,omitempty"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ClientOptions picks GCS credentials in order: an existing key file, an
// inline client email + private key pair, then Application Default
// Credentials (no options).
func ClientOptions(cfg config.GCSConfig) ([]option.ClientOption, error) {
	switch {
	case cfg.CredentialsFileExists():
		log.Infof("using credentials file: %s", cfg.CredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil

	case cfg.ClientEmail != "" && cfg.PrivateKey != "":
		log.Info("using direct credentials from environment variables")
		raw, err := json.Marshal(serviceAccountKey{
			Type:        "service_account",
			ProjectID:   cfg.ProjectID,
			ClientEmail: cfg.ClientEmail,
			PrivateKey:  cfg.NormalizedPrivateKey(),
			TokenURI:    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, fmt.Errorf("marshal inline credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(raw)}, nil

	default:
		log.Info("no explicit credentials provided, using default authentication")
		return nil, nil
	}
}

// NewGCSClient creates a *storage.Client with credentials chosen by
// ClientOptions. Callers are responsible for closing it.
func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*storage.Client, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return client, nil
}
