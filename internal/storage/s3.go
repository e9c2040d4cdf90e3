package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, in *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ObjectStore on Amazon S3 (or any S3-compatible store).
type S3Store struct {
	client S3API
	bucket string
	region string
	// baseURL overrides the virtual-hosted URL, e.g. a CDN in front of the bucket.
	baseURL string
}

// NewS3Store wraps an S3 client bound to bucket.
func NewS3Store(client S3API, bucket, region, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, baseURL: baseURL}
}

// BackendName is used in publish failure messages.
func (s *S3Store) BackendName() string { return "S3" }

// NewS3Client loads the default AWS configuration for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Upload puts r at s3://<bucket>/<object>.
func (s *S3Store) Upload(ctx context.Context, object, contentType string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(object),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// MakePublic applies the public-read canned ACL.
func (s *S3Store) MakePublic(ctx context.Context, object string) error {
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(object),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("set public-read on s3://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, object string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// PublicURL returns <baseURL>/<object>, or the virtual-hosted S3 URL when no
// base is configured.
func (s *S3Store) PublicURL(object string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + object
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, object)
}
