// Package blobstore holds uploaded images in an S3-compatible object
// store and addresses them by public URL.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bkral/blogsync/internal/telemetry/tracing"
)

var ErrInvalidBlobURL = errors.New("invalid blob url")

type Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	// injectable for deterministic object keys in tests
	nowFunc func() time.Time
}

type NewStoreParams struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	PublicBaseURL   string
}

func NewStore(params NewStoreParams) (*Store, error) {
	if params.Bucket == "" {
		return nil, errors.New("bucket cannot be empty")
	}

	client, err := minio.New(params.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKeyID, params.SecretAccessKey, ""),
		Secure: params.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	return &Store{
		client:        client,
		bucket:        params.Bucket,
		publicBaseURL: strings.TrimSuffix(params.PublicBaseURL, "/"),
		nowFunc:       time.Now,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	log.Debugf("blob store: bucket %q created", s.bucket)
	return nil
}

// Upload stores the image bytes under a time-derived key and returns the
// public fetch URL. Keys are not content-addressed; two uploads in the
// same millisecond would collide.
func (s *Store) Upload(
	ctx context.Context,
	r io.Reader,
	size int64,
	contentType string,
) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blobStore.upload")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := s.objectKey()
	span.SetAttributes(attribute.String("blob.key", key))
	span.SetAttributes(attribute.Int64("blob.size", size))
	log.Debugf("blob store: uploading %s (%d bytes)", key, size)

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.publicURL(key), nil
}

// Delete removes a previously uploaded blob by its public URL.
func (s *Store) Delete(ctx context.Context, blobURL string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blobStore.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key, err := s.keyFromURL(blobURL)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("blob.key", key))

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}

	log.Debugf("blob store: %s deleted", key)
	return nil
}

func (s *Store) objectKey() string {
	return fmt.Sprintf("user-%d", s.nowFunc().UnixMilli())
}

func (s *Store) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
}

func (s *Store) keyFromURL(blobURL string) (string, error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidBlobURL, blobURL)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != s.bucket || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidBlobURL, blobURL)
	}

	return parts[len(parts)-1], nil
}
