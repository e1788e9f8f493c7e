package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyperengineering/carelog/internal/config"
)

// s3Client defines the minimal minio.Client operations used by S3Storage.
type s3Client interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
}

// minioClientWrapper adapts *minio.Client to s3Client.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := w.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (w *minioClientWrapper) RemoveObject(ctx context.Context, bucket, key string) error {
	return w.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// S3Storage stores artifacts in an S3-compatible bucket and refers to them by
// their path-style object URL.
type S3Storage struct {
	client  s3Client
	bucket  string
	baseURL string
}

// NewS3Storage connects to the configured endpoint.
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
		return nil, errors.New("s3 storage requires endpoint and bucket")
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return newS3Storage(&minioClientWrapper{client: client}, cfg), nil
}

func newS3Storage(client s3Client, cfg config.StorageConfig) *S3Storage {
	scheme := "http"
	if cfg.S3UseSSL {
		scheme = "https"
	}
	return &S3Storage{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimSuffix(cfg.S3Endpoint, "/"), cfg.S3Bucket),
	}
}

// Put uploads data under images/<ulid><ext>.
func (s *S3Storage) Put(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	key := objectKey(objectName(ext))
	if err := s.client.PutObject(ctx, s.bucket, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload artifact to S3: %w", err)
	}
	return s.baseURL + key, nil
}

// Delete removes the object behind ref.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || key == "" {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key); err != nil {
		return fmt.Errorf("remove artifact from S3: %w", err)
	}
	return nil
}

// objectKey returns the S3 object key for an artifact.
// Convention: images/{name}
func objectKey(name string) string {
	return "images/" + name
}
