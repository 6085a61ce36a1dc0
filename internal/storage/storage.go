// Package storage wraps the S3-compatible object store holding finished
// recordings.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/raheva/mirror/internal/config"
)

// Store implements recording.ObjectStore against a MinIO / S3 bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore connects to the configured object store. The connection is lazy;
// errors surface on first use.
func NewStore(cfg config.StorageConfig) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connecting to %s: %w", cfg.Endpoint, err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// SignURL returns a pre-signed GET URL for key, valid for ttl.
func (s *Store) SignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("storage: signing url for %s: %w", key, err)
	}
	return u.String(), nil
}

// Exists reports whether key is present in the bucket. A missing object is
// not an error.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("storage: checking %s: %w", key, err)
	}
	return true, nil
}
