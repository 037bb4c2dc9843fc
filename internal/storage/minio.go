package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/logger"
)

// MinioStore keeps documents in an S3-compatible bucket
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (s *MinioStore) PresignedUploadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	logger.ExternalServiceCall("minio", "PresignedPutObject", "bucket", s.bucket, "key", key)
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiresIn)
	logger.ExternalServiceResult("minio", "PresignedPutObject", err)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioStore) PresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	logger.ExternalServiceCall("minio", "PresignedGetObject", "bucket", s.bucket, "key", key)
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiresIn, nil)
	logger.ExternalServiceResult("minio", "PresignedGetObject", err)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	logger.ExternalServiceCall("minio", "StatObject", "bucket", s.bucket, "key", key)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			logger.ExternalServiceResult("minio", "StatObject", nil, "exists", false)
			return false, 0, nil
		}
		logger.ExternalServiceResult("minio", "StatObject", err)
		return false, 0, err
	}
	logger.ExternalServiceResult("minio", "StatObject", nil, "exists", true)
	return true, info.Size, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	logger.ExternalServiceCall("minio", "PutObject", "bucket", s.bucket, "key", key)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	logger.ExternalServiceResult("minio", "PutObject", err)
	return err
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	logger.ExternalServiceCall("minio", "RemoveObject", "bucket", s.bucket, "key", key)
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	logger.ExternalServiceResult("minio", "RemoveObject", err)
	return err
}
