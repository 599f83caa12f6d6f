// Package minio stores objects in a self-hosted MinIO bucket, the
// alternate blob sink for deployments without R2.
package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cfg "github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/pkg/logger"
)

type Store struct {
	client     *minio.Client
	bucketName string
	publicURL  string
	logger     logger.Logger
}

// NewStore builds a MinIO-backed object store from environment config,
// creating the bucket if it does not exist yet.
func NewStore(log logger.Logger) (*Store, error) {
	minioConfig := cfg.GetMinioConfig()

	client, err := minio.New(minioConfig.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioConfig.AccessKey, minioConfig.SecretKey, ""),
		Secure: minioConfig.UseSSL,
		Region: minioConfig.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), minioConfig.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = client.MakeBucket(context.Background(), minioConfig.BucketName, minio.MakeBucketOptions{
			Region: minioConfig.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Store{
		client:     client,
		bucketName: minioConfig.BucketName,
		publicURL:  strings.TrimSuffix(minioConfig.PublicURL, "/"),
		logger:     log,
	}, nil
}

func (s *Store) Put(ctx context.Context, reader io.Reader, size int64, key, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to store object in MinIO",
			logger.String("bucket", s.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("failed to store object: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string

	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			s.logger.Error("Failed to list objects in MinIO",
				logger.String("bucket", s.bucketName),
				logger.Error(obj.Err),
			)
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

func (s *Store) URL(key string) string {
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucketName, key)
}
