// Package r2 stores objects in a Cloudflare R2 bucket through the
// S3-compatible API.
package r2

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/pkg/logger"
)

type Store struct {
	client     *s3.Client
	bucketName string
	publicURL  string
	logger     logger.Logger
}

// NewStore builds an R2-backed object store from environment config.
func NewStore(log logger.Logger) (*Store, error) {
	r2Config := cfg.GetR2Config()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r2Config.AccessKey,
			r2Config.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r2Config.Endpoint())
	})

	return &Store{
		client:     client,
		bucketName: r2Config.BucketName,
		publicURL:  strings.TrimSuffix(r2Config.PublicURL, "/"),
		logger:     log,
	}, nil
}

func (s *Store) Put(ctx context.Context, reader io.Reader, size int64, key, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to store object in R2",
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

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error("Failed to list objects in R2",
				logger.String("bucket", s.bucketName),
				logger.Error(err),
			)
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}

func (s *Store) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}
