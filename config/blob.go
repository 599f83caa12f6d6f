package config

import (
	"fmt"
	"sync"
)

var (
	r2Once    sync.Once
	r2Config  *R2Config
	minioOnce sync.Once
	minioCfg  *MinioConfig
)

// R2Config points at a Cloudflare R2 bucket via its S3-compatible API.
type R2Config struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	// PublicURL is the CDN prefix returned to clients, e.g.
	// https://media.example.org
	PublicURL string
}

// Endpoint returns the R2 S3 endpoint for the account.
func (c *R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

func GetR2Config() *R2Config {
	r2Once.Do(func() {
		loadEnv()
		r2Config = &R2Config{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY_ID", ""),
			SecretKey:  getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		}
	})
	return r2Config
}

// MinioConfig points at a self-hosted MinIO bucket, the alternate blob
// sink for deployments without R2.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	BucketName string
	PublicURL  string
}

func GetMinioConfig() *MinioConfig {
	minioOnce.Do(func() {
		loadEnv()
		minioCfg = &MinioConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:     getEnvBool("MINIO_USE_SSL", false),
			Region:     getEnv("MINIO_REGION", ""),
			BucketName: getEnv("MINIO_BUCKET_NAME", "archive"),
			PublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
		}
	})
	return minioCfg
}
