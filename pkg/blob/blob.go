// Package blob abstracts durable object storage for binary payloads.
// Two interchangeable backends exist: Cloudflare R2 (via the S3 API) and
// a self-hosted MinIO bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/pkg/blob/minio"
	"github.com/turath/archive-sync/pkg/blob/r2"
	"github.com/turath/archive-sync/pkg/logger"
)

// SinkType selects a blob backend.
type SinkType string

const (
	SinkTypeR2    SinkType = "r2"
	SinkTypeMinio SinkType = "minio"
)

// ObjectStore is the key-addressed contract a backend implements.
type ObjectStore interface {
	Put(ctx context.Context, reader io.Reader, size int64, key, contentType string) error
	List(ctx context.Context) ([]string, error)
	URL(key string) string
}

// Sink stores opaque byte payloads under timestamped keys and returns
// stable public URLs.
//
// Put is never idempotent-retried by callers: a retry after partial
// success would double-store, so failure requires a fresh key.
type Sink struct {
	store ObjectStore
	now   func() time.Time
}

// NewSink creates a blob sink of the given type.
func NewSink(sinkType SinkType, log logger.Logger) (*Sink, error) {
	var (
		store ObjectStore
		err   error
	)
	switch sinkType {
	case SinkTypeR2:
		store, err = r2.NewStore(log)
	case SinkTypeMinio:
		store, err = minio.NewStore(log)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", sinkType)
	}
	if err != nil {
		return nil, err
	}
	return WrapStore(store), nil
}

// WrapStore builds a Sink over any ObjectStore. Used directly by tests.
func WrapStore(store ObjectStore) *Sink {
	return &Sink{store: store, now: time.Now}
}

// ObjectKey derives the storage key for an upload. The millisecond
// timestamp prefix keeps repeated uploads of the same filename from
// colliding; two identical filenames within the same millisecond are
// treated as acceptably improbable.
func ObjectKey(filename string, now time.Time) string {
	return fmt.Sprintf("images/%d-%s", now.UnixMilli(), filename)
}

// Put uploads the payload and returns its public URL.
func (s *Sink) Put(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error) {
	key := ObjectKey(filename, s.now())
	if err := s.store.Put(ctx, reader, size, key, contentType); err != nil {
		return "", apperr.Unavailable("blob.put", err)
	}
	return s.store.URL(key), nil
}

// List returns all stored object keys, for orphan reconciliation.
func (s *Sink) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Unavailable("blob.list", err)
	}
	return keys, nil
}

// URL resolves a stored key to its public URL.
func (s *Sink) URL(key string) string {
	return s.store.URL(key)
}
