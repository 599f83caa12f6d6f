package ingest

import (
	"context"
	"io"

	"github.com/turath/archive-sync/internal/models"
)

// Result reports one ingestion outcome. Degraded results are successes:
// the canonical write landed, but the item is not yet searchable.
type Result struct {
	Item      *models.ArchiveItem `json:"item"`
	BinaryURL string              `json:"binaryUrl"`
	// Sinks lists which blob sinks actually succeeded ("r2", "asset"),
	// so reconciliation knows what to check.
	Sinks      []string           `json:"sinks"`
	Indexed    bool               `json:"indexed"`
	IndexError string             `json:"indexError,omitempty"`
	Task       *models.UploadTask `json:"task"`
}

// Degraded reports whether the item was persisted but not indexed.
func (r *Result) Degraded() bool {
	return r.Item != nil && !r.Indexed
}

// BatchResult pairs one file of a bulk ingestion with its outcome.
type BatchResult struct {
	Filename string  `json:"filename"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Orchestrator coordinates binary upload, canonical-record creation and
// indexing for new archive items.
type Orchestrator interface {
	// Ingest runs the full pipeline for one payload.
	Ingest(ctx context.Context, reader io.Reader, size int64, filename, contentType string, locale models.Locale) (*Result, error)
	// IngestBatch processes files strictly sequentially: each file's
	// pipeline completes (or degrades) before the next file starts.
	IngestBatch(ctx context.Context, files []BatchFile) []BatchResult
}

// BatchFile is one deferred-open file of a bulk upload.
type BatchFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// BinarySink uploads a payload to durable object storage.
type BinarySink interface {
	Put(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error)
}

// CanonicalStore is the slice of the canonical adapter ingestion needs.
type CanonicalStore interface {
	Create(ctx context.Context, item *models.ArchiveItem) (*models.ArchiveItem, error)
	UploadAsset(ctx context.Context, reader io.Reader, filename, contentType string) (string, error)
}

// Indexer makes a freshly created item searchable. Implementations may
// upsert directly or enqueue for an out-of-band worker.
type Indexer interface {
	Upsert(ctx context.Context, docs []models.SearchDocument) error
}
