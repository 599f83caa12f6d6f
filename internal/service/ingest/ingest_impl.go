package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

const (
	sinkBlob  = "r2"
	sinkAsset = "asset"
)

// ServiceConfig bounds what the orchestrator accepts.
type ServiceConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
}

func defaultConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxFileSize:  50 * 1024 * 1024, // 50MB
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff"},
	}
}

type Service struct {
	blob      BinarySink
	canonical CanonicalStore
	indexer   Indexer
	logger    logger.Logger
	config    *ServiceConfig
}

// NewService wires the orchestrator. A nil cfg gets defaults.
func NewService(blob BinarySink, canonical CanonicalStore, indexer Indexer, log logger.Logger, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = defaultConfig()
	}
	return &Service{
		blob:      blob,
		canonical: canonical,
		indexer:   indexer,
		logger:    log,
		config:    cfg,
	}
}

// Ingest runs the three pipeline steps in order. Binary and canonical
// failures abort; an index failure degrades the result instead of
// failing it, since the item is already renderable by direct lookup.
func (s *Service) Ingest(ctx context.Context, reader io.Reader, size int64, filename, contentType string, locale models.Locale) (*Result, error) {
	if err := s.validate(filename, size); err != nil {
		return nil, err
	}
	if !locale.Valid() {
		locale = models.LocaleEN
	}

	task := newUploadTask(filename, contentType, size, locale)
	result := &Result{Task: task}

	// The payload is read once up front because both blob sinks consume
	// it and neither accepts a rewound reader.
	payload, err := io.ReadAll(io.LimitReader(reader, s.config.MaxFileSize+1))
	if err != nil {
		return nil, taskFailed(task, apperr.Unavailable("ingest.read", err))
	}
	if int64(len(payload)) > s.config.MaxFileSize {
		return nil, taskFailed(task, apperr.Client("ingest.read", fmt.Errorf("file exceeds %d bytes", s.config.MaxFileSize)))
	}
	if len(payload) == 0 {
		return nil, taskFailed(task, apperr.Client("ingest.read", fmt.Errorf("empty payload")))
	}

	task.State = models.UploadUploading
	task.UpdatedAt = time.Now()

	// Step 1: binary upload. Nothing else has been written, so failure
	// here aborts cleanly.
	binaryURL, err := s.blob.Put(ctx, bytes.NewReader(payload), int64(len(payload)), filename, contentType)
	if err != nil {
		s.logger.Error("Binary upload failed",
			logger.String("filename", filename),
			logger.Error(err),
		)
		return nil, taskFailed(task, err)
	}
	result.BinaryURL = binaryURL
	result.Sinks = append(result.Sinks, sinkBlob)

	// The canonical store's own asset copy is best-effort: the public
	// blob URL already makes the item renderable.
	assetRef, err := s.canonical.UploadAsset(ctx, bytes.NewReader(payload), filename, contentType)
	if err != nil {
		s.logger.Warn("Canonical asset upload failed, continuing with blob URL only",
			logger.String("filename", filename),
			logger.Error(err),
		)
	} else {
		result.Sinks = append(result.Sinks, sinkAsset)
	}

	// Step 2: canonical record. Failure here orphans the uploaded
	// binary; that is a reconciliation case, not a synchronous rollback.
	draft := &models.ArchiveItem{
		Title:     models.LocalizedText{EN: models.TitleFromFilename(filename)},
		Slug:      models.SlugFromFilename(filename),
		BinaryURL: binaryURL,
		AssetRef:  assetRef,
		Featured:  false,
		Order:     0,
	}
	item, err := s.canonical.Create(ctx, draft)
	if err != nil {
		s.logger.Error("Canonical create failed, binary orphaned until reconciliation",
			logger.String("filename", filename),
			logger.String("binaryUrl", binaryURL),
			logger.Error(err),
		)
		return nil, taskFailed(task, err)
	}
	result.Item = item

	// Step 3: index upsert, out of the durability boundary. Failure is
	// a degraded success; the next sync run or edit heals it.
	doc := models.NewSearchDocument(item)
	if err := s.indexer.Upsert(ctx, []models.SearchDocument{doc}); err != nil {
		s.logger.Warn("Index upsert failed, item persisted but not yet searchable",
			logger.String("id", item.ID),
			logger.Error(err),
		)
		result.IndexError = apperr.Degraded("ingest.index", err).Error()
	} else {
		result.Indexed = true
	}

	task.State = models.UploadSuccess
	task.Progress = 100
	task.UpdatedAt = time.Now()

	s.logger.Info("Ingested archive item",
		logger.String("id", item.ID),
		logger.String("slug", item.Slug),
		logger.Bool("indexed", result.Indexed),
		logger.Any("sinks", result.Sinks),
	)
	return result, nil
}

// IngestBatch processes files one at a time so callers can attribute
// per-file success unambiguously. Sequencing over throughput, by the
// single-flight contract.
func (s *Service) IngestBatch(ctx context.Context, files []BatchFile) []BatchResult {
	results := make([]BatchResult, 0, len(files))
	for _, f := range files {
		results = append(results, s.ingestOne(ctx, f))
	}
	return results
}

func (s *Service) ingestOne(ctx context.Context, f BatchFile) BatchResult {
	reader, err := f.Open()
	if err != nil {
		return BatchResult{Filename: f.Filename, Error: fmt.Sprintf("failed to open file: %v", err)}
	}
	defer reader.Close()

	result, err := s.Ingest(ctx, reader, f.Size, f.Filename, f.ContentType, models.LocaleEN)
	if err != nil {
		return BatchResult{Filename: f.Filename, Error: err.Error()}
	}
	return BatchResult{Filename: f.Filename, Result: result}
}

func (s *Service) validate(filename string, size int64) error {
	if filename == "" {
		return apperr.Client("ingest.validate", fmt.Errorf("missing filename"))
	}
	if size > s.config.MaxFileSize {
		return apperr.Client("ingest.validate", fmt.Errorf("file exceeds %d bytes", s.config.MaxFileSize))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, t := range s.config.AllowedTypes {
		if t == ext {
			return nil
		}
	}
	return apperr.Client("ingest.validate", fmt.Errorf("unsupported file type: %s", ext))
}

func newUploadTask(filename, contentType string, size int64, locale models.Locale) *models.UploadTask {
	now := time.Now()
	return &models.UploadTask{
		ID:          uuid.New().String(),
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		Locale:      locale,
		State:       models.UploadPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func taskFailed(task *models.UploadTask, err error) error {
	task.State = models.UploadError
	task.Error = err.Error()
	task.UpdatedAt = time.Now()
	return err
}
