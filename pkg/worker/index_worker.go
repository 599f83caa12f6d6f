package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
)

// CanonicalFetcher reads the current canonical record for an id.
type CanonicalFetcher interface {
	GetByID(ctx context.Context, id string) (*models.ArchiveItem, error)
}

// Indexer applies index mutations.
type Indexer interface {
	Upsert(ctx context.Context, docs []models.SearchDocument) error
	Delete(ctx context.Context, id string) error
}

// StatusStore persists task outcomes for the API's status endpoint.
type StatusStore interface {
	SaveTaskStatus(ctx context.Context, status *queue.TaskStatus) error
}

// IndexWorker consumes index tasks. Upserts re-fetch the canonical
// record so a retry always indexes the freshest state, never a stale
// snapshot captured at enqueue time.
type IndexWorker struct {
	BaseWorker
	canonical CanonicalFetcher
	indexer   Indexer
	statuses  StatusStore
}

func NewIndexWorker(cfg *Config, canonical CanonicalFetcher, indexer Indexer, statuses StatusStore, log logger.Logger) (*IndexWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &IndexWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		canonical: canonical,
		indexer:   indexer,
		statuses:  statuses,
	}

	w.mux.HandleFunc(queue.TaskTypeIndexUpsert, w.handleUpsert)
	w.mux.HandleFunc(queue.TaskTypeIndexDelete, w.handleDelete)
	return w, nil
}

func (w *IndexWorker) handleUpsert(ctx context.Context, t *asynq.Task) error {
	task, err := decodeTask(t)
	if err != nil {
		w.logger.Error("Failed to decode index task",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	item, err := w.canonical.GetByID(ctx, task.ItemID)
	if errors.Is(err, apperr.ErrNotFound) {
		// The record disappeared between enqueue and processing. Remove
		// the search document instead, preserving the no-orphan invariant.
		if err := w.indexer.Delete(ctx, task.ItemID); err != nil {
			return w.fail(ctx, task, queue.TaskTypeIndexUpsert, err)
		}
		return w.done(ctx, task, queue.TaskTypeIndexUpsert)
	}
	if err != nil {
		return w.fail(ctx, task, queue.TaskTypeIndexUpsert, err)
	}

	doc := models.NewSearchDocument(item)
	if err := w.indexer.Upsert(ctx, []models.SearchDocument{doc}); err != nil {
		return w.fail(ctx, task, queue.TaskTypeIndexUpsert, err)
	}

	w.logger.Info("Indexed archive item",
		logger.String("itemId", task.ItemID),
	)
	return w.done(ctx, task, queue.TaskTypeIndexUpsert)
}

func (w *IndexWorker) handleDelete(ctx context.Context, t *asynq.Task) error {
	task, err := decodeTask(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.indexer.Delete(ctx, task.ItemID); err != nil {
		return w.fail(ctx, task, queue.TaskTypeIndexDelete, err)
	}

	w.logger.Info("Removed archive item from index",
		logger.String("itemId", task.ItemID),
	)
	return w.done(ctx, task, queue.TaskTypeIndexDelete)
}

// fail records the failure and decides retryability: transient failures
// go back to asynq for backoff, everything else is dropped.
func (w *IndexWorker) fail(ctx context.Context, task *queue.IndexTask, taskType string, cause error) error {
	w.saveStatus(ctx, task, taskType, "failed", cause)
	if apperr.Retryable(cause) {
		return cause
	}
	return fmt.Errorf("%v: %w", cause, asynq.SkipRetry)
}

func (w *IndexWorker) done(ctx context.Context, task *queue.IndexTask, taskType string) error {
	w.saveStatus(ctx, task, taskType, "completed", nil)
	return nil
}

func (w *IndexWorker) saveStatus(ctx context.Context, task *queue.IndexTask, taskType, state string, cause error) {
	status := &queue.TaskStatus{
		ItemID:     task.ItemID,
		Type:       taskType,
		Status:     state,
		EnqueuedAt: task.EnqueuedAt,
		FinishedAt: time.Now(),
	}
	if cause != nil {
		status.Error = cause.Error()
	}
	if err := w.statuses.SaveTaskStatus(ctx, status); err != nil {
		w.logger.Error("Failed to save task status",
			logger.String("itemId", task.ItemID),
			logger.Error(err),
		)
	}
}

func decodeTask(t *asynq.Task) (*queue.IndexTask, error) {
	var task queue.IndexTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index task: %w", err)
	}
	if task.ItemID == "" {
		return nil, fmt.Errorf("index task missing item id")
	}
	return &task, nil
}

func (w *IndexWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
