package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
)

type fakeFetcher struct {
	item *models.ArchiveItem
	err  error
}

func (f *fakeFetcher) GetByID(ctx context.Context, id string) (*models.ArchiveItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

type fakeIndexer struct {
	upserted  []models.SearchDocument
	deleted   []string
	upsertErr error
	deleteErr error
}

func (f *fakeIndexer) Upsert(ctx context.Context, docs []models.SearchDocument) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, docs...)
	return nil
}

func (f *fakeIndexer) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStatuses struct {
	saved []*queue.TaskStatus
}

func (f *fakeStatuses) SaveTaskStatus(ctx context.Context, status *queue.TaskStatus) error {
	f.saved = append(f.saved, status)
	return nil
}

func newTestWorker(fetcher *fakeFetcher, indexer *fakeIndexer, statuses *fakeStatuses) *IndexWorker {
	return &IndexWorker{
		BaseWorker: BaseWorker{
			logger:   logger.NewTestLogger(),
			stopChan: make(chan struct{}),
		},
		canonical: fetcher,
		indexer:   indexer,
		statuses:  statuses,
	}
}

func upsertTask(t *testing.T, itemID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.IndexTask{ItemID: itemID, EnqueuedAt: time.Now()})
	require.NoError(t, err)
	return asynq.NewTask(queue.TaskTypeIndexUpsert, payload)
}

func TestHandleUpsertRefetchesCanonicalState(t *testing.T) {
	fetcher := &fakeFetcher{item: &models.ArchiveItem{
		ID:    "item-1",
		Slug:  "sunset",
		Title: models.LocalizedText{EN: "Fresh Title"},
	}}
	indexer := &fakeIndexer{}
	statuses := &fakeStatuses{}
	w := newTestWorker(fetcher, indexer, statuses)

	err := w.handleUpsert(context.Background(), upsertTask(t, "item-1"))
	require.NoError(t, err)

	require.Len(t, indexer.upserted, 1)
	assert.Equal(t, "Fresh Title", indexer.upserted[0].Title.EN)

	require.Len(t, statuses.saved, 1)
	assert.Equal(t, "completed", statuses.saved[0].Status)
}

func TestHandleUpsertMissingRecordDeletesDocument(t *testing.T) {
	fetcher := &fakeFetcher{err: apperr.NotFound("canonical.getById", nil)}
	indexer := &fakeIndexer{}
	w := newTestWorker(fetcher, indexer, &fakeStatuses{})

	err := w.handleUpsert(context.Background(), upsertTask(t, "item-1"))
	require.NoError(t, err)

	assert.Empty(t, indexer.upserted)
	assert.Equal(t, []string{"item-1"}, indexer.deleted)
}

func TestHandleUpsertTransientFailureRetries(t *testing.T) {
	fetcher := &fakeFetcher{item: &models.ArchiveItem{ID: "item-1"}}
	indexer := &fakeIndexer{upsertErr: apperr.Unavailable("search.upsert", errors.New("503"))}
	statuses := &fakeStatuses{}
	w := newTestWorker(fetcher, indexer, statuses)

	err := w.handleUpsert(context.Background(), upsertTask(t, "item-1"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	require.Len(t, statuses.saved, 1)
	assert.Equal(t, "failed", statuses.saved[0].Status)
}

func TestHandleUpsertPermanentFailureSkipsRetry(t *testing.T) {
	fetcher := &fakeFetcher{item: &models.ArchiveItem{ID: "item-1"}}
	indexer := &fakeIndexer{upsertErr: apperr.Rejected("search.upsert", errors.New("bad document"))}
	w := newTestWorker(fetcher, indexer, &fakeStatuses{})

	err := w.handleUpsert(context.Background(), upsertTask(t, "item-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleUpsertMalformedPayloadSkipsRetry(t *testing.T) {
	w := newTestWorker(&fakeFetcher{}, &fakeIndexer{}, &fakeStatuses{})

	err := w.handleUpsert(context.Background(), asynq.NewTask(queue.TaskTypeIndexUpsert, []byte("not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = w.handleUpsert(context.Background(), asynq.NewTask(queue.TaskTypeIndexUpsert, []byte(`{}`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestStopIsIdempotent(t *testing.T) {
	cfg := &Config{
		RedisAddr:   "localhost:6379",
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	}
	w, err := NewIndexWorker(cfg, &fakeFetcher{}, &fakeIndexer{}, &fakeStatuses{}, logger.NewTestLogger())
	require.NoError(t, err)

	// Signal handler and context watcher can both reach Stop during
	// shutdown; the second call must not panic on a closed channel.
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestHandleDelete(t *testing.T) {
	indexer := &fakeIndexer{}
	statuses := &fakeStatuses{}
	w := newTestWorker(&fakeFetcher{}, indexer, statuses)

	payload, err := json.Marshal(queue.IndexTask{ItemID: "item-9", EnqueuedAt: time.Now()})
	require.NoError(t, err)

	err = w.handleDelete(context.Background(), asynq.NewTask(queue.TaskTypeIndexDelete, payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"item-9"}, indexer.deleted)
	require.Len(t, statuses.saved, 1)
	assert.Equal(t, "completed", statuses.saved[0].Status)
}
