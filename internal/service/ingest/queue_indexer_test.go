package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/queue"
)

type fakeQueue struct {
	upserts []string
	err     error
}

func (f *fakeQueue) EnqueueUpsert(ctx context.Context, itemID string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, itemID)
	return nil
}

func (f *fakeQueue) EnqueueDelete(ctx context.Context, itemID string) error { return nil }

func (f *fakeQueue) GetTaskStatus(ctx context.Context, itemID string) (*queue.TaskStatus, error) {
	return nil, nil
}

func (f *fakeQueue) SaveTaskStatus(ctx context.Context, status *queue.TaskStatus) error { return nil }

func (f *fakeQueue) Close() error { return nil }

func TestQueueIndexerEnqueuesIDsOnly(t *testing.T) {
	q := &fakeQueue{}
	indexer := NewQueueIndexer(q)

	docs := []models.SearchDocument{{ID: "item-1"}, {ID: "item-2"}}
	require.NoError(t, indexer.Upsert(context.Background(), docs))
	assert.Equal(t, []string{"item-1", "item-2"}, q.upserts)
}

func TestQueueIndexerPropagatesEnqueueFailure(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	indexer := NewQueueIndexer(q)

	err := indexer.Upsert(context.Background(), []models.SearchDocument{{ID: "item-1"}})
	assert.Error(t, err)
}
