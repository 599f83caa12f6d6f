package ingest

import (
	"context"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/queue"
)

// QueueIndexer satisfies Indexer by enqueueing index tasks instead of
// writing to the index inline. The worker re-fetches each record before
// upserting, so the enqueued document content is irrelevant; only ids
// travel.
type QueueIndexer struct {
	queue queue.Queue
}

func NewQueueIndexer(q queue.Queue) *QueueIndexer {
	return &QueueIndexer{queue: q}
}

func (qi *QueueIndexer) Upsert(ctx context.Context, docs []models.SearchDocument) error {
	for _, doc := range docs {
		if err := qi.queue.EnqueueUpsert(ctx, doc.ID); err != nil {
			return err
		}
	}
	return nil
}
