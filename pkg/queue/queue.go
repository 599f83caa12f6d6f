// Package queue carries index maintenance work out of the ingestion
// critical path. Tasks reference canonical ids only; the worker re-fetches
// the record before indexing, so a retried upsert always indexes the
// freshest state.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/apperr"
)

const (
	TaskTypeIndexUpsert = "index:upsert"
	TaskTypeIndexDelete = "index:delete"
)

const statusTTL = 24 * time.Hour

// IndexTask is the payload for both index task types.
type IndexTask struct {
	ItemID     string    `json:"itemId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// TaskStatus is the last known state of an index task, persisted in
// redis with a TTL.
type TaskStatus struct {
	ItemID     string    `json:"itemId"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Queue is the producer side of the index task pipeline.
type Queue interface {
	EnqueueUpsert(ctx context.Context, itemID string) error
	EnqueueDelete(ctx context.Context, itemID string) error
	GetTaskStatus(ctx context.Context, itemID string) (*TaskStatus, error)
	SaveTaskStatus(ctx context.Context, status *TaskStatus) error
	Close() error
}

// AsynqQueue backs the Queue with asynq over redis.
type AsynqQueue struct {
	client     *asynq.Client
	redis      *redis.Client
	maxRetries int
}

// NewQueue creates the queue from environment config.
func NewQueue() (*AsynqQueue, error) {
	cfg := config.GetQueueConfig()
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}

	return &AsynqQueue{
		client:     asynq.NewClient(redisOpt),
		redis:      redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// EnqueueUpsert schedules a re-index of the item. Duplicate enqueues for
// the same item coalesce while one is still pending.
func (q *AsynqQueue) EnqueueUpsert(ctx context.Context, itemID string) error {
	return q.enqueue(ctx, TaskTypeIndexUpsert, itemID)
}

// EnqueueDelete schedules removal of the item's search document.
func (q *AsynqQueue) EnqueueDelete(ctx context.Context, itemID string) error {
	return q.enqueue(ctx, TaskTypeIndexDelete, itemID)
}

func (q *AsynqQueue) enqueue(ctx context.Context, taskType, itemID string) error {
	payload, err := json.Marshal(IndexTask{ItemID: itemID, EnqueuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal index task: %w", err)
	}

	task := asynq.NewTask(taskType, payload,
		asynq.TaskID(fmt.Sprintf("%s:%s", taskType, itemID)),
		asynq.MaxRetry(q.maxRetries),
		asynq.Timeout(2*time.Minute),
	)

	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// Same item already queued; the pending task will index the
			// freshest state anyway.
			return nil
		}
		return apperr.Unavailable("queue.enqueue", err)
	}

	status := &TaskStatus{
		ItemID:     itemID,
		Type:       taskType,
		Status:     "pending",
		EnqueuedAt: time.Now(),
	}
	if err := q.SaveTaskStatus(ctx, status); err != nil {
		return nil // status tracking is best-effort
	}
	return nil
}

// GetTaskStatus reads the last persisted state of the item's index task.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, itemID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("queue.getTaskStatus", err)
	}
	if err != nil {
		return nil, apperr.Unavailable("queue.getTaskStatus", err)
	}

	var status TaskStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task status: %w", err)
	}
	return &status, nil
}

// SaveTaskStatus persists a task status with a TTL.
func (q *AsynqQueue) SaveTaskStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal task status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.ItemID), data, statusTTL).Err(); err != nil {
		return apperr.Unavailable("queue.saveTaskStatus", err)
	}
	return nil
}

// Close releases the underlying connections.
func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func statusKey(itemID string) string {
	return "index_task:" + itemID
}
