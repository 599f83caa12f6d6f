package config

import "sync"

var (
	queueOnce   sync.Once
	queueConfig *QueueConfig
)

// QueueConfig points at the redis instance backing the index task queue.
type QueueConfig struct {
	// Enabled moves index upserts out of the ingestion critical path
	// onto the asynq worker.
	Enabled     bool
	RedisAddr   string
	RedisDB     int
	Concurrency int
	MaxRetries  int
}

func GetQueueConfig() *QueueConfig {
	queueOnce.Do(func() {
		loadEnv()
		queueConfig = &QueueConfig{
			Enabled:     getEnvBool("QUEUE_ENABLED", false),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvInt("REDIS_DB", 0),
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 5),
			MaxRetries:  getEnvInt("QUEUE_MAX_RETRIES", 5),
		}
	})
	return queueConfig
}
