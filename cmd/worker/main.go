package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/canonical"
	"github.com/turath/archive-sync/internal/search"
	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
	"github.com/turath/archive-sync/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	canonicalClient := canonical.NewClient(log)
	searchIndex := search.NewIndex(log)

	statuses, err := queue.NewQueue()
	if err != nil {
		log.Error("Failed to connect to task queue", logger.Error(err))
		os.Exit(1)
	}
	defer statuses.Close()

	queueCfg := config.GetQueueConfig()
	workerCfg := &worker.Config{
		RedisAddr:   queueCfg.RedisAddr,
		RedisDB:     queueCfg.RedisDB,
		Concurrency: queueCfg.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	}

	indexWorker, err := worker.NewIndexWorker(workerCfg, canonicalClient, searchIndex, statuses, log)
	if err != nil {
		log.Error("Failed to create index worker", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := indexWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	indexWorker.Stop()
	log.Info("Worker stopped")
}
