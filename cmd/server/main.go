package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/api/handlers"
	"github.com/turath/archive-sync/api/routes"
	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/ai"
	"github.com/turath/archive-sync/internal/canonical"
	"github.com/turath/archive-sync/internal/search"
	"github.com/turath/archive-sync/internal/service/ingest"
	"github.com/turath/archive-sync/internal/service/insights"
	"github.com/turath/archive-sync/internal/service/query"
	"github.com/turath/archive-sync/pkg/blob"
	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	canonicalClient := canonical.NewClient(log)
	searchIndex := search.NewIndex(log)

	sinkType := blob.SinkType(os.Getenv("BLOB_SINK"))
	if sinkType == "" {
		sinkType = blob.SinkTypeR2
	}
	sink, err := blob.NewSink(sinkType, log)
	if err != nil {
		log.Fatal("Failed to initialize blob sink", logger.Error(err))
	}

	// Index upserts run inline by default; with the queue enabled they
	// move onto the asynq worker and ingestion only enqueues ids.
	var indexer ingest.Indexer = searchIndex
	var taskQueue *queue.AsynqQueue
	if config.GetQueueConfig().Enabled {
		q, err := queue.NewQueue()
		if err != nil {
			log.Fatal("Failed to initialize queue", logger.Error(err))
		}
		defer q.Close()
		indexer = ingest.NewQueueIndexer(q)
		taskQueue = q
	}

	orchestrator := ingest.NewService(sink, canonicalClient, indexer, log, nil)
	facade := query.NewFacade(canonicalClient, searchIndex)
	insightService := insights.NewService(canonicalClient, ai.NewGenerator(log), log)

	h := handlers.NewHandlers(orchestrator, facade, insightService, log)
	if taskQueue != nil {
		h.Tasks = handlers.NewTasksHandler(taskQueue, log)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Info("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
