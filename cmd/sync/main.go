package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/turath/archive-sync/internal/canonical"
	"github.com/turath/archive-sync/internal/search"
	"github.com/turath/archive-sync/internal/service/syncjob"
	"github.com/turath/archive-sync/pkg/blob"
	"github.com/turath/archive-sync/pkg/logger"
)

func main() {
	var (
		prune       = flag.Bool("prune", false, "delete index documents with no canonical record")
		orphans     = flag.Bool("orphans", false, "report blob objects with no canonical reference")
		pageSize    = flag.Int("page-size", 100, "canonical list page size")
		concurrency = flag.Int("concurrency", 4, "concurrent index batches")
	)
	flag.Parse()

	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("console"),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	canonicalClient := canonical.NewClient(log)
	searchIndex := search.NewIndex(log)

	job := syncjob.NewJob(canonicalClient, searchIndex, log, syncjob.Options{
		PageSize:    *pageSize,
		Concurrency: *concurrency,
		Prune:       *prune,
	})

	stats, err := job.Run(ctx)
	if err != nil {
		log.Error("Sync failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Sync complete",
		logger.Int("total", stats.Total),
		logger.Int("synced", stats.Synced),
		logger.Int("pruned", stats.Pruned),
		logger.Duration("duration", stats.Duration),
	)

	if *orphans {
		sinkType := blob.SinkType(os.Getenv("BLOB_SINK"))
		if sinkType == "" {
			sinkType = blob.SinkTypeR2
		}
		sink, err := blob.NewSink(sinkType, log)
		if err != nil {
			log.Error("Failed to create blob sink", logger.Error(err))
			os.Exit(1)
		}
		report, err := job.ReportOrphans(ctx, sink)
		if err != nil {
			log.Error("Orphan scan failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info("Orphan scan complete",
			logger.Int("scanned", report.Scanned),
			logger.Int("orphans", len(report.Keys)),
		)
		for _, key := range report.Keys {
			log.Warn("Orphaned blob object", logger.String("key", key))
		}
	}
}
