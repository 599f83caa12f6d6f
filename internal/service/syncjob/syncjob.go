// Package syncjob rebuilds the search index from the canonical store.
// Used at bootstrap and to heal drift: the index is derived state, so a
// full pass is always safe.
package syncjob

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

// CanonicalLister pages the canonical store's full list.
type CanonicalLister interface {
	List(ctx context.Context, offset, limit int) ([]*models.ArchiveItem, error)
	Count(ctx context.Context) (int, error)
}

// IndexTarget is the slice of the search adapter the job drives.
type IndexTarget interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs []models.SearchDocument) error
	DeleteMany(ctx context.Context, ids []string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// BinaryLister exposes blob keys for orphan reconciliation.
type BinaryLister interface {
	List(ctx context.Context) ([]string, error)
	URL(key string) string
}

// Options tune one run.
type Options struct {
	// PageSize bounds each canonical list page.
	PageSize int
	// Concurrency bounds in-flight index batches. Batch order does not
	// affect the idempotent end state.
	Concurrency int
	// Prune deletes index documents whose ids no longer exist
	// canonically. Off by default: plain resync is additive/overwriting.
	Prune bool
}

// Stats summarize one run.
type Stats struct {
	Total    int           `json:"total"`
	Synced   int           `json:"synced"`
	Pruned   int           `json:"pruned"`
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"duration"`
}

type Job struct {
	canonical CanonicalLister
	index     IndexTarget
	logger    logger.Logger
	opts      Options
}

func NewJob(canonical CanonicalLister, index IndexTarget, log logger.Logger, opts Options) *Job {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Job{
		canonical: canonical,
		index:     index,
		logger:    log,
		opts:      opts,
	}
}

// Run pages through the canonical store, projects each record and
// upserts in batches. Running it twice with no intervening canonical
// changes produces no observable index difference.
func (j *Job) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	if err := j.index.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	total, err := j.canonical.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Total: total}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.opts.Concurrency)

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, total)
	)

	for offset := 0; ; offset += j.opts.PageSize {
		items, err := j.canonical.List(ctx, offset, j.opts.PageSize)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		stats.Pages++

		docs := make([]models.SearchDocument, len(items))
		for i, item := range items {
			docs[i] = models.NewSearchDocument(item)
		}

		mu.Lock()
		for _, doc := range docs {
			seen[doc.ID] = struct{}{}
		}
		stats.Synced += len(docs)
		mu.Unlock()

		g.Go(func() error {
			return j.index.Upsert(gctx, docs)
		})

		if len(items) < j.opts.PageSize {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if j.opts.Prune {
		pruned, err := j.prune(ctx, seen)
		if err != nil {
			return nil, err
		}
		stats.Pruned = pruned
	}

	stats.Duration = time.Since(start)
	j.logger.Info("Index sync complete",
		logger.Int("total", stats.Total),
		logger.Int("synced", stats.Synced),
		logger.Int("pruned", stats.Pruned),
		logger.Int("pages", stats.Pages),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// prune enforces the no-orphan invariant: a search document must not
// outlive its canonical record.
func (j *Job) prune(ctx context.Context, seen map[string]struct{}) (int, error) {
	ids, err := j.index.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var stale []string
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := j.index.DeleteMany(ctx, stale); err != nil {
		return 0, err
	}
	j.logger.Info("Pruned stale search documents", logger.Int("count", len(stale)))
	return len(stale), nil
}
